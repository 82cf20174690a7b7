// Package output renders projection run results for the command line:
// an aligned table, CSV for spreadsheets, and JSON for downstream tools.
package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/Oliver16/fincast/internal/projection"
)

// Formatter renders one run result to bytes.
type Formatter interface {
	Name() string
	Format(result *projection.RunResult) ([]byte, error)
}

// NewFormatter returns the formatter for a format name.
func NewFormatter(name string) (Formatter, error) {
	switch name {
	case "table", "":
		return TableFormatter{}, nil
	case "csv":
		return CSVFormatter{}, nil
	case "json":
		return JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want table, csv, or json)", name)
	}
}

// TableFormatter renders an aligned month-by-month table.
type TableFormatter struct{}

func (t TableFormatter) Name() string { return "table" }

func (t TableFormatter) Format(result *projection.RunResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, "Scenario: %s (%d months)\n\n", result.ScenarioID, len(result.Records))

	w := tabwriter.NewWriter(buf, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Month\tDate\tIncome\tExpenses\tNet Flow\tAssets\tLiabilities\tNet Worth\tDSCR\tSavings\tLiquidity\t")
	for _, rec := range result.Records {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			rec.MonthIndex,
			rec.Date.Format("2006-01"),
			rec.TotalIncome.StringFixed(2),
			rec.TotalExpenses.StringFixed(2),
			rec.NetCashFlow.StringFixed(2),
			rec.TotalAssets.StringFixed(2),
			rec.TotalLiabilities.StringFixed(2),
			rec.NetWorth.StringFixed(2),
			rec.DSCR.StringFixed(2),
			rec.SavingsRate.StringFixed(4),
			rec.LiquidityMonths.StringFixed(1),
		)
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}

	for _, warning := range result.Warnings {
		fmt.Fprintf(buf, "\nwarning: %s", warning)
	}
	if len(result.Warnings) > 0 {
		fmt.Fprintln(buf)
	}
	return buf.Bytes(), nil
}

// CSVFormatter renders one row per month.
type CSVFormatter struct{}

func (c CSVFormatter) Name() string { return "csv" }

func (c CSVFormatter) Format(result *projection.RunResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{
		"Scenario", "MonthIndex", "Date",
		"TotalIncome", "TotalExpenses", "NetCashFlow",
		"TotalAssets", "LiquidAssets", "RetirementAssets", "TotalLiabilities", "NetWorth",
		"DSCR", "SavingsRate", "LiquidityMonths",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, rec := range result.Records {
		row := []string{
			result.ScenarioID,
			fmt.Sprintf("%d", rec.MonthIndex),
			rec.Date.Format(time.DateOnly),
			rec.TotalIncome.StringFixed(2),
			rec.TotalExpenses.StringFixed(2),
			rec.NetCashFlow.StringFixed(2),
			rec.TotalAssets.StringFixed(2),
			rec.LiquidAssets.StringFixed(2),
			rec.RetirementAssets.StringFixed(2),
			rec.TotalLiabilities.StringFixed(2),
			rec.NetWorth.StringFixed(2),
			rec.DSCR.StringFixed(4),
			rec.SavingsRate.StringFixed(4),
			rec.LiquidityMonths.StringFixed(4),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// JSONFormatter renders the full result, records and warnings included.
type JSONFormatter struct{}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(result *projection.RunResult) ([]byte, error) {
	return json.MarshalIndent(result, "", "  ")
}
