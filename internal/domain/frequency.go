package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Frequency identifies how often a recurring flow pays out.
type Frequency string

const (
	FrequencyWeekly       Frequency = "weekly"
	FrequencyBiweekly     Frequency = "biweekly"
	FrequencySemimonthly  Frequency = "semimonthly"
	FrequencyMonthly      Frequency = "monthly"
	FrequencyBimonthly    Frequency = "bimonthly"
	FrequencyQuarterly    Frequency = "quarterly"
	FrequencySemiannually Frequency = "semiannually"
	FrequencyAnnually     Frequency = "annually"
)

var twelve = decimal.NewFromInt(12)

// annualPeriods maps a frequency to the number of pay periods per year.
var annualPeriods = map[Frequency]decimal.Decimal{
	FrequencyWeekly:       decimal.NewFromInt(52),
	FrequencyBiweekly:     decimal.NewFromInt(26),
	FrequencySemimonthly:  decimal.NewFromInt(24),
	FrequencyMonthly:      decimal.NewFromInt(12),
	FrequencyBimonthly:    decimal.NewFromInt(6),
	FrequencyQuarterly:    decimal.NewFromInt(4),
	FrequencySemiannually: decimal.NewFromInt(2),
	FrequencyAnnually:     decimal.NewFromInt(1),
}

// IsValid reports whether f is a known frequency tag.
func (f Frequency) IsValid() bool {
	_, ok := annualPeriods[f]
	return ok
}

// AnnualPeriods returns the number of pay periods per year for the frequency.
func (f Frequency) AnnualPeriods() decimal.Decimal {
	if p, ok := annualPeriods[f]; ok {
		return p
	}
	return twelve
}

// MonthlyMultiplier converts a per-period amount to its monthly equivalent
// (weekly = 52/12, biweekly = 26/12, semimonthly = 2, monthly = 1,
// bimonthly = 1/2, quarterly = 1/3, semiannually = 1/6, annually = 1/12).
func (f Frequency) MonthlyMultiplier() decimal.Decimal {
	return f.AnnualPeriods().Div(twelve)
}

// MonthlyAmount converts a per-period amount to a monthly-equivalent amount.
func (f Frequency) MonthlyAmount(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(f.MonthlyMultiplier())
}

// AnnualAmount converts a per-period amount to a yearly total.
func (f Frequency) AnnualAmount(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(f.AnnualPeriods())
}

// ParseFrequency validates a raw frequency tag.
func ParseFrequency(raw string) (Frequency, error) {
	f := Frequency(raw)
	if !f.IsValid() {
		return "", fmt.Errorf("unknown frequency %q", raw)
	}
	return f, nil
}
