package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProjectionRecord is the immutable output of one simulated month. Balances
// are captured before the month's cash advance; NetWorth and NetCashFlow
// reflect the month's cash flow so the record reads as end-of-month wealth.
type ProjectionRecord struct {
	MonthIndex int       `json:"monthIndex"`
	Date       time.Time `json:"date"`

	TotalAssets      decimal.Decimal `json:"totalAssets"`
	LiquidAssets     decimal.Decimal `json:"liquidAssets"`
	RetirementAssets decimal.Decimal `json:"retirementAssets"`
	TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
	NetWorth         decimal.Decimal `json:"netWorth"`

	TotalIncome   decimal.Decimal `json:"totalIncome"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	NetCashFlow   decimal.Decimal `json:"netCashFlow"`

	DSCR            decimal.Decimal `json:"dscr"`
	SavingsRate     decimal.Decimal `json:"savingsRate"`
	LiquidityMonths decimal.Decimal `json:"liquidityMonths"`

	IncomeByCategory    map[string]decimal.Decimal `json:"incomeByCategory"`
	ExpenseByCategory   map[string]decimal.Decimal `json:"expenseByCategory"`
	AssetByType         map[string]decimal.Decimal `json:"assetByType"`
	LiabilityByType     map[string]decimal.Decimal `json:"liabilityByType"`
}
