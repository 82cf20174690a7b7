package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FlowType splits recurring flows into the three lists the engine keeps.
type FlowType string

const (
	FlowIncome   FlowType = "income"
	FlowExpense  FlowType = "expense"
	FlowTransfer FlowType = "transfer"
)

// IncomeType classifies income for tax purposes.
type IncomeType string

const (
	IncomeEmployment     IncomeType = "employment"
	IncomeSelfEmployment IncomeType = "self_employment"
)

// Income categories that receive annual salary step-growth and drive
// contribution-rate deductions and employer match.
const (
	CategorySalary     = "salary"
	CategoryBonus      = "bonus"
	CategoryCommission = "commission"
)

// Expense categories exempt from inflation step-growth (debt service) and
// the synthetic categories the engine creates.
const (
	CategoryDebt         = "debt"
	CategoryMortgage     = "mortgage"
	CategoryLoan         = "loan"
	CategoryTaxes        = "taxes"
	CategoryContribution = "contribution"
	CategoryExtraPayment = "extra_payment"
	CategoryOverlay      = "overlay"
)

// SalaryCategories is the set of income categories treated as salary-like.
var SalaryCategories = map[string]bool{
	CategorySalary:     true,
	CategoryBonus:      true,
	CategoryCommission: true,
}

// DebtCategories is the set of expense categories that count as debt service.
var DebtCategories = map[string]bool{
	CategoryDebt:         true,
	CategoryMortgage:     true,
	CategoryLoan:         true,
	CategoryExtraPayment: true,
}

// RecurringFlow is one recurring income, expense, or transfer as stored by
// the household data collaborator.
type RecurringFlow struct {
	ID              string          `yaml:"id" json:"id"`
	Name            string          `yaml:"name" json:"name"`
	Type            FlowType        `yaml:"type" json:"type"`
	Category        string          `yaml:"category" json:"category"`
	Amount          decimal.Decimal `yaml:"amount" json:"amount"`
	Frequency       Frequency       `yaml:"frequency" json:"frequency"`
	StartDate       *time.Time      `yaml:"start_date,omitempty" json:"startDate,omitempty"`
	EndDate         *time.Time      `yaml:"end_date,omitempty" json:"endDate,omitempty"`
	LinkedAccountID string          `yaml:"linked_account_id,omitempty" json:"linkedAccountId,omitempty"`
	IncomeSourceID  string          `yaml:"income_source_id,omitempty" json:"incomeSourceId,omitempty"`
	IncomeType      IncomeType      `yaml:"income_type,omitempty" json:"incomeType,omitempty"`
	Active          bool            `yaml:"active" json:"active"`
}

// MonthlyAmount is the flow's monthly-equivalent amount.
func (f RecurringFlow) MonthlyAmount() decimal.Decimal {
	return f.Frequency.MonthlyAmount(f.Amount)
}

// DeductionType tags a pre-tax deduction record.
type DeductionType string

const (
	DeductionRetirement    DeductionType = "retirement_401k"
	DeductionHealthSavings DeductionType = "hsa"
)

// Deduction is one pre-tax deduction attached to an income source, optionally
// carrying employer-match terms.
type Deduction struct {
	ID                   string           `yaml:"id" json:"id"`
	Type                 DeductionType    `yaml:"type" json:"type"`
	Percent              *decimal.Decimal `yaml:"percent,omitempty" json:"percent,omitempty"`
	Amount               *decimal.Decimal `yaml:"amount,omitempty" json:"amount,omitempty"`
	EmployerMatchPercent *decimal.Decimal `yaml:"employer_match_percent,omitempty" json:"employerMatchPercent,omitempty"`
	EmployerMatchLimit   *decimal.Decimal `yaml:"employer_match_limit,omitempty" json:"employerMatchLimit,omitempty"`
	AnnualMatchCap       *decimal.Decimal `yaml:"annual_match_cap,omitempty" json:"annualMatchCap,omitempty"`
	TargetAccountID      string           `yaml:"target_account_id,omitempty" json:"targetAccountId,omitempty"`
	Active               bool             `yaml:"active" json:"active"`
}

// IncomeSource is one employment or self-employment income record.
type IncomeSource struct {
	ID             string          `yaml:"id" json:"id"`
	Name           string          `yaml:"name" json:"name"`
	Classification IncomeType      `yaml:"classification" json:"classification"`
	AnnualAmount   decimal.Decimal `yaml:"annual_amount" json:"annualAmount"`
	PayFrequency   Frequency       `yaml:"pay_frequency" json:"payFrequency"`
	StartDate      *time.Time      `yaml:"start_date,omitempty" json:"startDate,omitempty"`
	EndDate        *time.Time      `yaml:"end_date,omitempty" json:"endDate,omitempty"`
	Deductions     []Deduction     `yaml:"deductions,omitempty" json:"deductions,omitempty"`
	Active         bool            `yaml:"active" json:"active"`
}

// MonthlyAmount is the source's gross monthly income.
func (s IncomeSource) MonthlyAmount() decimal.Decimal {
	return s.AnnualAmount.Div(twelve)
}
