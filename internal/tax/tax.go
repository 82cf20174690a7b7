// Package tax implements the bracket-based marginal tax estimate used by the
// projection engine. It prices the incremental tax on a slice of income
// relative to income the household has already counted; it is deliberately
// not a filing-grade calculation.
package tax

import (
	"github.com/Oliver16/fincast/internal/domain"
	"github.com/shopspring/decimal"
)

// Breakdown is the tax owed on one income increment.
type Breakdown struct {
	Federal        decimal.Decimal `json:"federal"`
	Payroll        decimal.Decimal `json:"payroll"`
	State          decimal.Decimal `json:"state"`
	SelfEmployment decimal.Decimal `json:"selfEmployment"`
	Total          decimal.Decimal `json:"total"`
}

// Bracket is one progressive federal bracket.
type Bracket struct {
	Min  decimal.Decimal
	Max  decimal.Decimal
	Rate decimal.Decimal
}

// Config carries the rates and brackets the calculator prices against.
type Config struct {
	StandardDeduction decimal.Decimal
	Brackets          []Bracket
	SSWageBase        decimal.Decimal
	SSRate            decimal.Decimal
	MedicareRate      decimal.Decimal
	SERate            decimal.Decimal // self-employment tax below the wage base
	SEMedicareRate    decimal.Decimal // self-employment tax above the wage base
	StateRate         decimal.Decimal
}

// DefaultConfig returns 2025 single-filer estimates.
func DefaultConfig() Config {
	return Config{
		StandardDeduction: decimal.NewFromInt(15000),
		Brackets: []Bracket{
			{decimal.Zero, decimal.NewFromInt(11925), decimal.NewFromFloat(0.10)},
			{decimal.NewFromInt(11925), decimal.NewFromInt(48475), decimal.NewFromFloat(0.12)},
			{decimal.NewFromInt(48475), decimal.NewFromInt(103350), decimal.NewFromFloat(0.22)},
			{decimal.NewFromInt(103350), decimal.NewFromInt(197300), decimal.NewFromFloat(0.24)},
			{decimal.NewFromInt(197300), decimal.NewFromInt(250525), decimal.NewFromFloat(0.32)},
			{decimal.NewFromInt(250525), decimal.NewFromInt(626350), decimal.NewFromFloat(0.35)},
			{decimal.NewFromInt(626350), decimal.NewFromInt(999999999), decimal.NewFromFloat(0.37)},
		},
		SSWageBase:     decimal.NewFromInt(176100),
		SSRate:         decimal.NewFromFloat(0.062),
		MedicareRate:   decimal.NewFromFloat(0.0145),
		SERate:         decimal.NewFromFloat(0.153),
		SEMedicareRate: decimal.NewFromFloat(0.029),
		StateRate:      decimal.NewFromFloat(0.05),
	}
}

// Calculator prices marginal tax on income increments.
type Calculator struct {
	cfg Config
}

// NewCalculator returns a calculator over the given config.
func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: cfg}
}

// NewDefaultCalculator returns a calculator with 2025 single-filer defaults.
func NewDefaultCalculator() *Calculator {
	return NewCalculator(DefaultConfig())
}

// MarginalTax returns the tax owed on an annual income increment given the
// household's already-counted annual income. Pure function of its inputs.
func (c *Calculator) MarginalTax(annualIncome decimal.Decimal, incomeType domain.IncomeType, existingAnnualIncome decimal.Decimal) Breakdown {
	if annualIncome.LessThanOrEqual(decimal.Zero) {
		return Breakdown{}
	}
	var b Breakdown

	b.Federal = c.bracketTax(existingAnnualIncome.Add(annualIncome)).Sub(c.bracketTax(existingAnnualIncome))

	if incomeType == domain.IncomeSelfEmployment {
		b.SelfEmployment = c.wageBandTax(annualIncome, existingAnnualIncome, c.cfg.SERate, c.cfg.SEMedicareRate)
	} else {
		b.Payroll = c.wageBandTax(annualIncome, existingAnnualIncome, c.cfg.SSRate.Add(c.cfg.MedicareRate), c.cfg.MedicareRate)
	}

	b.State = annualIncome.Mul(c.cfg.StateRate)

	b.Total = b.Federal.Add(b.Payroll).Add(b.State).Add(b.SelfEmployment)
	return b
}

// bracketTax walks the progressive brackets over income net of the standard
// deduction.
func (c *Calculator) bracketTax(grossIncome decimal.Decimal) decimal.Decimal {
	taxable := grossIncome.Sub(c.cfg.StandardDeduction)
	if taxable.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	var total decimal.Decimal
	for _, bracket := range c.cfg.Brackets {
		if taxable.LessThanOrEqual(bracket.Min) {
			break
		}
		inBracket := decimal.Min(taxable, bracket.Max).Sub(bracket.Min)
		if inBracket.GreaterThan(decimal.Zero) {
			total = total.Add(inBracket.Mul(bracket.Rate))
		}
	}
	return total
}

// wageBandTax taxes the increment at belowRate up to the SS wage base and
// aboveRate past it, stacking on income already counted.
func (c *Calculator) wageBandTax(annualIncome, existing, belowRate, aboveRate decimal.Decimal) decimal.Decimal {
	top := existing.Add(annualIncome)

	belowPortion := decimal.Min(top, c.cfg.SSWageBase).Sub(decimal.Min(existing, c.cfg.SSWageBase))
	if belowPortion.IsNegative() {
		belowPortion = decimal.Zero
	}
	abovePortion := annualIncome.Sub(belowPortion)
	if abovePortion.IsNegative() {
		abovePortion = decimal.Zero
	}
	return belowPortion.Mul(belowRate).Add(abovePortion.Mul(aboveRate))
}
