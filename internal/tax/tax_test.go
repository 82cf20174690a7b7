package tax

import (
	"testing"

	"github.com/Oliver16/fincast/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMarginalTaxEmployment(t *testing.T) {
	calc := NewDefaultCalculator()

	// 50000 gross, nothing counted yet. Taxable 35000 after the standard
	// deduction: 11925 at 10% plus 23075 at 12%.
	b := calc.MarginalTax(decimal.NewFromInt(50000), domain.IncomeEmployment, decimal.Zero)

	assert.True(t, b.Federal.Equal(decimal.NewFromFloat(3961.50)), "federal: %s", b.Federal)
	assert.True(t, b.Payroll.Equal(decimal.NewFromInt(3825)), "payroll: %s", b.Payroll)
	assert.True(t, b.State.Equal(decimal.NewFromInt(2500)), "state: %s", b.State)
	assert.True(t, b.SelfEmployment.IsZero())
	assert.True(t, b.Total.Equal(decimal.NewFromFloat(10286.50)), "total: %s", b.Total)
}

func TestMarginalTaxStacksOnExistingIncome(t *testing.T) {
	calc := NewDefaultCalculator()

	// The same 10000 increment is taxed entirely at 12% on top of 50000
	// already counted, not partially at 10%.
	b := calc.MarginalTax(decimal.NewFromInt(10000), domain.IncomeEmployment, decimal.NewFromInt(50000))

	assert.True(t, b.Federal.Equal(decimal.NewFromInt(1200)), "federal: %s", b.Federal)
	assert.True(t, b.Payroll.Equal(decimal.NewFromInt(765)), "payroll: %s", b.Payroll)
	assert.True(t, b.State.Equal(decimal.NewFromInt(500)), "state: %s", b.State)
}

func TestMarginalTaxAdditivity(t *testing.T) {
	calc := NewDefaultCalculator()

	// Pricing income in two marginal slices must equal pricing it at once.
	whole := calc.MarginalTax(decimal.NewFromInt(90000), domain.IncomeEmployment, decimal.Zero)
	first := calc.MarginalTax(decimal.NewFromInt(60000), domain.IncomeEmployment, decimal.Zero)
	second := calc.MarginalTax(decimal.NewFromInt(30000), domain.IncomeEmployment, decimal.NewFromInt(60000))

	assert.True(t, whole.Total.Equal(first.Total.Add(second.Total)),
		"whole %s != %s + %s", whole.Total, first.Total, second.Total)
}

func TestMarginalTaxSocialSecurityWageBase(t *testing.T) {
	calc := NewDefaultCalculator()

	// Increment straddles the 176100 wage base: 6100 below at the full
	// payroll rate, 13900 above at Medicare only.
	b := calc.MarginalTax(decimal.NewFromInt(20000), domain.IncomeEmployment, decimal.NewFromInt(170000))

	expected := decimal.NewFromInt(6100).Mul(decimal.NewFromFloat(0.0765)).
		Add(decimal.NewFromInt(13900).Mul(decimal.NewFromFloat(0.0145)))
	assert.True(t, b.Payroll.Equal(expected), "payroll: %s, want %s", b.Payroll, expected)
}

func TestMarginalTaxSelfEmployment(t *testing.T) {
	calc := NewDefaultCalculator()

	b := calc.MarginalTax(decimal.NewFromInt(50000), domain.IncomeSelfEmployment, decimal.Zero)

	assert.True(t, b.SelfEmployment.Equal(decimal.NewFromInt(7650)), "SE: %s", b.SelfEmployment)
	assert.True(t, b.Payroll.IsZero())
}

func TestMarginalTaxNonPositiveIncome(t *testing.T) {
	calc := NewDefaultCalculator()

	assert.True(t, calc.MarginalTax(decimal.Zero, domain.IncomeEmployment, decimal.Zero).Total.IsZero())
	assert.True(t, calc.MarginalTax(decimal.NewFromInt(-100), domain.IncomeEmployment, decimal.Zero).Total.IsZero())
}

func TestMarginalTaxBelowStandardDeduction(t *testing.T) {
	calc := NewDefaultCalculator()

	// Income under the standard deduction owes no federal tax but still
	// owes payroll and state tax.
	b := calc.MarginalTax(decimal.NewFromInt(10000), domain.IncomeEmployment, decimal.Zero)
	assert.True(t, b.Federal.IsZero(), "federal: %s", b.Federal)
	assert.True(t, b.Payroll.GreaterThan(decimal.Zero))
	assert.True(t, b.State.GreaterThan(decimal.Zero))
}
