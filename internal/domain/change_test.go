package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParamsAddIncome(t *testing.T) {
	p, err := ParseParams(ChangeAddIncome, map[string]any{
		"name":      "Consulting",
		"category":  "salary",
		"amount":    2500,
		"frequency": "biweekly",
	})
	require.NoError(t, err)

	fp, ok := p.(FlowParams)
	require.True(t, ok)
	assert.Equal(t, "Consulting", fp.Name)
	assert.Equal(t, "salary", fp.Category)
	assert.True(t, fp.Amount.Equal(decimal.NewFromInt(2500)))
	assert.Equal(t, FrequencyBiweekly, fp.Frequency)
}

func TestParseParamsAddIncomeMissingAmount(t *testing.T) {
	_, err := ParseParams(ChangeAddIncome, map[string]any{"name": "Consulting"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount is required")
}

func TestParseParamsUnknownType(t *testing.T) {
	_, err := ParseParams(ChangeType("win_lottery"), map[string]any{"amount": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown change type")
}

func TestParseParamsStartBusinessForcesSelfEmployment(t *testing.T) {
	p, err := ParseParams(ChangeStartBusiness, map[string]any{
		"name":   "Side business",
		"amount": 3000,
	})
	require.NoError(t, err)
	assert.Equal(t, IncomeSelfEmployment, p.(FlowParams).IncomeType)
}

func TestParseParamsAddDebt(t *testing.T) {
	p, err := ParseParams(ChangeAddDebt, map[string]any{
		"name":        "Car loan",
		"debt_type":   "auto_loan",
		"principal":   "12000",
		"annual_rate": 0.06,
		"term_months": 12,
	})
	require.NoError(t, err)

	dp := p.(DebtParams)
	assert.True(t, dp.Principal.Equal(decimal.NewFromInt(12000)))
	assert.Equal(t, 12, dp.TermMonths)
	assert.Nil(t, dp.Payment)

	_, err = ParseParams(ChangeAddDebt, map[string]any{
		"name": "Bad", "principal": 1000, "annual_rate": 0.05, "term_months": 0,
	})
	assert.Error(t, err)
}

func TestParseParamsAdjustExactlyOne(t *testing.T) {
	_, err := ParseParams(ChangeAdjustTotalIncome, map[string]any{})
	assert.Error(t, err)

	_, err = ParseParams(ChangeAdjustTotalIncome, map[string]any{"amount": 500, "percent": 0.1})
	assert.Error(t, err)

	p, err := ParseParams(ChangeAdjustTotalIncome, map[string]any{"percent": -0.2})
	require.NoError(t, err)
	ap := p.(AdjustParams)
	assert.Nil(t, ap.Amount)
	require.NotNil(t, ap.Percent)
	assert.True(t, ap.Percent.Equal(decimal.NewFromFloat(-0.2)))
}

func TestParseParamsContributionRateBounds(t *testing.T) {
	_, err := ParseParams(ChangeModify401k, map[string]any{"rate": 1.5})
	assert.Error(t, err)

	_, err = ParseParams(ChangeModify401k, map[string]any{"rate": -0.1})
	assert.Error(t, err)

	p, err := ParseParams(ChangeModify401k, map[string]any{"rate": 0.1})
	require.NoError(t, err)
	assert.True(t, p.(RateParams).Rate.Equal(decimal.NewFromFloat(0.1)))
}

func TestParseParamsInvestmentShock(t *testing.T) {
	_, err := ParseParams(ChangeInvestmentShock, map[string]any{"percent": -1.0})
	assert.Error(t, err)

	p, err := ParseParams(ChangeInvestmentShock, map[string]any{
		"percent": -0.3, "recovery_months": 18,
	})
	require.NoError(t, err)
	sp := p.(InvestmentShockParams)
	assert.Equal(t, 18, sp.RecoveryMonths)
}

func TestParseParamsModifyRequiresAField(t *testing.T) {
	_, err := ParseParams(ChangeModifyIncome, map[string]any{})
	assert.Error(t, err)

	_, err = ParseParams(ChangeModifyDebt, map[string]any{})
	assert.Error(t, err)
}

func TestChangeTypeClassification(t *testing.T) {
	assert.True(t, ChangeAddDebt.IsOneTime())
	assert.True(t, ChangeLumpSumIncome.IsOneTime())
	assert.False(t, ChangeExtraDebtPayment.IsOneTime())
	assert.False(t, ChangeModify401k.IsOneTime())

	assert.True(t, ChangeModify401k.IsSetter())
	assert.True(t, ChangeOverrideInflation.IsSetter())
	assert.False(t, ChangeAddIncome.IsSetter())

	assert.True(t, ChangeSalaryRaise.IsValid())
	assert.False(t, ChangeType("win_lottery").IsValid())
}

func TestChangeActiveAt(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	c := Change{EffectiveDate: start, EndDate: &end}

	assert.False(t, c.ActiveAt(start.AddDate(0, -1, 0)))
	assert.True(t, c.ActiveAt(start))
	assert.True(t, c.ActiveAt(end))
	assert.False(t, c.ActiveAt(end.AddDate(0, 1, 0)))

	open := Change{EffectiveDate: start}
	assert.True(t, open.ActiveAt(start.AddDate(10, 0, 0)))
}

func TestChangeSourceRefPrefersFlow(t *testing.T) {
	c := Change{SourceAccountID: "acct", SourceFlowID: "flow"}
	assert.Equal(t, "flow", c.SourceRef())
	c.SourceFlowID = ""
	assert.Equal(t, "acct", c.SourceRef())
}

func TestEveryChangeTypeHasDecoder(t *testing.T) {
	for ct := range oneTimeTypes {
		assert.True(t, ct.IsValid(), "one-time type %s has no decoder", ct)
	}
	for ct := range setterTypes {
		assert.True(t, ct.IsValid(), "setter type %s has no decoder", ct)
	}
}
