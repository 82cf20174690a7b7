package projection

import (
	"testing"

	"github.com/Oliver16/fincast/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncomeSourceCoveredByFlowNotDoubleCounted(t *testing.T) {
	flow := salaryFlow(6000)
	flow.IncomeSourceID = "job"
	src := domain.IncomeSource{
		ID:             "job",
		Name:           "Day job",
		Classification: domain.IncomeEmployment,
		AnnualAmount:   decimal.NewFromInt(72000),
		PayFrequency:   domain.FrequencyMonthly,
		Active:         true,
	}
	in := Inputs{
		Accounts:      []domain.Account{checkingAccount(1000)},
		Flows:         []domain.RecurringFlow{flow},
		IncomeSources: []domain.IncomeSource{src},
		Scenarios:     []domain.Scenario{baseScenario(2)},
	}

	result, err := testEngine().Run(in, "base", Options{})
	require.NoError(t, err)

	got := result.Records[0].IncomeByCategory[domain.CategorySalary]
	assert.True(t, got.Equal(decimal.NewFromInt(6000)), "income counted twice: %s", got)
}

func TestUncoveredIncomeSourceBecomesLine(t *testing.T) {
	src := domain.IncomeSource{
		ID:             "freelance",
		Name:           "Freelance",
		Classification: domain.IncomeSelfEmployment,
		AnnualAmount:   decimal.NewFromInt(48000),
		PayFrequency:   domain.FrequencyMonthly,
		Active:         true,
	}
	in := Inputs{
		Accounts:      []domain.Account{checkingAccount(1000)},
		IncomeSources: []domain.IncomeSource{src},
		Scenarios:     []domain.Scenario{baseScenario(2)},
	}

	result, err := testEngine().Run(in, "base", Options{})
	require.NoError(t, err)

	got := result.Records[0].IncomeByCategory[domain.CategorySalary]
	assert.True(t, got.Equal(decimal.NewFromInt(4000)), "got %s", got)
	// Self-employment classification flows through to its tax line.
	taxes := result.Records[0].ExpenseByCategory[domain.CategoryTaxes]
	assert.True(t, taxes.GreaterThan(decimal.Zero))
}

func TestDeferredFlowActivates(t *testing.T) {
	startLater := monthAt(3)
	flow := salaryFlow(2000)
	flow.StartDate = &startLater
	in := Inputs{
		Accounts:  []domain.Account{checkingAccount(1000)},
		Flows:     []domain.RecurringFlow{flow},
		Scenarios: []domain.Scenario{baseScenario(6)},
	}

	result, err := testEngine().Run(in, "base", Options{})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		assert.True(t, result.Records[i].TotalIncome.IsZero(), "month %d income %s", i, result.Records[i].TotalIncome)
	}
	assert.True(t, result.Records[3].TotalIncome.Equal(decimal.NewFromInt(2000)))
	// Tax is attached at activation, not before.
	assert.True(t, result.Records[2].TotalExpenses.IsZero())
	assert.True(t, result.Records[3].TotalExpenses.GreaterThan(decimal.Zero))
}

func TestEndedFlowExpiresWithItsTaxLine(t *testing.T) {
	end := monthAt(2)
	flow := salaryFlow(2000)
	flow.EndDate = &end
	in := Inputs{
		Accounts:  []domain.Account{checkingAccount(1000)},
		Flows:     []domain.RecurringFlow{flow},
		Scenarios: []domain.Scenario{baseScenario(5)},
	}

	result, err := testEngine().Run(in, "base", Options{})
	require.NoError(t, err)

	// Inclusive through the end month.
	assert.True(t, result.Records[2].TotalIncome.Equal(decimal.NewFromInt(2000)))
	assert.True(t, result.Records[3].TotalIncome.IsZero())
	_, taxed := result.Records[3].ExpenseByCategory[domain.CategoryTaxes]
	assert.False(t, taxed, "tax line must expire with its income")
}

func TestAccountWithoutBalanceSnapshotExcluded(t *testing.T) {
	future := monthAt(6)
	acct := domain.Account{
		ID:       "new-account",
		Kind:     domain.KindAsset,
		Type:     domain.AssetTypeSavings,
		IsLiquid: true,
		Active:   true,
		Balances: []domain.BalanceSnapshot{{AsOf: future, Amount: decimal.NewFromInt(5000)}},
	}
	in := Inputs{
		Accounts:  []domain.Account{acct},
		Scenarios: []domain.Scenario{baseScenario(2)},
	}

	result, err := testEngine().Run(in, "base", Options{})
	require.NoError(t, err)
	assert.True(t, result.Records[0].TotalAssets.IsZero())
}

func TestBalanceAsOfPicksMostRecent(t *testing.T) {
	acct := domain.Account{
		ID: "checking", Kind: domain.KindAsset, Type: domain.AssetTypeSavings, IsLiquid: true, Active: true,
		Balances: []domain.BalanceSnapshot{
			{AsOf: monthAt(-6), Amount: decimal.NewFromInt(1000)},
			{AsOf: monthAt(-1), Amount: decimal.NewFromInt(2500)},
			{AsOf: monthAt(4), Amount: decimal.NewFromInt(9000)},
		},
	}
	in := Inputs{
		Accounts:  []domain.Account{acct},
		Scenarios: []domain.Scenario{baseScenario(2)},
	}

	result, err := testEngine().Run(in, "base", Options{})
	require.NoError(t, err)
	assert.True(t, result.Records[0].TotalAssets.Equal(decimal.NewFromInt(2500)),
		"got %s", result.Records[0].TotalAssets)
}

func TestContributionDeductionBuildsLinesAndMatch(t *testing.T) {
	rate := decimal.NewFromFloat(0.06)
	matchPct := decimal.NewFromInt(1)
	limit := decimal.NewFromFloat(0.05)
	src := domain.IncomeSource{
		ID:             "job",
		Name:           "Day job",
		Classification: domain.IncomeEmployment,
		AnnualAmount:   decimal.NewFromInt(120000),
		PayFrequency:   domain.FrequencyMonthly,
		Active:         true,
		Deductions: []domain.Deduction{{
			ID:                   "d1",
			Type:                 domain.DeductionRetirement,
			Percent:              &rate,
			EmployerMatchPercent: &matchPct,
			EmployerMatchLimit:   &limit,
			TargetAccountID:      "401k",
			Active:               true,
		}},
	}
	fourOhOneK := domain.Account{
		ID: "401k", Kind: domain.KindAsset, Type: domain.AssetTypeBrokerage, IsRetirement: true, Active: true,
		Balances: []domain.BalanceSnapshot{{AsOf: testStart(), Amount: decimal.NewFromInt(50000)}},
	}
	in := Inputs{
		Accounts:      []domain.Account{checkingAccount(20000), fourOhOneK},
		IncomeSources: []domain.IncomeSource{src},
		Scenarios:     []domain.Scenario{baseScenario(3)},
	}

	result, err := testEngine().Run(in, "base", Options{})
	require.NoError(t, err)

	// 10000/month salary at a 6% contribution rate.
	contribution := result.Records[0].ExpenseByCategory[domain.CategoryContribution]
	assert.True(t, contribution.Equal(decimal.NewFromInt(600)), "got %s", contribution)

	// Match is capped at 5% of salary; the 401k also receives the
	// contribution transfer and compounds monthly, so growth strictly
	// exceeds the 500 match alone.
	first := result.Records[0].AssetByType[domain.AssetTypeBrokerage]
	second := result.Records[1].AssetByType[domain.AssetTypeBrokerage]
	assert.True(t, second.Sub(first).GreaterThanOrEqual(decimal.NewFromInt(1100)),
		"401k grew by %s", second.Sub(first))
}
