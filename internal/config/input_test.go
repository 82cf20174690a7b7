package config

import (
	"testing"

	"github.com/Oliver16/fincast/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDoc = `
accounts:
  - id: checking
    name: Checking
    kind: asset
    type: savings
    is_liquid: true
    active: true
    balances:
      - as_of: 2026-01-01
        amount: 10000
  - id: mortgage
    name: Mortgage
    kind: liability
    type: mortgage
    active: true
    balances:
      - as_of: 2026-01-01
        amount: 250000
    liability:
      annual_rate: 0.045
      scheduled_payment: 1520.50
      term_months: 300

flows:
  - id: salary
    name: Salary
    type: income
    category: salary
    amount: 3000
    frequency: biweekly
    active: true
  - id: rent
    name: Rent
    type: expense
    category: housing
    amount: 2000
    frequency: monthly
    active: true

income_sources:
  - id: side-gig
    name: Side gig
    classification: self_employment
    annual_amount: 24000
    pay_frequency: monthly
    active: true

scenarios:
  - id: baseline
    name: Baseline
    start_date: 2026-01-01
    horizon_months: 60
    inflation_rate: 0.03
    return_rate: 0.07
    salary_growth: 0.03
    is_baseline: true
  - id: new-car
    name: New car
    start_date: 2026-01-01
    horizon_months: 60
    parent_id: baseline
    changes:
      - id: car-loan
        type: add_debt
        effective_date: 2026-06-01
        params:
          name: Car loan
          debt_type: auto_loan
          principal: 32000
          annual_rate: 0.065
          term_months: 60
      - type: extra_debt_payment
        effective_date: 2027-01-01
        source_account_id: mortgage
        params:
          amount: 250
`

func TestLoadValidDocument(t *testing.T) {
	in, err := NewInputParser().Load([]byte(validDoc))
	require.NoError(t, err)

	require.Len(t, in.Accounts, 2)
	assert.Equal(t, domain.KindLiability, in.Accounts[1].Kind)
	require.NotNil(t, in.Accounts[1].Liability)
	assert.True(t, in.Accounts[1].Liability.ScheduledPayment.Equal(decimal.NewFromFloat(1520.50)))

	require.Len(t, in.Flows, 2)
	assert.Equal(t, domain.FrequencyBiweekly, in.Flows[0].Frequency)

	require.Len(t, in.Scenarios, 2)
	assert.Equal(t, "baseline", in.BaselineID())

	car := in.Scenarios[1]
	assert.Equal(t, "baseline", car.ParentID)
	require.Len(t, car.Changes, 2)

	loan := car.Changes[0]
	assert.Equal(t, domain.ChangeAddDebt, loan.Type)
	assert.True(t, loan.Enabled)
	dp, ok := loan.Params.(domain.DebtParams)
	require.True(t, ok, "params decoded to %T", loan.Params)
	assert.True(t, dp.Principal.Equal(decimal.NewFromInt(32000)))
	assert.Equal(t, 60, dp.TermMonths)

	// A change without an id gets a generated one.
	assert.NotEmpty(t, car.Changes[1].ID)
}

func TestLoadToInputsRuns(t *testing.T) {
	in, err := NewInputParser().Load([]byte(validDoc))
	require.NoError(t, err)

	engineIn := in.ToInputs()
	assert.Len(t, engineIn.Accounts, 2)
	assert.Len(t, engineIn.Scenarios, 2)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	_, err := NewInputParser().Load([]byte("accounts: ["))
	assert.Error(t, err)
}

func replaceLoad(t *testing.T, doc string) error {
	t.Helper()
	_, err := NewInputParser().Load([]byte(doc))
	return err
}

func TestValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name: "no baseline",
			doc: `
scenarios:
  - id: only
    name: Only
    start_date: 2026-01-01
    horizon_months: 12
`,
			wantErr: "exactly one baseline",
		},
		{
			name: "two baselines",
			doc: `
scenarios:
  - id: a
    start_date: 2026-01-01
    horizon_months: 12
    is_baseline: true
  - id: b
    start_date: 2026-01-01
    horizon_months: 12
    is_baseline: true
`,
			wantErr: "exactly one baseline",
		},
		{
			name: "zero horizon",
			doc: `
scenarios:
  - id: a
    start_date: 2026-01-01
    horizon_months: 0
    is_baseline: true
`,
			wantErr: "horizon",
		},
		{
			name: "unknown change type",
			doc: `
scenarios:
  - id: a
    start_date: 2026-01-01
    horizon_months: 12
    is_baseline: true
    changes:
      - id: c1
        type: win_lottery
        effective_date: 2026-02-01
`,
			wantErr: "unknown change type",
		},
		{
			name: "unknown frequency",
			doc: `
flows:
  - id: f1
    type: expense
    amount: 10
    frequency: fortnightly
scenarios:
  - id: a
    start_date: 2026-01-01
    horizon_months: 12
    is_baseline: true
`,
			wantErr: "unknown frequency",
		},
		{
			name: "duplicate scenario id",
			doc: `
scenarios:
  - id: a
    start_date: 2026-01-01
    horizon_months: 12
    is_baseline: true
  - id: a
    start_date: 2026-01-01
    horizon_months: 12
`,
			wantErr: "duplicate scenario id",
		},
		{
			name: "parent cycle",
			doc: `
scenarios:
  - id: a
    start_date: 2026-01-01
    horizon_months: 12
    is_baseline: true
    parent_id: b
  - id: b
    start_date: 2026-01-01
    horizon_months: 12
    parent_id: a
`,
			wantErr: "cycle",
		},
		{
			name: "missing parent",
			doc: `
scenarios:
  - id: a
    start_date: 2026-01-01
    horizon_months: 12
    is_baseline: true
    parent_id: ghost
`,
			wantErr: "ghost",
		},
		{
			name: "extreme inflation",
			doc: `
scenarios:
  - id: a
    start_date: 2026-01-01
    horizon_months: 12
    is_baseline: true
    inflation_rate: 0.50
`,
			wantErr: "inflation rate",
		},
		{
			name: "bad account kind",
			doc: `
accounts:
  - id: x
    kind: equity
scenarios:
  - id: a
    start_date: 2026-01-01
    horizon_months: 12
    is_baseline: true
`,
			wantErr: "kind must be asset or liability",
		},
		{
			name: "transfer without target",
			doc: `
flows:
  - id: t1
    type: transfer
    amount: 100
    frequency: monthly
scenarios:
  - id: a
    start_date: 2026-01-01
    horizon_months: 12
    is_baseline: true
`,
			wantErr: "linked account",
		},
		{
			name: "change missing effective date",
			doc: `
scenarios:
  - id: a
    start_date: 2026-01-01
    horizon_months: 12
    is_baseline: true
    changes:
      - id: c1
        type: lump_sum_income
        params:
          amount: 100
`,
			wantErr: "effective_date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := replaceLoad(t, tt.doc)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestChangeEnabledDefaultsTrue(t *testing.T) {
	doc := `
scenarios:
  - id: a
    start_date: 2026-01-01
    horizon_months: 12
    is_baseline: true
    changes:
      - id: on-by-default
        type: lump_sum_income
        effective_date: 2026-02-01
        params:
          amount: 100
      - id: explicitly-off
        type: lump_sum_income
        effective_date: 2026-02-01
        enabled: false
        params:
          amount: 100
`
	in, err := NewInputParser().Load([]byte(doc))
	require.NoError(t, err)
	require.Len(t, in.Scenarios[0].Changes, 2)
	assert.True(t, in.Scenarios[0].Changes[0].Enabled)
	assert.False(t, in.Scenarios[0].Changes[1].Enabled)
}
