package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ChangeType is the sealed tag for the hypothetical-change catalog. Adding a
// variant requires a params decoder entry and an engine handler.
type ChangeType string

const (
	// Income changes.
	ChangeAddIncome         ChangeType = "add_income"
	ChangeModifyIncome      ChangeType = "modify_income"
	ChangeRemoveIncome      ChangeType = "remove_income"
	ChangeSalaryRaise       ChangeType = "salary_raise"
	ChangeSalaryBonus       ChangeType = "salary_bonus"
	ChangeChangeIncomeType  ChangeType = "change_income_type"
	ChangeLumpSumIncome     ChangeType = "lump_sum_income"
	ChangeAdjustTotalIncome ChangeType = "adjust_total_income"
	ChangeStartBusiness     ChangeType = "start_business"

	// Expense changes.
	ChangeAddExpense          ChangeType = "add_expense"
	ChangeModifyExpense       ChangeType = "modify_expense"
	ChangeRemoveExpense       ChangeType = "remove_expense"
	ChangeReduceExpense       ChangeType = "reduce_expense"
	ChangeLumpSumExpense      ChangeType = "lump_sum_expense"
	ChangeAdjustTotalExpenses ChangeType = "adjust_total_expenses"
	ChangeQuarterlyEstimates  ChangeType = "quarterly_estimated_tax"
	ChangeExtraWithholding    ChangeType = "extra_withholding"

	// Debt changes.
	ChangeAddDebt           ChangeType = "add_debt"
	ChangeModifyDebt        ChangeType = "modify_debt"
	ChangeRemoveDebt        ChangeType = "remove_debt"
	ChangePayoffDebt        ChangeType = "payoff_debt"
	ChangeRefinanceDebt     ChangeType = "refinance_debt"
	ChangeExtraDebtPayment  ChangeType = "extra_debt_payment"
	ChangeInterestRateShock ChangeType = "interest_rate_shock"

	// Asset changes.
	ChangeAddAsset        ChangeType = "add_asset"
	ChangeModifyAsset     ChangeType = "modify_asset"
	ChangeRemoveAsset     ChangeType = "remove_asset"
	ChangeSellAsset       ChangeType = "sell_asset"
	ChangeInvestmentShock ChangeType = "investment_shock"
	ChangeOneTimeTransfer ChangeType = "one_time_transfer"

	// Contribution and transfer changes.
	ChangeModify401k         ChangeType = "modify_401k"
	ChangeModifyHSA          ChangeType = "modify_hsa"
	ChangeSetEmployerMatch   ChangeType = "set_employer_match"
	ChangeSetSavingsTransfer ChangeType = "set_savings_transfer"
	ChangeAddTransfer        ChangeType = "add_transfer"
	ChangeModifyTransfer     ChangeType = "modify_transfer"
	ChangeRemoveTransfer     ChangeType = "remove_transfer"

	// Assumption overrides.
	ChangeOverrideInflation  ChangeType = "override_inflation"
	ChangeOverrideReturn     ChangeType = "override_investment_return"
	ChangeOverrideSalaryGrow ChangeType = "override_salary_growth"
)

// oneTimeTypes are applied at most once per run, tracked by change id.
var oneTimeTypes = map[ChangeType]bool{
	ChangeAddIncome:         true,
	ChangeRemoveIncome:      true,
	ChangeSalaryRaise:       true,
	ChangeSalaryBonus:       true,
	ChangeChangeIncomeType:  true,
	ChangeLumpSumIncome:     true,
	ChangeStartBusiness:     true,
	ChangeAddExpense:        true,
	ChangeRemoveExpense:     true,
	ChangeReduceExpense:     true,
	ChangeLumpSumExpense:    true,
	ChangeAddDebt:           true,
	ChangeRemoveDebt:        true,
	ChangeInterestRateShock: true,
	ChangeAddAsset:          true,
	ChangeRemoveAsset:       true,
	ChangeSellAsset:         true,
	ChangeInvestmentShock:   true,
	ChangeOneTimeTransfer:   true,
	ChangeAddTransfer:       true,
	ChangeRemoveTransfer:    true,
}

// setterTypes replace an inherited ancestor change with the same
// (type, source reference) key instead of accumulating with it.
var setterTypes = map[ChangeType]bool{
	ChangeModify401k:         true,
	ChangeModifyHSA:          true,
	ChangeSetEmployerMatch:   true,
	ChangeSetSavingsTransfer: true,
	ChangeOverrideInflation:  true,
	ChangeOverrideReturn:     true,
	ChangeOverrideSalaryGrow: true,
}

// IsOneTime reports whether the change type applies at most once per run.
func (t ChangeType) IsOneTime() bool { return oneTimeTypes[t] }

// IsSetter reports whether the change type has override semantics across a
// scenario chain.
func (t ChangeType) IsSetter() bool { return setterTypes[t] }

// IsValid reports whether t is a known change type.
func (t ChangeType) IsValid() bool {
	_, ok := paramDecoders[t]
	return ok
}

// Change is one hypothetical change layered onto a projection. Changes are
// immutable once read into a run.
type Change struct {
	ID              string       `json:"id"`
	Type            ChangeType   `json:"type"`
	EffectiveDate   time.Time    `json:"effectiveDate"`
	EndDate         *time.Time   `json:"endDate,omitempty"`
	SourceAccountID string       `json:"sourceAccountId,omitempty"`
	SourceFlowID    string       `json:"sourceFlowId,omitempty"`
	DisplayOrder    int          `json:"displayOrder"`
	Enabled         bool         `json:"enabled"`
	Params          ChangeParams `json:"params,omitempty"`
}

// SourceRef is the reference used for setter override keys: the account or
// flow the change targets, whichever is set.
func (c Change) SourceRef() string {
	if c.SourceFlowID != "" {
		return c.SourceFlowID
	}
	return c.SourceAccountID
}

// ActiveAt reports whether the change's window covers date.
func (c Change) ActiveAt(date time.Time) bool {
	if c.EffectiveDate.After(date) {
		return false
	}
	return c.EndDate == nil || !c.EndDate.Before(date)
}

// ChangeParams is the tagged-union payload of a change, one variant family
// per change type, validated when the change is constructed.
type ChangeParams interface{ changeParams() }

// NoParams is the payload of removal-style changes that only need a source
// reference.
type NoParams struct{}

// FlowParams adds a new income or expense line.
type FlowParams struct {
	Name       string
	Category   string
	Amount     decimal.Decimal
	Frequency  Frequency
	IncomeType IncomeType // optional; inferred from category when empty
}

// ModifyFlowParams updates fields on an existing line; nil means unchanged.
type ModifyFlowParams struct {
	Name      *string
	Category  *string
	Amount    *decimal.Decimal
	Frequency *Frequency
}

// DebtParams creates a new liability.
type DebtParams struct {
	Name         string
	DebtType     string
	Principal    decimal.Decimal
	AnnualRate   decimal.Decimal
	TermMonths   int
	Payment      *decimal.Decimal // derived by amortization when nil
	ClosingCosts decimal.Decimal
}

// ModifyDebtParams overwrites liability terms; nil means unchanged.
type ModifyDebtParams struct {
	Principal  *decimal.Decimal
	AnnualRate *decimal.Decimal
	TermMonths *int
	Payment    *decimal.Decimal
}

// RefinanceParams refinances an existing liability.
type RefinanceParams struct {
	AnnualRate   decimal.Decimal
	TermMonths   int
	ClosingCosts decimal.Decimal
}

// AssetParams creates a new asset.
type AssetParams struct {
	Name         string
	AssetType    string
	Balance      decimal.Decimal
	IsLiquid     bool
	IsRetirement bool
}

// BalanceParams overwrites an asset balance.
type BalanceParams struct {
	Balance decimal.Decimal
}

// SellAssetParams liquidates an asset net of selling costs.
type SellAssetParams struct {
	SellingCostPercent decimal.Decimal
}

// AmountParams carries a single monetary amount (lump sums, extra payments,
// withholding; quarterly for quarterly_estimated_tax).
type AmountParams struct {
	Amount decimal.Decimal
}

// PercentParams carries a single fractional percentage (raise, reduction).
type PercentParams struct {
	Percent decimal.Decimal
}

// IncomeTypeParams reclassifies an income line for tax purposes.
type IncomeTypeParams struct {
	IncomeType IncomeType
}

// RateParams sets a contribution rate with an optional explicit target.
type RateParams struct {
	Rate            decimal.Decimal
	TargetAccountID string
}

// MatchParams sets employer-match terms.
type MatchParams struct {
	MatchPercent decimal.Decimal
	LimitPercent decimal.Decimal
	AnnualCap    *decimal.Decimal
}

// TransferParams creates or updates a recurring (or one-time) transfer.
type TransferParams struct {
	Name            string
	Amount          decimal.Decimal
	TargetAccountID string
}

// OverrideParams installs a session-scoped assumption override. A nonzero
// DurationMonths reverts the override automatically when it expires.
type OverrideParams struct {
	Rate           decimal.Decimal
	DurationMonths int
}

// RateShockScope selects which liabilities an interest-rate shock hits.
const (
	RateShockAll      = "all"
	RateShockVariable = "variable"
)

// RateShockParams applies a flat percentage-point rate adjustment. Scope is
// "all", "variable", or a liability-type substring.
type RateShockParams struct {
	Delta decimal.Decimal
	Scope string
}

// InvestmentShockParams applies a one-time percentage change to qualifying
// assets, optionally followed by a linear recovery ramp.
type InvestmentShockParams struct {
	Percent        decimal.Decimal
	RecoveryMonths int
	TypeFilter     string // optional asset-type filter
}

// AdjustParams is an overlay adjustment: an absolute monthly amount or a
// percentage of the current aggregate total. Exactly one must be set.
type AdjustParams struct {
	Amount  *decimal.Decimal
	Percent *decimal.Decimal
}

func (NoParams) changeParams()              {}
func (FlowParams) changeParams()            {}
func (ModifyFlowParams) changeParams()      {}
func (DebtParams) changeParams()            {}
func (ModifyDebtParams) changeParams()      {}
func (RefinanceParams) changeParams()       {}
func (AssetParams) changeParams()           {}
func (BalanceParams) changeParams()         {}
func (SellAssetParams) changeParams()       {}
func (AmountParams) changeParams()          {}
func (PercentParams) changeParams()         {}
func (IncomeTypeParams) changeParams()      {}
func (RateParams) changeParams()            {}
func (MatchParams) changeParams()           {}
func (TransferParams) changeParams()        {}
func (OverrideParams) changeParams()        {}
func (RateShockParams) changeParams()       {}
func (InvestmentShockParams) changeParams() {}
func (AdjustParams) changeParams()          {}

type paramDecoder func(raw map[string]any) (ChangeParams, error)

var paramDecoders = map[ChangeType]paramDecoder{
	ChangeAddIncome:     decodeFlowParams,
	ChangeStartBusiness: decodeStartBusinessParams,
	ChangeAddExpense:    decodeFlowParams,

	ChangeModifyIncome:  decodeModifyFlowParams,
	ChangeModifyExpense: decodeModifyFlowParams,

	ChangeRemoveIncome:   decodeNoParams,
	ChangeRemoveExpense:  decodeNoParams,
	ChangeRemoveDebt:     decodeNoParams,
	ChangeRemoveAsset:    decodeNoParams,
	ChangeRemoveTransfer: decodeNoParams,

	ChangeSalaryRaise:   decodePercentParams,
	ChangeReduceExpense: decodePercentParams,

	ChangeSalaryBonus:        decodeAmountParams,
	ChangeLumpSumIncome:      decodeAmountParams,
	ChangeLumpSumExpense:     decodeAmountParams,
	ChangePayoffDebt:         decodeAmountParams,
	ChangeExtraDebtPayment:   decodeAmountParams,
	ChangeQuarterlyEstimates: decodeAmountParams,
	ChangeExtraWithholding:   decodeAmountParams,
	ChangeModifyAsset:        decodeBalanceParams,

	ChangeChangeIncomeType: decodeIncomeTypeParams,

	ChangeAdjustTotalIncome:   decodeAdjustParams,
	ChangeAdjustTotalExpenses: decodeAdjustParams,

	ChangeAddDebt:       decodeDebtParams,
	ChangeModifyDebt:    decodeModifyDebtParams,
	ChangeRefinanceDebt: decodeRefinanceParams,

	ChangeInterestRateShock: decodeRateShockParams,
	ChangeInvestmentShock:   decodeInvestmentShockParams,

	ChangeAddAsset:  decodeAssetParams,
	ChangeSellAsset: decodeSellAssetParams,

	ChangeOneTimeTransfer:    decodeTransferParams,
	ChangeSetSavingsTransfer: decodeTransferParams,
	ChangeAddTransfer:        decodeTransferParams,
	ChangeModifyTransfer:     decodeTransferParams,

	ChangeModify401k: decodeRateParams,
	ChangeModifyHSA:  decodeRateParams,

	ChangeSetEmployerMatch: decodeMatchParams,

	ChangeOverrideInflation:  decodeOverrideParams,
	ChangeOverrideReturn:     decodeOverrideParams,
	ChangeOverrideSalaryGrow: decodeOverrideParams,
}

// ParseParams decodes and validates the free-form parameter payload for a
// change type into its typed variant. This is the construction boundary: a
// Change holding a ChangeParams produced here is structurally valid.
func ParseParams(t ChangeType, raw map[string]any) (ChangeParams, error) {
	dec, ok := paramDecoders[t]
	if !ok {
		return nil, fmt.Errorf("unknown change type %q", t)
	}
	p, err := dec(raw)
	if err != nil {
		return nil, fmt.Errorf("change type %s: %w", t, err)
	}
	return p, nil
}

func decodeNoParams(map[string]any) (ChangeParams, error) {
	return NoParams{}, nil
}

func decodeFlowParams(raw map[string]any) (ChangeParams, error) {
	name, err := reqString(raw, "name")
	if err != nil {
		return nil, err
	}
	amount, err := reqDecimal(raw, "amount")
	if err != nil {
		return nil, err
	}
	freq := FrequencyMonthly
	if s, ok := optString(raw, "frequency"); ok {
		if freq, err = ParseFrequency(s); err != nil {
			return nil, err
		}
	}
	p := FlowParams{
		Name:      name,
		Category:  stringOr(raw, "category", "other"),
		Amount:    amount,
		Frequency: freq,
	}
	if s, ok := optString(raw, "income_type"); ok {
		p.IncomeType = IncomeType(s)
	}
	return p, nil
}

func decodeStartBusinessParams(raw map[string]any) (ChangeParams, error) {
	p, err := decodeFlowParams(raw)
	if err != nil {
		return nil, err
	}
	fp := p.(FlowParams)
	fp.IncomeType = IncomeSelfEmployment
	return fp, nil
}

func decodeModifyFlowParams(raw map[string]any) (ChangeParams, error) {
	var p ModifyFlowParams
	if s, ok := optString(raw, "name"); ok {
		p.Name = &s
	}
	if s, ok := optString(raw, "category"); ok {
		p.Category = &s
	}
	if d, ok, err := optDecimal(raw, "amount"); err != nil {
		return nil, err
	} else if ok {
		p.Amount = &d
	}
	if s, ok := optString(raw, "frequency"); ok {
		f, err := ParseFrequency(s)
		if err != nil {
			return nil, err
		}
		p.Frequency = &f
	}
	if p.Name == nil && p.Category == nil && p.Amount == nil && p.Frequency == nil {
		return nil, fmt.Errorf("at least one of name, category, amount, frequency is required")
	}
	return p, nil
}

func decodeDebtParams(raw map[string]any) (ChangeParams, error) {
	name, err := reqString(raw, "name")
	if err != nil {
		return nil, err
	}
	principal, err := reqDecimal(raw, "principal")
	if err != nil {
		return nil, err
	}
	rate, err := reqDecimal(raw, "annual_rate")
	if err != nil {
		return nil, err
	}
	term, err := reqInt(raw, "term_months")
	if err != nil {
		return nil, err
	}
	if term <= 0 {
		return nil, fmt.Errorf("term_months must be positive")
	}
	p := DebtParams{
		Name:       name,
		DebtType:   stringOr(raw, "debt_type", LiabilityTypePersonal),
		Principal:  principal,
		AnnualRate: rate,
		TermMonths: term,
	}
	if d, ok, err := optDecimal(raw, "payment"); err != nil {
		return nil, err
	} else if ok {
		p.Payment = &d
	}
	if d, ok, err := optDecimal(raw, "closing_costs"); err != nil {
		return nil, err
	} else if ok {
		p.ClosingCosts = d
	}
	return p, nil
}

func decodeModifyDebtParams(raw map[string]any) (ChangeParams, error) {
	var p ModifyDebtParams
	if d, ok, err := optDecimal(raw, "principal"); err != nil {
		return nil, err
	} else if ok {
		p.Principal = &d
	}
	if d, ok, err := optDecimal(raw, "annual_rate"); err != nil {
		return nil, err
	} else if ok {
		p.AnnualRate = &d
	}
	if n, ok, err := optInt(raw, "term_months"); err != nil {
		return nil, err
	} else if ok {
		p.TermMonths = &n
	}
	if d, ok, err := optDecimal(raw, "payment"); err != nil {
		return nil, err
	} else if ok {
		p.Payment = &d
	}
	if p.Principal == nil && p.AnnualRate == nil && p.TermMonths == nil && p.Payment == nil {
		return nil, fmt.Errorf("at least one of principal, annual_rate, term_months, payment is required")
	}
	return p, nil
}

func decodeRefinanceParams(raw map[string]any) (ChangeParams, error) {
	rate, err := reqDecimal(raw, "annual_rate")
	if err != nil {
		return nil, err
	}
	term, err := reqInt(raw, "term_months")
	if err != nil {
		return nil, err
	}
	if term <= 0 {
		return nil, fmt.Errorf("term_months must be positive")
	}
	p := RefinanceParams{AnnualRate: rate, TermMonths: term}
	if d, ok, err := optDecimal(raw, "closing_costs"); err != nil {
		return nil, err
	} else if ok {
		p.ClosingCosts = d
	}
	return p, nil
}

func decodeAssetParams(raw map[string]any) (ChangeParams, error) {
	name, err := reqString(raw, "name")
	if err != nil {
		return nil, err
	}
	balance, err := reqDecimal(raw, "balance")
	if err != nil {
		return nil, err
	}
	return AssetParams{
		Name:         name,
		AssetType:    stringOr(raw, "asset_type", AssetTypeOther),
		Balance:      balance,
		IsLiquid:     boolOr(raw, "is_liquid", false),
		IsRetirement: boolOr(raw, "is_retirement", false),
	}, nil
}

func decodeBalanceParams(raw map[string]any) (ChangeParams, error) {
	balance, err := reqDecimal(raw, "balance")
	if err != nil {
		return nil, err
	}
	return BalanceParams{Balance: balance}, nil
}

func decodeSellAssetParams(raw map[string]any) (ChangeParams, error) {
	var p SellAssetParams
	if d, ok, err := optDecimal(raw, "selling_cost_percent"); err != nil {
		return nil, err
	} else if ok {
		p.SellingCostPercent = d
	}
	return p, nil
}

func decodeAmountParams(raw map[string]any) (ChangeParams, error) {
	amount, err := reqDecimal(raw, "amount")
	if err != nil {
		return nil, err
	}
	return AmountParams{Amount: amount}, nil
}

func decodePercentParams(raw map[string]any) (ChangeParams, error) {
	pct, err := reqDecimal(raw, "percent")
	if err != nil {
		return nil, err
	}
	return PercentParams{Percent: pct}, nil
}

func decodeIncomeTypeParams(raw map[string]any) (ChangeParams, error) {
	s, err := reqString(raw, "income_type")
	if err != nil {
		return nil, err
	}
	it := IncomeType(s)
	if it != IncomeEmployment && it != IncomeSelfEmployment {
		return nil, fmt.Errorf("unknown income_type %q", s)
	}
	return IncomeTypeParams{IncomeType: it}, nil
}

func decodeRateParams(raw map[string]any) (ChangeParams, error) {
	rate, err := reqDecimal(raw, "rate")
	if err != nil {
		return nil, err
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("rate must be within [0, 1], got %s", rate)
	}
	p := RateParams{Rate: rate}
	if s, ok := optString(raw, "target_account_id"); ok {
		p.TargetAccountID = s
	}
	return p, nil
}

func decodeMatchParams(raw map[string]any) (ChangeParams, error) {
	match, err := reqDecimal(raw, "match_percent")
	if err != nil {
		return nil, err
	}
	p := MatchParams{MatchPercent: match}
	if d, ok, err := optDecimal(raw, "limit_percent"); err != nil {
		return nil, err
	} else if ok {
		p.LimitPercent = d
	}
	if d, ok, err := optDecimal(raw, "annual_cap"); err != nil {
		return nil, err
	} else if ok {
		p.AnnualCap = &d
	}
	return p, nil
}

func decodeTransferParams(raw map[string]any) (ChangeParams, error) {
	amount, err := reqDecimal(raw, "amount")
	if err != nil {
		return nil, err
	}
	p := TransferParams{Amount: amount, Name: stringOr(raw, "name", "")}
	if s, ok := optString(raw, "target_account_id"); ok {
		p.TargetAccountID = s
	}
	return p, nil
}

func decodeOverrideParams(raw map[string]any) (ChangeParams, error) {
	rate, err := reqDecimal(raw, "rate")
	if err != nil {
		return nil, err
	}
	p := OverrideParams{Rate: rate}
	if n, ok, err := optInt(raw, "duration_months"); err != nil {
		return nil, err
	} else if ok {
		p.DurationMonths = n
	}
	return p, nil
}

func decodeRateShockParams(raw map[string]any) (ChangeParams, error) {
	delta, err := reqDecimal(raw, "delta")
	if err != nil {
		return nil, err
	}
	return RateShockParams{Delta: delta, Scope: stringOr(raw, "scope", RateShockAll)}, nil
}

func decodeInvestmentShockParams(raw map[string]any) (ChangeParams, error) {
	pct, err := reqDecimal(raw, "percent")
	if err != nil {
		return nil, err
	}
	if pct.LessThanOrEqual(decimal.NewFromInt(-1)) {
		return nil, fmt.Errorf("percent must be greater than -1, got %s", pct)
	}
	p := InvestmentShockParams{Percent: pct}
	if n, ok, err := optInt(raw, "recovery_months"); err != nil {
		return nil, err
	} else if ok {
		p.RecoveryMonths = n
	}
	if s, ok := optString(raw, "type_filter"); ok {
		p.TypeFilter = s
	}
	return p, nil
}

func decodeAdjustParams(raw map[string]any) (ChangeParams, error) {
	var p AdjustParams
	if d, ok, err := optDecimal(raw, "amount"); err != nil {
		return nil, err
	} else if ok {
		p.Amount = &d
	}
	if d, ok, err := optDecimal(raw, "percent"); err != nil {
		return nil, err
	} else if ok {
		p.Percent = &d
	}
	if (p.Amount == nil) == (p.Percent == nil) {
		return nil, fmt.Errorf("exactly one of amount or percent is required")
	}
	return p, nil
}

func reqString(raw map[string]any, key string) (string, error) {
	s, ok := optString(raw, key)
	if !ok || s == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return s, nil
}

func optString(raw map[string]any, key string) (string, bool) {
	v, ok := raw[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func stringOr(raw map[string]any, key, def string) string {
	if s, ok := optString(raw, key); ok && s != "" {
		return s
	}
	return def
}

func boolOr(raw map[string]any, key string, def bool) bool {
	if v, ok := raw[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

func reqDecimal(raw map[string]any, key string) (decimal.Decimal, error) {
	d, ok, err := optDecimal(raw, key)
	if err != nil {
		return decimal.Zero, err
	}
	if !ok {
		return decimal.Zero, fmt.Errorf("%s is required", key)
	}
	return d, nil
}

func optDecimal(raw map[string]any, key string) (decimal.Decimal, bool, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return decimal.Zero, false, nil
	}
	switch n := v.(type) {
	case int:
		return decimal.NewFromInt(int64(n)), true, nil
	case int64:
		return decimal.NewFromInt(n), true, nil
	case float64:
		return decimal.NewFromFloat(n), true, nil
	case string:
		d, err := decimal.NewFromString(n)
		if err != nil {
			return decimal.Zero, false, fmt.Errorf("%s: invalid number %q", key, n)
		}
		return d, true, nil
	case decimal.Decimal:
		return n, true, nil
	default:
		return decimal.Zero, false, fmt.Errorf("%s: unsupported value %T", key, v)
	}
}

func reqInt(raw map[string]any, key string) (int, error) {
	n, ok, err := optInt(raw, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%s is required", key)
	}
	return n, nil
}

func optInt(raw map[string]any, key string) (int, bool, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return 0, false, nil
	}
	switch n := v.(type) {
	case int:
		return n, true, nil
	case int64:
		return int(n), true, nil
	case float64:
		return int(n), true, nil
	default:
		return 0, false, fmt.Errorf("%s: expected integer, got %T", key, v)
	}
}
