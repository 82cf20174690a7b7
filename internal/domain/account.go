package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountKind separates balance-sheet sides.
type AccountKind string

const (
	KindAsset     AccountKind = "asset"
	KindLiability AccountKind = "liability"
)

// Asset type tags that participate in monthly investment compounding
// alongside retirement-flagged accounts.
const (
	AssetTypeChecking   = "checking"
	AssetTypeSavings    = "savings"
	AssetTypeBrokerage  = "brokerage"
	AssetTypeCrypto     = "crypto"
	AssetTypeRealEstate = "real_estate"
	AssetTypeVehicle    = "vehicle"
	AssetTypeOther      = "other"
)

// Liability type tags. Variable-rate types are the default target set of an
// interest-rate shock scoped to "variable".
const (
	LiabilityTypeMortgage    = "mortgage"
	LiabilityTypeHELOC       = "heloc"
	LiabilityTypeAutoLoan    = "auto_loan"
	LiabilityTypeStudentLoan = "student_loan"
	LiabilityTypeCreditCard  = "credit_card"
	LiabilityTypePersonal    = "personal_loan"
)

// VariableRateLiabilityTypes lists the liability types treated as
// variable-rate for interest-rate shocks.
var VariableRateLiabilityTypes = map[string]bool{
	LiabilityTypeHELOC:      true,
	LiabilityTypeCreditCard: true,
}

// BalanceSnapshot is one observed balance for an account.
type BalanceSnapshot struct {
	AsOf   time.Time       `yaml:"as_of" json:"asOf"`
	Amount decimal.Decimal `yaml:"amount" json:"amount"`
}

// LiabilityDetail carries the amortization terms of a liability account.
type LiabilityDetail struct {
	AnnualRate       decimal.Decimal `yaml:"annual_rate" json:"annualRate"`
	ScheduledPayment decimal.Decimal `yaml:"scheduled_payment" json:"scheduledPayment"`
	TermMonths       int             `yaml:"term_months" json:"termMonths"`
}

// Account is one real account from the household's balance sheet.
type Account struct {
	ID           string            `yaml:"id" json:"id"`
	Name         string            `yaml:"name" json:"name"`
	Kind         AccountKind       `yaml:"kind" json:"kind"`
	Type         string            `yaml:"type" json:"type"`
	IsLiquid     bool              `yaml:"is_liquid" json:"isLiquid"`
	IsRetirement bool              `yaml:"is_retirement" json:"isRetirement"`
	Active       bool              `yaml:"active" json:"active"`
	Balances     []BalanceSnapshot `yaml:"balances" json:"balances"`
	Liability    *LiabilityDetail  `yaml:"liability,omitempty" json:"liability,omitempty"`
}

// BalanceAsOf returns the most recent observed balance on or before ref.
// The second return is false when no snapshot qualifies.
func (a Account) BalanceAsOf(ref time.Time) (decimal.Decimal, bool) {
	var best decimal.Decimal
	var bestAt time.Time
	found := false
	for _, snap := range a.Balances {
		if snap.AsOf.After(ref) {
			continue
		}
		if !found || snap.AsOf.After(bestAt) {
			best = snap.Amount
			bestAt = snap.AsOf
			found = true
		}
	}
	return best, found
}
