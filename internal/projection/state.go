// Package projection implements the household projection engine: a
// deterministic, single-threaded monthly simulation over an in-memory
// financial state, driven by scenario configuration and hypothetical
// changes.
package projection

import (
	"strings"
	"time"

	"github.com/Oliver16/fincast/internal/domain"
	"github.com/shopspring/decimal"
)

// Debt roles distinguish the scheduled payment line from targeted extra
// payments when amortizing.
const (
	DebtRolePayment = "payment"
	DebtRoleExtra   = "extra"
)

// LineItem is one active income or expense line.
type LineItem struct {
	ID              string
	Name            string
	Category        string
	Amount          decimal.Decimal // nominal per-period amount
	Frequency       domain.Frequency
	Monthly         decimal.Decimal // monthly-equivalent amount
	LinkedAccountID string
	StartDate       *time.Time
	EndDate         *time.Time
	IncomeType      domain.IncomeType
	DebtID          string // liability this expense is explicitly tagged to
	DebtRole        string
	SourceChangeID  string
}

// Transfer moves a monthly amount from the primary liquid asset into a
// target asset or liability.
type Transfer struct {
	ID              string
	Name            string
	Monthly         decimal.Decimal
	TargetAccountID string
	SourceChangeID  string
}

// Asset is one asset balance in simulated time.
type Asset struct {
	ID           string
	Name         string
	Type         string
	IsLiquid     bool
	IsRetirement bool
	Balance      decimal.Decimal
}

// IsInvestment reports whether the asset compounds monthly at the
// investment return rate.
func (a *Asset) IsInvestment() bool {
	return a.IsRetirement || a.Type == domain.AssetTypeBrokerage || a.Type == domain.AssetTypeCrypto
}

// Liability is one debt balance in simulated time.
type Liability struct {
	ID         string
	Name       string
	Type       string
	Balance    decimal.Decimal
	AnnualRate decimal.Decimal
	Payment    decimal.Decimal
	TermMonths int
}

// RateOverride is a session-scoped assumption override installed by a
// change. Remaining counts down monthly when HasDuration is set; the
// override is removed when it reaches zero and its source change is marked
// applied so it cannot re-arm on a later month.
type RateOverride struct {
	Rate           decimal.Decimal
	Remaining      int
	HasDuration    bool
	SourceChangeID string
}

// ShockRecovery is an active linear recovery ramp after an investment
// value shock.
type ShockRecovery struct {
	PerMonth   decimal.Decimal
	Remaining  int
	TypeFilter string
}

// MatchConfig holds employer retirement-match terms.
type MatchConfig struct {
	Percent         decimal.Decimal
	LimitPercent    decimal.Decimal
	AnnualCap       *decimal.Decimal
	TargetAccountID string
}

// State is the mutable aggregate representing one point in simulated time.
// One instance exists per projection run; it is discarded afterwards.
type State struct {
	Assets      []*Asset
	Liabilities []*Liability

	Incomes   []*LineItem
	Expenses  []*LineItem
	Transfers []*Transfer

	DeferredIncomes  []*LineItem
	DeferredExpenses []*LineItem

	ContributionRates map[domain.DeductionType]decimal.Decimal
	Match             MatchConfig
	MatchYTD          decimal.Decimal

	// Applied tracks one-time changes already applied, keyed by change id.
	Applied map[string]bool
	// IncomeTaxLines maps an income line id to its paired tax-expense line.
	IncomeTaxLines map[string]string

	InflationOverride    *RateOverride
	ReturnOverride       *RateOverride
	SalaryGrowthOverride *RateOverride
	Recovery             *ShockRecovery
}

func newState() *State {
	return &State{
		ContributionRates: make(map[domain.DeductionType]decimal.Decimal),
		Applied:           make(map[string]bool),
		IncomeTaxLines:    make(map[string]string),
	}
}

// Asset returns the asset with the given id, or nil.
func (s *State) Asset(id string) *Asset {
	for _, a := range s.Assets {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// Liability returns the liability with the given id, or nil.
func (s *State) Liability(id string) *Liability {
	for _, l := range s.Liabilities {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// Income returns the active income line with the given id, or nil.
func (s *State) Income(id string) *LineItem {
	for _, li := range s.Incomes {
		if li.ID == id {
			return li
		}
	}
	return nil
}

// Expense returns the active expense line with the given id, or nil.
func (s *State) Expense(id string) *LineItem {
	for _, li := range s.Expenses {
		if li.ID == id {
			return li
		}
	}
	return nil
}

// Transfer returns the transfer with the given id, or nil.
func (s *State) Transfer(id string) *Transfer {
	for _, t := range s.Transfers {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (s *State) removeAsset(id string) {
	for i, a := range s.Assets {
		if a.ID == id {
			s.Assets = append(s.Assets[:i], s.Assets[i+1:]...)
			return
		}
	}
}

func (s *State) removeLiability(id string) {
	for i, l := range s.Liabilities {
		if l.ID == id {
			s.Liabilities = append(s.Liabilities[:i], s.Liabilities[i+1:]...)
			return
		}
	}
}

func (s *State) removeExpense(id string) {
	for i, li := range s.Expenses {
		if li.ID == id {
			s.Expenses = append(s.Expenses[:i], s.Expenses[i+1:]...)
			return
		}
	}
}

func (s *State) removeTransfer(id string) {
	for i, t := range s.Transfers {
		if t.ID == id {
			s.Transfers = append(s.Transfers[:i], s.Transfers[i+1:]...)
			return
		}
	}
}

// removeIncome deletes an income line and its paired tax-expense line via
// the income→tax-expense map, never by name matching.
func (s *State) removeIncome(id string) {
	for i, li := range s.Incomes {
		if li.ID == id {
			s.Incomes = append(s.Incomes[:i], s.Incomes[i+1:]...)
			break
		}
	}
	if taxID, ok := s.IncomeTaxLines[id]; ok {
		s.removeExpense(taxID)
		delete(s.IncomeTaxLines, id)
	}
}

// FirstLiquidAsset returns the primary liquid asset in deterministic
// iteration order, or nil.
func (s *State) FirstLiquidAsset() *Asset {
	for _, a := range s.Assets {
		if a.IsLiquid {
			return a
		}
	}
	return nil
}

// FirstRetirementAsset returns the first retirement-class asset, or nil.
func (s *State) FirstRetirementAsset() *Asset {
	for _, a := range s.Assets {
		if a.IsRetirement {
			return a
		}
	}
	return nil
}

// FirstInvestmentAsset returns the first retirement or brokerage/crypto
// asset, or nil.
func (s *State) FirstInvestmentAsset() *Asset {
	for _, a := range s.Assets {
		if a.IsInvestment() {
			return a
		}
	}
	return nil
}

// FirstSalaryIncome returns the first salary-category income line, or nil.
// Contribution-rate deductions are derived from this line.
func (s *State) FirstSalaryIncome() *LineItem {
	for _, li := range s.Incomes {
		if domain.SalaryCategories[li.Category] {
			return li
		}
	}
	return nil
}

// TotalMonthlyIncome sums all active income lines.
func (s *State) TotalMonthlyIncome() decimal.Decimal {
	var total decimal.Decimal
	for _, li := range s.Incomes {
		total = total.Add(li.Monthly)
	}
	return total
}

// TotalMonthlyExpenses sums all active expense lines.
func (s *State) TotalMonthlyExpenses() decimal.Decimal {
	var total decimal.Decimal
	for _, li := range s.Expenses {
		total = total.Add(li.Monthly)
	}
	return total
}

// MonthlySalaryIncome sums salary-category income lines.
func (s *State) MonthlySalaryIncome() decimal.Decimal {
	var total decimal.Decimal
	for _, li := range s.Incomes {
		if domain.SalaryCategories[li.Category] {
			total = total.Add(li.Monthly)
		}
	}
	return total
}

// isDebtExpense reports whether the line counts as debt service.
func isDebtExpense(li *LineItem) bool {
	return li.DebtID != "" || domain.DebtCategories[li.Category]
}

// debtExpenseLinesFor returns the expense lines tied to a liability:
// explicitly tagged lines plus legacy lines matched by id substring when no
// tag exists.
func (s *State) debtExpenseLinesFor(liabilityID string) []*LineItem {
	var out []*LineItem
	for _, li := range s.Expenses {
		if li.DebtID == liabilityID {
			out = append(out, li)
			continue
		}
		if li.DebtID == "" && domain.DebtCategories[li.Category] && strings.Contains(li.ID, liabilityID) {
			out = append(out, li)
		}
	}
	return out
}

// preTaxMonthlyDeduction is the monthly pre-tax deduction attributed to the
// line: contribution rates apply to the first salary-category income only.
func (s *State) preTaxMonthlyDeduction(li *LineItem) decimal.Decimal {
	first := s.FirstSalaryIncome()
	if first == nil || first.ID != li.ID {
		return decimal.Zero
	}
	var rate decimal.Decimal
	for _, r := range []domain.DeductionType{domain.DeductionRetirement, domain.DeductionHealthSavings} {
		if v, ok := s.ContributionRates[r]; ok {
			rate = rate.Add(v)
		}
	}
	return li.Monthly.Mul(rate)
}

// taxableAnnual is the line's annual income net of pre-tax deductions.
func (s *State) taxableAnnual(li *LineItem) decimal.Decimal {
	annual := li.Monthly.Sub(s.preTaxMonthlyDeduction(li)).Mul(decimal.NewFromInt(12))
	if annual.IsNegative() {
		return decimal.Zero
	}
	return annual
}

// annualIncomeExcluding sums the taxable annual income of every active
// income line except the given one.
func (s *State) annualIncomeExcluding(id string) decimal.Decimal {
	var total decimal.Decimal
	for _, li := range s.Incomes {
		if li.ID == id {
			continue
		}
		total = total.Add(s.taxableAnnual(li))
	}
	return total
}

func taxLineID(incomeID string) string { return "tax:" + incomeID }

// attachIncomeTax prices the marginal tax on an income line against the
// rest of the household's income and appends (or updates) its paired
// tax-expense line.
func (s *State) attachIncomeTax(li *LineItem, calc TaxCalculator) {
	s.setIncomeTax(li, calc, s.annualIncomeExcluding(li.ID))
}

func (s *State) setIncomeTax(li *LineItem, calc TaxCalculator, existingAnnual decimal.Decimal) {
	incomeType := li.IncomeType
	if incomeType == "" {
		incomeType = domain.IncomeEmployment
	}
	breakdown := calc.MarginalTax(s.taxableAnnual(li), incomeType, existingAnnual)
	monthly := breakdown.Total.Div(decimal.NewFromInt(12))

	if taxID, ok := s.IncomeTaxLines[li.ID]; ok {
		if line := s.Expense(taxID); line != nil {
			line.Monthly = monthly
			line.Amount = monthly
			line.EndDate = li.EndDate
			return
		}
	}
	taxLine := &LineItem{
		ID:        taxLineID(li.ID),
		Name:      li.Name + " tax",
		Category:  domain.CategoryTaxes,
		Amount:    monthly,
		Frequency: domain.FrequencyMonthly,
		Monthly:   monthly,
		EndDate:   li.EndDate,
	}
	s.Expenses = append(s.Expenses, taxLine)
	s.IncomeTaxLines[li.ID] = taxLine.ID
}

// recomputeAllTaxes reprices every income line's tax in stable order,
// maintaining a running cumulative-annual-income total so the stack stays
// marginally consistent. Called at initialization and whenever pre-tax
// deductions shift the taxable base.
func (s *State) recomputeAllTaxes(calc TaxCalculator) {
	var cumulative decimal.Decimal
	for _, li := range s.Incomes {
		s.setIncomeTax(li, calc, cumulative)
		cumulative = cumulative.Add(s.taxableAnnual(li))
	}
}
