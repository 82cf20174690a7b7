package projection

import (
	"fmt"
	"strings"
	"time"

	"github.com/Oliver16/fincast/internal/domain"
	"github.com/shopspring/decimal"
)

// handlerFunc is one pure transformation per change type. Handlers for
// one-time change types run exactly once per change id; recurring handlers
// run every month their window is active and must be idempotent (set or
// replace, never accumulate) unless monthly recurrence is the point, as
// with ongoing extra debt payments executed by the month advance.
type handlerFunc func(s *State, c domain.Change, date time.Time, calc TaxCalculator) error

var handlers = map[domain.ChangeType]handlerFunc{
	domain.ChangeAddIncome:         handleAddIncome,
	domain.ChangeModifyIncome:      handleModifyIncome,
	domain.ChangeRemoveIncome:      handleRemoveIncome,
	domain.ChangeSalaryRaise:       handleSalaryRaise,
	domain.ChangeSalaryBonus:       handleLumpSumIncome,
	domain.ChangeChangeIncomeType:  handleChangeIncomeType,
	domain.ChangeLumpSumIncome:     handleLumpSumIncome,
	domain.ChangeAdjustTotalIncome: handleAdjustTotalIncome,
	domain.ChangeStartBusiness:     handleAddIncome,

	domain.ChangeAddExpense:          handleAddExpense,
	domain.ChangeModifyExpense:       handleModifyExpense,
	domain.ChangeRemoveExpense:       handleRemoveExpense,
	domain.ChangeReduceExpense:       handleReduceExpense,
	domain.ChangeLumpSumExpense:      handleLumpSumExpense,
	domain.ChangeAdjustTotalExpenses: handleAdjustTotalExpenses,
	domain.ChangeQuarterlyEstimates:  handleQuarterlyEstimates,
	domain.ChangeExtraWithholding:    handleExtraWithholding,

	domain.ChangeAddDebt:           handleAddDebt,
	domain.ChangeModifyDebt:        handleModifyDebt,
	domain.ChangeRemoveDebt:        handleRemoveDebt,
	domain.ChangePayoffDebt:        handleExtraPayment,
	domain.ChangeRefinanceDebt:     handleRefinanceDebt,
	domain.ChangeExtraDebtPayment:  handleExtraPayment,
	domain.ChangeInterestRateShock: handleInterestRateShock,

	domain.ChangeAddAsset:        handleAddAsset,
	domain.ChangeModifyAsset:     handleModifyAsset,
	domain.ChangeRemoveAsset:     handleRemoveAsset,
	domain.ChangeSellAsset:       handleSellAsset,
	domain.ChangeInvestmentShock: handleInvestmentShock,
	domain.ChangeOneTimeTransfer: handleOneTimeTransfer,

	domain.ChangeModify401k:         handleContributionRate(domain.DeductionRetirement),
	domain.ChangeModifyHSA:          handleContributionRate(domain.DeductionHealthSavings),
	domain.ChangeSetEmployerMatch:   handleSetEmployerMatch,
	domain.ChangeSetSavingsTransfer: handleSetSavingsTransfer,
	domain.ChangeAddTransfer:        handleAddTransfer,
	domain.ChangeModifyTransfer:     handleModifyTransfer,
	domain.ChangeRemoveTransfer:     handleRemoveTransfer,

	domain.ChangeOverrideInflation:  handleOverrideInflation,
	domain.ChangeOverrideReturn:     handleOverrideReturn,
	domain.ChangeOverrideSalaryGrow: handleOverrideSalaryGrowth,
}

func changeLineID(c domain.Change) string { return "chg:" + c.ID }

func paramsOf[T domain.ChangeParams](c domain.Change) (T, error) {
	p, ok := c.Params.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("change %s (%s): params are %T, want %T", c.ID, c.Type, c.Params, zero)
	}
	return p, nil
}

func handleAddIncome(s *State, c domain.Change, _ time.Time, calc TaxCalculator) error {
	p, err := paramsOf[domain.FlowParams](c)
	if err != nil {
		return err
	}
	incomeType := p.IncomeType
	if incomeType == "" {
		incomeType = inferIncomeType(p.Category)
	}
	li := &LineItem{
		ID:         changeLineID(c),
		Name:       p.Name,
		Category:   p.Category,
		Amount:     p.Amount,
		Frequency:  p.Frequency,
		Monthly:    p.Frequency.MonthlyAmount(p.Amount),
		EndDate:    c.EndDate,
		IncomeType: incomeType,
	}
	s.Incomes = append(s.Incomes, li)
	s.attachIncomeTax(li, calc)
	return nil
}

func handleModifyIncome(s *State, c domain.Change, _ time.Time, calc TaxCalculator) error {
	p, err := paramsOf[domain.ModifyFlowParams](c)
	if err != nil {
		return err
	}
	li := s.Income(c.SourceFlowID)
	if li == nil {
		return nil
	}
	before := li.Monthly
	applyFlowModification(li, p)
	if !li.Monthly.Equal(before) {
		s.setIncomeTax(li, calc, s.annualIncomeExcluding(li.ID))
	}
	return nil
}

func applyFlowModification(li *LineItem, p domain.ModifyFlowParams) {
	if p.Name != nil {
		li.Name = *p.Name
	}
	if p.Category != nil {
		li.Category = *p.Category
	}
	if p.Amount != nil {
		li.Amount = *p.Amount
	}
	if p.Frequency != nil {
		li.Frequency = *p.Frequency
	}
	li.Monthly = li.Frequency.MonthlyAmount(li.Amount)
}

func handleRemoveIncome(s *State, c domain.Change, _ time.Time, _ TaxCalculator) error {
	s.removeIncome(c.SourceFlowID)
	return nil
}

func handleSalaryRaise(s *State, c domain.Change, _ time.Time, calc TaxCalculator) error {
	p, err := paramsOf[domain.PercentParams](c)
	if err != nil {
		return err
	}
	li := s.Income(c.SourceFlowID)
	if li == nil {
		return nil
	}
	factor := decimal.NewFromInt(1).Add(p.Percent)
	li.Amount = li.Amount.Mul(factor)
	li.Monthly = li.Monthly.Mul(factor)
	s.setIncomeTax(li, calc, s.annualIncomeExcluding(li.ID))
	return nil
}

func handleChangeIncomeType(s *State, c domain.Change, _ time.Time, calc TaxCalculator) error {
	p, err := paramsOf[domain.IncomeTypeParams](c)
	if err != nil {
		return err
	}
	li := s.Income(c.SourceFlowID)
	if li == nil {
		return nil
	}
	li.IncomeType = p.IncomeType
	s.setIncomeTax(li, calc, s.annualIncomeExcluding(li.ID))
	return nil
}

// handleLumpSumIncome credits the primary liquid asset with a one-time
// amount net of the marginal tax on it.
func handleLumpSumIncome(s *State, c domain.Change, _ time.Time, calc TaxCalculator) error {
	p, err := paramsOf[domain.AmountParams](c)
	if err != nil {
		return err
	}
	existing := s.annualIncomeExcluding("")
	tax := calc.MarginalTax(p.Amount, domain.IncomeEmployment, existing)
	s.creditLiquid(p.Amount.Sub(tax.Total), false)
	return nil
}

func handleLumpSumExpense(s *State, c domain.Change, _ time.Time, _ TaxCalculator) error {
	p, err := paramsOf[domain.AmountParams](c)
	if err != nil {
		return err
	}
	s.creditLiquid(p.Amount.Neg(), false)
	return nil
}

// handleAdjustTotalIncome maintains an overlay income line sized from the
// current aggregate total (not the original baseline) when given a percent.
func handleAdjustTotalIncome(s *State, c domain.Change, _ time.Time, calc TaxCalculator) error {
	p, err := paramsOf[domain.AdjustParams](c)
	if err != nil {
		return err
	}
	id := changeLineID(c)
	var monthly decimal.Decimal
	if p.Amount != nil {
		monthly = *p.Amount
	} else {
		var base decimal.Decimal
		for _, li := range s.Incomes {
			if li.ID == id {
				continue
			}
			base = base.Add(li.Monthly)
		}
		monthly = base.Mul(*p.Percent)
	}
	li := s.Income(id)
	if li == nil {
		li = &LineItem{
			ID:         id,
			Name:       "income adjustment",
			Category:   domain.CategoryOverlay,
			Frequency:  domain.FrequencyMonthly,
			EndDate:    c.EndDate,
			IncomeType: domain.IncomeEmployment,
		}
		s.Incomes = append(s.Incomes, li)
	}
	li.Amount = monthly
	li.Monthly = monthly
	s.setIncomeTax(li, calc, s.annualIncomeExcluding(li.ID))
	return nil
}

func handleAdjustTotalExpenses(s *State, c domain.Change, _ time.Time, _ TaxCalculator) error {
	p, err := paramsOf[domain.AdjustParams](c)
	if err != nil {
		return err
	}
	id := changeLineID(c)
	var monthly decimal.Decimal
	if p.Amount != nil {
		monthly = *p.Amount
	} else {
		var base decimal.Decimal
		for _, li := range s.Expenses {
			if li.ID == id {
				continue
			}
			base = base.Add(li.Monthly)
		}
		monthly = base.Mul(*p.Percent)
	}
	li := s.Expense(id)
	if li == nil {
		li = &LineItem{
			ID:        id,
			Name:      "expense adjustment",
			Category:  domain.CategoryOverlay,
			Frequency: domain.FrequencyMonthly,
			EndDate:   c.EndDate,
		}
		s.Expenses = append(s.Expenses, li)
	}
	li.Amount = monthly
	li.Monthly = monthly
	return nil
}

func handleAddExpense(s *State, c domain.Change, _ time.Time, _ TaxCalculator) error {
	p, err := paramsOf[domain.FlowParams](c)
	if err != nil {
		return err
	}
	s.Expenses = append(s.Expenses, &LineItem{
		ID:        changeLineID(c),
		Name:      p.Name,
		Category:  p.Category,
		Amount:    p.Amount,
		Frequency: p.Frequency,
		Monthly:   p.Frequency.MonthlyAmount(p.Amount),
		EndDate:   c.EndDate,
	})
	return nil
}

func handleModifyExpense(s *State, c domain.Change, _ time.Time, _ TaxCalculator) error {
	p, err := paramsOf[domain.ModifyFlowParams](c)
	if err != nil {
		return err
	}
	li := s.Expense(c.SourceFlowID)
	if li == nil {
		return nil
	}
	applyFlowModification(li, p)
	return nil
}

func handleRemoveExpense(s *State, c domain.Change, _ time.Time, _ TaxCalculator) error {
	s.removeExpense(c.SourceFlowID)
	return nil
}

func handleReduceExpense(s *State, c domain.Change, _ time.Time, _ TaxCalculator) error {
	p, err := paramsOf[domain.PercentParams](c)
	if err != nil {
		return err
	}
	li := s.Expense(c.SourceFlowID)
	if li == nil {
		return nil
	}
	factor := decimal.NewFromInt(1).Sub(p.Percent)
	if factor.IsNegative() {
		factor = decimal.Zero
	}
	li.Amount = li.Amount.Mul(factor)
	li.Monthly = li.Monthly.Mul(factor)
	return nil
}

// handleQuarterlyEstimates converts a quarterly estimated-tax amount to its
// monthly equivalent as a recurring expense overlay.
func handleQuarterlyEstimates(s *State, c domain.Change, _ time.Time, _ TaxCalculator) error {
	p, err := paramsOf[domain.AmountParams](c)
	if err != nil {
		return err
	}
	s.upsertSimpleExpense(c, "quarterly estimated tax", domain.CategoryTaxes, p.Amount.Div(decimal.NewFromInt(3)))
	return nil
}

func handleExtraWithholding(s *State, c domain.Change, _ time.Time, _ TaxCalculator) error {
	p, err := paramsOf[domain.AmountParams](c)
	if err != nil {
		return err
	}
	s.upsertSimpleExpense(c, "extra withholding", domain.CategoryTaxes, p.Amount)
	return nil
}

func (s *State) upsertSimpleExpense(c domain.Change, name, category string, monthly decimal.Decimal) {
	id := changeLineID(c)
	if li := s.Expense(id); li != nil {
		li.Monthly = monthly
		li.Amount = monthly
		return
	}
	s.Expenses = append(s.Expenses, &LineItem{
		ID:        id,
		Name:      name,
		Category:  category,
		Amount:    monthly,
		Frequency: domain.FrequencyMonthly,
		Monthly:   monthly,
		EndDate:   c.EndDate,
	})
}

// AmortizedPayment derives the level payment for a principal over a term:
// P = principal * r(1+r)^n / ((1+r)^n - 1), with r the monthly rate. A zero
// rate degenerates to principal/term.
func AmortizedPayment(principal, annualRate decimal.Decimal, termMonths int) decimal.Decimal {
	if termMonths <= 0 {
		return decimal.Zero
	}
	n := decimal.NewFromInt(int64(termMonths))
	r := annualRate.Div(twelve)
	if r.IsZero() {
		return principal.Div(n)
	}
	growth := decimal.NewFromInt(1).Add(r).Pow(n)
	return principal.Mul(r).Mul(growth).Div(growth.Sub(decimal.NewFromInt(1)))
}

var twelve = decimal.NewFromInt(12)

func handleAddDebt(s *State, c domain.Change, _ time.Time, _ TaxCalculator) error {
	p, err := paramsOf[domain.DebtParams](c)
	if err != nil {
		return err
	}
	payment := AmortizedPayment(p.Principal, p.AnnualRate, p.TermMonths)
	if p.Payment != nil {
		payment = *p.Payment
	}
	lia := &Liability{
		ID:         changeLineID(c),
		Name:       p.Name,
		Type:       p.DebtType,
		Balance:    p.Principal,
		AnnualRate: p.AnnualRate,
		Payment:    payment,
		TermMonths: p.TermMonths,
	}
	s.Liabilities = append(s.Liabilities, lia)
	s.Expenses = append(s.Expenses, &LineItem{
		ID:        "pay:" + lia.ID,
		Name:      p.Name + " payment",
		Category:  domain.CategoryDebt,
		Amount:    payment,
		Frequency: domain.FrequencyMonthly,
		Monthly:   payment,
		DebtID:    lia.ID,
		DebtRole:  DebtRolePayment,
	})
	return nil
}

func handleModifyDebt(s *State, c domain.Change, _ time.Time, _ TaxCalculator) error {
	p, err := paramsOf[domain.ModifyDebtParams](c)
	if err != nil {
		return err
	}
	lia := s.Liability(c.SourceAccountID)
	if lia == nil {
		return nil
	}
	if p.Principal != nil {
		lia.Balance = *p.Principal
	}
	if p.AnnualRate != nil {
		lia.AnnualRate = *p.AnnualRate
	}
	if p.TermMonths != nil {
		lia.TermMonths = *p.TermMonths
	}
	if p.Payment != nil && !lia.Payment.Equal(*p.Payment) {
		lia.Payment = *p.Payment
		s.retargetPaymentLine(lia, lia.Name+" payment")
	}
	return nil
}

func handleRemoveDebt(s *State, c domain.Change, _ time.Time, _ TaxCalculator) error {
	lia := s.Liability(c.SourceAccountID)
	if lia == nil {
		return nil
	}
	s.retireLiability(lia.ID)
	return nil
}

// handleExtraPayment appends a recurring extra-payment expense explicitly
// tagged to the target liability. The line is created even when the
// referenced liability does not exist in current state; it is then a no-op
// against the ledger rather than an error (documented leniency). Once the
// target debt retires and takes the line with it, the change is marked
// applied so it does not recreate the line on later months.
func handleExtraPayment(s *State, c domain.Change, _ time.Time, _ TaxCalculator) error {
	p, err := paramsOf[domain.AmountParams](c)
	if err != nil {
		return err
	}
	if s.Applied[c.ID] {
		return nil
	}
	id := "extra:" + c.ID
	if li := s.Expense(id); li != nil {
		li.Monthly = p.Amount
		li.Amount = p.Amount
		return nil
	}
	name := "extra payment"
	if lia := s.Liability(c.SourceAccountID); lia != nil {
		name = lia.Name + " extra payment"
	}
	s.Expenses = append(s.Expenses, &LineItem{
		ID:             id,
		Name:           name,
		Category:       domain.CategoryExtraPayment,
		Amount:         p.Amount,
		Frequency:      domain.FrequencyMonthly,
		Monthly:        p.Amount,
		EndDate:        c.EndDate,
		DebtID:         c.SourceAccountID,
		DebtRole:       DebtRoleExtra,
		SourceChangeID: c.ID,
	})
	return nil
}

// handleRefinanceDebt rolls closing costs into principal, installs the new
// rate and term, and replaces the payment expense line. A dangling source
// reference is a no-op, matching payoff leniency.
func handleRefinanceDebt(s *State, c domain.Change, _ time.Time, _ TaxCalculator) error {
	p, err := paramsOf[domain.RefinanceParams](c)
	if err != nil {
		return err
	}
	lia := s.Liability(c.SourceAccountID)
	if lia == nil {
		return nil
	}
	lia.Balance = lia.Balance.Add(p.ClosingCosts)
	lia.AnnualRate = p.AnnualRate
	lia.TermMonths = p.TermMonths
	lia.Payment = AmortizedPayment(lia.Balance, lia.AnnualRate, lia.TermMonths)
	s.retargetPaymentLine(lia, lia.Name+" payment (refinanced)")
	return nil
}

// retargetPaymentLine updates the scheduled payment expense matched by its
// explicit debt-id tag, inserting one if absent.
func (s *State) retargetPaymentLine(lia *Liability, name string) {
	for _, li := range s.Expenses {
		if li.DebtID == lia.ID && li.DebtRole == DebtRolePayment {
			li.Name = name
			li.Amount = lia.Payment
			li.Monthly = lia.Payment
			return
		}
	}
	s.Expenses = append(s.Expenses, &LineItem{
		ID:        "pay:" + lia.ID,
		Name:      name,
		Category:  domain.CategoryDebt,
		Amount:    lia.Payment,
		Frequency: domain.FrequencyMonthly,
		Monthly:   lia.Payment,
		DebtID:    lia.ID,
		DebtRole:  DebtRolePayment,
	})
}

func handleInterestRateShock(s *State, c domain.Change, _ time.Time, _ TaxCalculator) error {
	p, err := paramsOf[domain.RateShockParams](c)
	if err != nil {
		return err
	}
	for _, lia := range s.Liabilities {
		if !rateShockApplies(p.Scope, lia) {
			continue
		}
		lia.AnnualRate = lia.AnnualRate.Add(p.Delta)
		if lia.AnnualRate.IsNegative() {
			lia.AnnualRate = decimal.Zero
		}
		if lia.TermMonths > 0 {
			lia.Payment = AmortizedPayment(lia.Balance, lia.AnnualRate, lia.TermMonths)
			s.retargetPaymentLine(lia, lia.Name+" payment")
		}
	}
	return nil
}

func rateShockApplies(scope string, lia *Liability) bool {
	switch scope {
	case "", domain.RateShockAll:
		return true
	case domain.RateShockVariable:
		return domain.VariableRateLiabilityTypes[lia.Type]
	default:
		return strings.Contains(lia.Type, scope)
	}
}

func handleAddAsset(s *State, c domain.Change, _ time.Time, _ TaxCalculator) error {
	p, err := paramsOf[domain.AssetParams](c)
	if err != nil {
		return err
	}
	s.Assets = append(s.Assets, &Asset{
		ID:           changeLineID(c),
		Name:         p.Name,
		Type:         p.AssetType,
		IsLiquid:     p.IsLiquid,
		IsRetirement: p.IsRetirement,
		Balance:      p.Balance,
	})
	return nil
}

func handleModifyAsset(s *State, c domain.Change, _ time.Time, _ TaxCalculator) error {
	p, err := paramsOf[domain.BalanceParams](c)
	if err != nil {
		return err
	}
	if a := s.Asset(c.SourceAccountID); a != nil {
		a.Balance = p.Balance
	}
	return nil
}

func handleRemoveAsset(s *State, c domain.Change, _ time.Time, _ TaxCalculator) error {
	s.removeAsset(c.SourceAccountID)
	return nil
}

// handleSellAsset removes the asset and credits proceeds net of selling
// costs to the primary liquid asset, creating a liquid bucket when none
// exists.
func handleSellAsset(s *State, c domain.Change, _ time.Time, _ TaxCalculator) error {
	p, err := paramsOf[domain.SellAssetParams](c)
	if err != nil {
		return err
	}
	a := s.Asset(c.SourceAccountID)
	if a == nil {
		return nil
	}
	proceeds := a.Balance.Mul(decimal.NewFromInt(1).Sub(p.SellingCostPercent))
	if proceeds.IsNegative() {
		proceeds = decimal.Zero
	}
	s.removeAsset(a.ID)
	s.creditLiquid(proceeds, true)
	return nil
}

func handleInvestmentShock(s *State, c domain.Change, _ time.Time, _ TaxCalculator) error {
	p, err := paramsOf[domain.InvestmentShockParams](c)
	if err != nil {
		return err
	}
	factor := decimal.NewFromInt(1).Add(p.Percent)
	for _, a := range s.Assets {
		if !shockApplies(p.TypeFilter, a) {
			continue
		}
		a.Balance = a.Balance.Mul(factor)
	}
	if p.RecoveryMonths > 0 {
		// Linear ramp spread evenly over the recovery window.
		s.Recovery = &ShockRecovery{
			PerMonth:   p.Percent.Neg().Div(decimal.NewFromInt(int64(p.RecoveryMonths))),
			Remaining:  p.RecoveryMonths,
			TypeFilter: p.TypeFilter,
		}
	}
	return nil
}

func shockApplies(filter string, a *Asset) bool {
	if filter == "" {
		return a.IsInvestment()
	}
	return strings.Contains(a.Type, filter)
}

func handleOneTimeTransfer(s *State, c domain.Change, _ time.Time, _ TaxCalculator) error {
	p, err := paramsOf[domain.TransferParams](c)
	if err != nil {
		return err
	}
	s.creditLiquid(p.Amount.Neg(), false)
	s.creditTarget(p.TargetAccountID, p.Amount)
	return nil
}

// handleContributionRate sets a named contribution rate, rebuilds the
// derived deduction expense and transfer lines, and fully reprices tax for
// every income line since pre-tax deductions shift each taxable base.
func handleContributionRate(dedType domain.DeductionType) handlerFunc {
	return func(s *State, c domain.Change, _ time.Time, calc TaxCalculator) error {
		p, err := paramsOf[domain.RateParams](c)
		if err != nil {
			return err
		}
		s.ContributionRates[dedType] = p.Rate
		s.upsertContributionLines(dedType, p.TargetAccountID)
		s.recomputeAllTaxes(calc)
		return nil
	}
}

func handleSetEmployerMatch(s *State, c domain.Change, _ time.Time, _ TaxCalculator) error {
	p, err := paramsOf[domain.MatchParams](c)
	if err != nil {
		return err
	}
	target := s.Match.TargetAccountID
	s.Match = MatchConfig{
		Percent:         p.MatchPercent,
		LimitPercent:    p.LimitPercent,
		AnnualCap:       p.AnnualCap,
		TargetAccountID: target,
	}
	return nil
}

func handleSetSavingsTransfer(s *State, c domain.Change, _ time.Time, _ TaxCalculator) error {
	p, err := paramsOf[domain.TransferParams](c)
	if err != nil {
		return err
	}
	target := p.TargetAccountID
	if target == "" {
		if a := s.contributionTarget(domain.DeductionRetirement); a != nil {
			target = a.ID
		}
	}
	id := changeLineID(c)
	if tr := s.Transfer(id); tr != nil {
		tr.Monthly = p.Amount
		tr.TargetAccountID = target
		return nil
	}
	name := p.Name
	if name == "" {
		name = "savings transfer"
	}
	s.Transfers = append(s.Transfers, &Transfer{
		ID:              id,
		Name:            name,
		Monthly:         p.Amount,
		TargetAccountID: target,
		SourceChangeID:  c.ID,
	})
	return nil
}

func handleAddTransfer(s *State, c domain.Change, _ time.Time, _ TaxCalculator) error {
	p, err := paramsOf[domain.TransferParams](c)
	if err != nil {
		return err
	}
	s.Transfers = append(s.Transfers, &Transfer{
		ID:              changeLineID(c),
		Name:            p.Name,
		Monthly:         p.Amount,
		TargetAccountID: p.TargetAccountID,
		SourceChangeID:  c.ID,
	})
	return nil
}

func handleModifyTransfer(s *State, c domain.Change, _ time.Time, _ TaxCalculator) error {
	p, err := paramsOf[domain.TransferParams](c)
	if err != nil {
		return err
	}
	tr := s.Transfer(c.SourceFlowID)
	if tr == nil {
		return nil
	}
	tr.Monthly = p.Amount
	if p.TargetAccountID != "" {
		tr.TargetAccountID = p.TargetAccountID
	}
	return nil
}

func handleRemoveTransfer(s *State, c domain.Change, _ time.Time, _ TaxCalculator) error {
	s.removeTransfer(c.SourceFlowID)
	return nil
}

// handleOverrideInflation installs the inflation override. Once a
// duration-limited override has counted down and reverted, the change is
// marked applied so it does not re-arm even though its window is still open.
func handleOverrideInflation(s *State, c domain.Change, _ time.Time, _ TaxCalculator) error {
	p, err := paramsOf[domain.OverrideParams](c)
	if err != nil {
		return err
	}
	if s.Applied[c.ID] {
		return nil
	}
	if s.InflationOverride == nil {
		s.InflationOverride = &RateOverride{
			Rate:           p.Rate,
			Remaining:      p.DurationMonths,
			HasDuration:    p.DurationMonths > 0,
			SourceChangeID: c.ID,
		}
	} else if s.InflationOverride.SourceChangeID != c.ID {
		s.InflationOverride.Rate = p.Rate
	}
	return nil
}

func handleOverrideReturn(s *State, c domain.Change, _ time.Time, _ TaxCalculator) error {
	p, err := paramsOf[domain.OverrideParams](c)
	if err != nil {
		return err
	}
	s.ReturnOverride = &RateOverride{Rate: p.Rate}
	return nil
}

func handleOverrideSalaryGrowth(s *State, c domain.Change, _ time.Time, _ TaxCalculator) error {
	p, err := paramsOf[domain.OverrideParams](c)
	if err != nil {
		return err
	}
	s.SalaryGrowthOverride = &RateOverride{Rate: p.Rate}
	return nil
}

// creditLiquid adds amount (which may be negative) to the primary liquid
// asset, clamped at zero. When create is set and no liquid asset exists a
// new savings bucket is created to receive a positive credit.
func (s *State) creditLiquid(amount decimal.Decimal, create bool) {
	a := s.FirstLiquidAsset()
	if a == nil {
		if !create || amount.LessThanOrEqual(decimal.Zero) {
			return
		}
		a = &Asset{
			ID:       "liquid:auto",
			Name:     "Cash",
			Type:     domain.AssetTypeSavings,
			IsLiquid: true,
		}
		s.Assets = append(s.Assets, a)
	}
	a.Balance = a.Balance.Add(amount)
	if a.Balance.IsNegative() {
		a.Balance = decimal.Zero
	}
}

// creditTarget credits an asset or reduces a liability balance.
func (s *State) creditTarget(accountID string, amount decimal.Decimal) {
	if a := s.Asset(accountID); a != nil {
		a.Balance = a.Balance.Add(amount)
		return
	}
	if lia := s.Liability(accountID); lia != nil {
		lia.Balance = lia.Balance.Sub(amount)
		if lia.Balance.IsNegative() {
			lia.Balance = decimal.Zero
		}
	}
}

// retireLiability removes a liability and every expense line explicitly or
// implicitly tagged to it. Lines installed by a change mark that change
// applied so its still-open window cannot recreate them.
func (s *State) retireLiability(id string) {
	s.removeLiability(id)
	for _, li := range s.debtExpenseLinesFor(id) {
		if li.SourceChangeID != "" {
			s.Applied[li.SourceChangeID] = true
		}
		s.removeExpense(li.ID)
	}
}
