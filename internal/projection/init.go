package projection

import (
	"time"

	"github.com/Oliver16/fincast/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// buildState constructs the Financial State from external data as of the
// reference date. ref is the scenario start for live runs or the pinned
// as-of date for frozen baselines.
func buildState(in Inputs, ref, horizonEnd time.Time, calc TaxCalculator, log zerolog.Logger) *State {
	s := newState()

	for _, acct := range in.Accounts {
		if !acct.Active {
			continue
		}
		balance, ok := acct.BalanceAsOf(ref)
		if !ok {
			log.Debug().Str("account", acct.ID).Msg("no balance on or before reference date, excluding")
			continue
		}
		switch acct.Kind {
		case domain.KindLiability:
			lia := &Liability{ID: acct.ID, Name: acct.Name, Type: acct.Type, Balance: balance}
			if acct.Liability != nil {
				lia.AnnualRate = acct.Liability.AnnualRate
				lia.Payment = acct.Liability.ScheduledPayment
				lia.TermMonths = acct.Liability.TermMonths
			}
			s.Liabilities = append(s.Liabilities, lia)
		default:
			s.Assets = append(s.Assets, &Asset{
				ID:           acct.ID,
				Name:         acct.Name,
				Type:         acct.Type,
				IsLiquid:     acct.IsLiquid,
				IsRetirement: acct.IsRetirement,
				Balance:      balance,
			})
		}
	}

	// Income sources first, in input order, skipping any source already
	// represented by a linked recurring income flow.
	for _, src := range in.IncomeSources {
		if !src.Active || endedBefore(src.EndDate, ref) {
			continue
		}
		if coveredByFlow(in.Flows, src.ID, ref) {
			continue
		}
		li := &LineItem{
			ID:         src.ID,
			Name:       src.Name,
			Category:   domain.CategorySalary,
			Amount:     src.AnnualAmount.Div(src.PayFrequency.AnnualPeriods()),
			Frequency:  src.PayFrequency,
			Monthly:    src.MonthlyAmount(),
			StartDate:  src.StartDate,
			EndDate:    src.EndDate,
			IncomeType: src.Classification,
		}
		if deferredStart(src.StartDate, ref, horizonEnd) {
			s.DeferredIncomes = append(s.DeferredIncomes, li)
		} else if src.StartDate == nil || !src.StartDate.After(horizonEnd) {
			s.Incomes = append(s.Incomes, li)
		}
	}

	// Then recurring flows, split by type.
	for _, flow := range in.Flows {
		if !flow.Active || endedBefore(flow.EndDate, ref) {
			continue
		}
		switch flow.Type {
		case domain.FlowTransfer:
			s.Transfers = append(s.Transfers, &Transfer{
				ID:              flow.ID,
				Name:            flow.Name,
				Monthly:         flow.MonthlyAmount(),
				TargetAccountID: flow.LinkedAccountID,
			})
		case domain.FlowIncome, domain.FlowExpense:
			li := flowLine(flow)
			deferred := deferredStart(flow.StartDate, ref, horizonEnd)
			if flow.StartDate != nil && flow.StartDate.After(horizonEnd) {
				continue
			}
			if flow.Type == domain.FlowIncome {
				if deferred {
					s.DeferredIncomes = append(s.DeferredIncomes, li)
				} else {
					s.Incomes = append(s.Incomes, li)
				}
			} else {
				if deferred {
					s.DeferredExpenses = append(s.DeferredExpenses, li)
				} else {
					s.Expenses = append(s.Expenses, li)
				}
			}
		}
	}

	// Contribution rates and employer-match config from active pre-tax
	// deduction records.
	for _, src := range in.IncomeSources {
		if !src.Active {
			continue
		}
		for _, ded := range src.Deductions {
			if !ded.Active {
				continue
			}
			if ded.Percent != nil {
				s.ContributionRates[ded.Type] = *ded.Percent
				s.upsertContributionLines(ded.Type, ded.TargetAccountID)
			} else if ded.Amount != nil {
				s.upsertFixedContributionLines(ded.Type, *ded.Amount, ded.TargetAccountID)
			}
			if ded.Type == domain.DeductionRetirement && ded.EmployerMatchPercent != nil {
				s.Match = MatchConfig{
					Percent:         *ded.EmployerMatchPercent,
					AnnualCap:       ded.AnnualMatchCap,
					TargetAccountID: ded.TargetAccountID,
				}
				if ded.EmployerMatchLimit != nil {
					s.Match.LimitPercent = *ded.EmployerMatchLimit
				}
			}
		}
	}

	s.recomputeAllTaxes(calc)
	s.seedMatchYTD(ref)

	return s
}

func flowLine(flow domain.RecurringFlow) *LineItem {
	li := &LineItem{
		ID:              flow.ID,
		Name:            flow.Name,
		Category:        flow.Category,
		Amount:          flow.Amount,
		Frequency:       flow.Frequency,
		Monthly:         flow.MonthlyAmount(),
		LinkedAccountID: flow.LinkedAccountID,
		StartDate:       flow.StartDate,
		EndDate:         flow.EndDate,
		IncomeType:      flow.IncomeType,
	}
	if flow.Type == domain.FlowIncome && li.IncomeType == "" {
		li.IncomeType = inferIncomeType(flow.Category)
	}
	if flow.Type == domain.FlowExpense && domain.DebtCategories[flow.Category] && flow.LinkedAccountID != "" {
		li.DebtID = flow.LinkedAccountID
		li.DebtRole = DebtRolePayment
	}
	return li
}

func inferIncomeType(category string) domain.IncomeType {
	if category == "self_employment" || category == "business" || category == "freelance" {
		return domain.IncomeSelfEmployment
	}
	return domain.IncomeEmployment
}

func endedBefore(end *time.Time, ref time.Time) bool {
	return end != nil && end.Before(ref)
}

func deferredStart(start *time.Time, ref, horizonEnd time.Time) bool {
	return start != nil && start.After(ref) && !start.After(horizonEnd)
}

func coveredByFlow(flows []domain.RecurringFlow, sourceID string, ref time.Time) bool {
	for _, flow := range flows {
		if flow.Active && flow.Type == domain.FlowIncome && flow.IncomeSourceID == sourceID && !endedBefore(flow.EndDate, ref) {
			return true
		}
	}
	return false
}

// upsertContributionLines derives the monthly deduction from the first
// salary-category income line and creates or updates the paired take-home
// expense line and transfer line.
func (s *State) upsertContributionLines(dedType domain.DeductionType, targetAccountID string) {
	rate := s.ContributionRates[dedType]
	salary := s.FirstSalaryIncome()
	if salary == nil {
		return
	}
	s.upsertFixedContributionLines(dedType, salary.Monthly.Mul(rate), targetAccountID)
}

func (s *State) upsertFixedContributionLines(dedType domain.DeductionType, monthly decimal.Decimal, targetAccountID string) {
	if targetAccountID == "" {
		if target := s.contributionTarget(dedType); target != nil {
			targetAccountID = target.ID
		}
	}

	expenseID := "contrib:" + string(dedType)
	if line := s.Expense(expenseID); line != nil {
		line.Monthly = monthly
		line.Amount = monthly
	} else {
		s.Expenses = append(s.Expenses, &LineItem{
			ID:        expenseID,
			Name:      string(dedType) + " contribution",
			Category:  domain.CategoryContribution,
			Amount:    monthly,
			Frequency: domain.FrequencyMonthly,
			Monthly:   monthly,
		})
	}

	transferID := "contribtx:" + string(dedType)
	if tr := s.Transfer(transferID); tr != nil {
		tr.Monthly = monthly
		tr.TargetAccountID = targetAccountID
	} else if targetAccountID != "" {
		s.Transfers = append(s.Transfers, &Transfer{
			ID:              transferID,
			Name:            string(dedType) + " contribution",
			Monthly:         monthly,
			TargetAccountID: targetAccountID,
		})
	}
}

func (s *State) contributionTarget(dedType domain.DeductionType) *Asset {
	if dedType == domain.DeductionRetirement {
		if a := s.FirstRetirementAsset(); a != nil {
			return a
		}
	}
	return s.FirstInvestmentAsset()
}

// seedMatchYTD estimates employer match already received this calendar year
// by projecting the current contribution rate and salary backward across the
// elapsed months, capped at the annual limit. An approximation, not a
// historical reconstruction.
func (s *State) seedMatchYTD(ref time.Time) {
	elapsed := int(ref.Month()) - 1
	if elapsed <= 0 || s.Match.Percent.IsZero() {
		return
	}
	monthly := s.monthlyEmployerMatch()
	seed := monthly.Mul(decimal.NewFromInt(int64(elapsed)))
	if s.Match.AnnualCap != nil && seed.GreaterThan(*s.Match.AnnualCap) {
		seed = *s.Match.AnnualCap
	}
	s.MatchYTD = seed
}

// monthlyEmployerMatch computes the uncapped-by-YTD monthly employer match
// from current salary income and the retirement contribution rate.
func (s *State) monthlyEmployerMatch() decimal.Decimal {
	if s.Match.Percent.IsZero() {
		return decimal.Zero
	}
	salary := s.MonthlySalaryIncome()
	rate := s.ContributionRates[domain.DeductionRetirement]
	contribution := salary.Mul(rate)
	if s.Match.LimitPercent.GreaterThan(decimal.Zero) {
		limit := salary.Mul(s.Match.LimitPercent)
		if contribution.GreaterThan(limit) {
			contribution = limit
		}
	}
	return contribution.Mul(s.Match.Percent)
}
