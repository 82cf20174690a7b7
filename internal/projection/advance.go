package projection

import (
	"github.com/shopspring/decimal"
)

// advance executes the month's cash mechanics: net cash flow into the
// primary liquid asset, transfers, employer match, liability amortization,
// and retirement of fully paid debts. Balances are clamped at zero
// throughout; an infeasible month stalls at zero rather than going
// negative.
func (s *State) advance(monthIndex int) {
	netCashFlow := s.TotalMonthlyIncome().Sub(s.TotalMonthlyExpenses())
	s.creditLiquid(netCashFlow, false)

	for _, tr := range s.Transfers {
		s.creditLiquid(tr.Monthly.Neg(), false)
		s.creditTarget(tr.TargetAccountID, tr.Monthly)
	}

	s.applyEmployerMatch(monthIndex)
	s.amortizeLiabilities()
}

// applyEmployerMatch derives the employee contribution from salary income
// and the retirement rate, caps it by the salary-percentage limit, applies
// the match percentage, caps by the remaining annual dollar limit, and
// credits a retirement-class asset. The year-to-date counter resets every
// 12 simulated months.
func (s *State) applyEmployerMatch(monthIndex int) {
	if monthIndex > 0 && monthIndex%12 == 0 {
		s.MatchYTD = decimal.Zero
	}
	if s.Match.Percent.IsZero() {
		return
	}
	match := s.monthlyEmployerMatch()
	if s.Match.AnnualCap != nil {
		remaining := s.Match.AnnualCap.Sub(s.MatchYTD)
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}
		if match.GreaterThan(remaining) {
			match = remaining
		}
	}
	if match.LessThanOrEqual(decimal.Zero) {
		return
	}
	target := s.Asset(s.Match.TargetAccountID)
	if target == nil {
		target = s.FirstRetirementAsset()
	}
	if target == nil {
		return
	}
	target.Balance = target.Balance.Add(match)
	s.MatchYTD = s.MatchYTD.Add(match)
}

// amortizeLiabilities applies each liability's scheduled payment plus any
// explicitly targeted extra payments, then retires debts that reach zero,
// removing every expense line tied to them.
func (s *State) amortizeLiabilities() {
	var paidOff []string
	for _, lia := range s.Liabilities {
		if lia.Balance.LessThanOrEqual(decimal.Zero) || lia.Payment.LessThanOrEqual(decimal.Zero) {
			continue
		}
		interest := lia.Balance.Mul(lia.AnnualRate).Div(twelve)
		principal := lia.Payment.Sub(interest)
		for _, li := range s.debtExpenseLinesFor(lia.ID) {
			if li.DebtRole == DebtRolePayment {
				continue
			}
			principal = principal.Add(li.Monthly)
		}
		lia.Balance = lia.Balance.Sub(principal)
		if lia.Balance.LessThanOrEqual(zeroTolerance) {
			lia.Balance = decimal.Zero
			paidOff = append(paidOff, lia.ID)
		}
	}
	for _, id := range paidOff {
		s.retireLiability(id)
	}
}

// zeroTolerance absorbs sub-cent residue so a level payment retires its
// debt on schedule.
var zeroTolerance = decimal.NewFromFloat(0.01)
