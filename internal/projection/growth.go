package projection

import (
	"math"

	"github.com/Oliver16/fincast/internal/domain"
	"github.com/shopspring/decimal"
)

// effectiveRates returns the scenario's annual rates with any session-scoped
// overrides applied.
func (s *State) effectiveRates(sc domain.Scenario) (inflation, investReturn, salaryGrowth decimal.Decimal) {
	inflation = sc.InflationRate
	investReturn = sc.ReturnRate
	salaryGrowth = sc.SalaryGrowth
	if s.InflationOverride != nil {
		inflation = s.InflationOverride.Rate
	}
	if s.ReturnOverride != nil {
		investReturn = s.ReturnOverride.Rate
	}
	if s.SalaryGrowthOverride != nil {
		salaryGrowth = s.SalaryGrowthOverride.Rate
	}
	return inflation, investReturn, salaryGrowth
}

// monthlyReturnRate converts an annual return to its compounding monthly
// equivalent, (1+r)^(1/12) - 1. Decimal exponentiation is integer-only, so
// the fractional exponent round-trips through float64; balances themselves
// stay decimal.
func monthlyReturnRate(annual decimal.Decimal) decimal.Decimal {
	f, _ := annual.Float64()
	return decimal.NewFromFloat(math.Pow(1+f, 1.0/12.0) - 1)
}

// grow applies the month's growth step: annual salary and inflation
// step-growth at year boundaries, monthly compounding on investment-class
// assets every month, then override and shock-recovery bookkeeping.
func (s *State) grow(monthIndex int, sc domain.Scenario) {
	inflation, investReturn, salaryGrowth := s.effectiveRates(sc)

	if monthIndex > 0 && monthIndex%12 == 0 {
		salaryFactor := decimal.NewFromInt(1).Add(salaryGrowth)
		inflationFactor := decimal.NewFromInt(1).Add(inflation)
		for _, li := range s.Incomes {
			if domain.SalaryCategories[li.Category] {
				li.Amount = li.Amount.Mul(salaryFactor)
				li.Monthly = li.Monthly.Mul(salaryFactor)
			}
		}
		for _, li := range s.Expenses {
			if isDebtExpense(li) {
				continue
			}
			li.Amount = li.Amount.Mul(inflationFactor)
			li.Monthly = li.Monthly.Mul(inflationFactor)
		}
	}

	monthlyFactor := decimal.NewFromInt(1).Add(monthlyReturnRate(investReturn))
	for _, a := range s.Assets {
		if a.IsInvestment() {
			a.Balance = a.Balance.Mul(monthlyFactor)
		}
	}

	if s.Recovery != nil {
		recoveryFactor := decimal.NewFromInt(1).Add(s.Recovery.PerMonth)
		for _, a := range s.Assets {
			if shockApplies(s.Recovery.TypeFilter, a) {
				a.Balance = a.Balance.Mul(recoveryFactor)
			}
		}
		s.Recovery.Remaining--
		if s.Recovery.Remaining <= 0 {
			s.Recovery = nil
		}
	}

	// A timed inflation override counts down and reverts to the scenario
	// rate when exhausted. Marking the source change applied keeps the
	// still-open change window from re-installing it next month.
	if s.InflationOverride != nil && s.InflationOverride.HasDuration {
		s.InflationOverride.Remaining--
		if s.InflationOverride.Remaining <= 0 {
			if s.InflationOverride.SourceChangeID != "" {
				s.Applied[s.InflationOverride.SourceChangeID] = true
			}
			s.InflationOverride = nil
		}
	}
}
