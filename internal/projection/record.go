package projection

import (
	"time"

	"github.com/Oliver16/fincast/internal/domain"
	"github.com/shopspring/decimal"
)

// ratioSentinel stands in for ratios whose denominator is zero; ratio math
// is total, never a division error.
var ratioSentinel = decimal.NewFromInt(9999)

// savingsRateBound clamps the savings rate to [-5, 5].
var savingsRateBound = decimal.NewFromInt(5)

const (
	moneyPlaces = 2
	ratioPlaces = 4
)

// record converts the month's state into an immutable projection record.
// Balances are pre-advance; NetWorth folds in the month's net cash flow so
// the series reads as end-of-month wealth.
func (s *State) record(monthIndex int, date time.Time) domain.ProjectionRecord {
	var totalAssets, liquidAssets, retirementAssets decimal.Decimal
	assetByType := make(map[string]decimal.Decimal)
	for _, a := range s.Assets {
		totalAssets = totalAssets.Add(a.Balance)
		if a.IsLiquid {
			liquidAssets = liquidAssets.Add(a.Balance)
		}
		if a.IsRetirement {
			retirementAssets = retirementAssets.Add(a.Balance)
		}
		assetByType[a.Type] = assetByType[a.Type].Add(a.Balance).Round(moneyPlaces)
	}

	var totalLiabilities decimal.Decimal
	liabilityByType := make(map[string]decimal.Decimal)
	for _, lia := range s.Liabilities {
		totalLiabilities = totalLiabilities.Add(lia.Balance)
		liabilityByType[lia.Type] = liabilityByType[lia.Type].Add(lia.Balance).Round(moneyPlaces)
	}

	var totalIncome decimal.Decimal
	incomeByCategory := make(map[string]decimal.Decimal)
	for _, li := range s.Incomes {
		totalIncome = totalIncome.Add(li.Monthly)
		incomeByCategory[li.Category] = incomeByCategory[li.Category].Add(li.Monthly).Round(moneyPlaces)
	}

	var totalExpenses, debtService decimal.Decimal
	expenseByCategory := make(map[string]decimal.Decimal)
	for _, li := range s.Expenses {
		totalExpenses = totalExpenses.Add(li.Monthly)
		expenseByCategory[li.Category] = expenseByCategory[li.Category].Add(li.Monthly).Round(moneyPlaces)
		if isDebtExpense(li) {
			debtService = debtService.Add(li.Monthly)
		}
	}

	netCashFlow := totalIncome.Sub(totalExpenses)
	netWorth := totalAssets.Sub(totalLiabilities).Add(netCashFlow)

	return domain.ProjectionRecord{
		MonthIndex: monthIndex,
		Date:       date,

		TotalAssets:      totalAssets.Round(moneyPlaces),
		LiquidAssets:     liquidAssets.Round(moneyPlaces),
		RetirementAssets: retirementAssets.Round(moneyPlaces),
		TotalLiabilities: totalLiabilities.Round(moneyPlaces),
		NetWorth:         netWorth.Round(moneyPlaces),

		TotalIncome:   totalIncome.Round(moneyPlaces),
		TotalExpenses: totalExpenses.Round(moneyPlaces),
		NetCashFlow:   netCashFlow.Round(moneyPlaces),

		DSCR:            dscr(totalIncome, totalExpenses, debtService),
		SavingsRate:     savingsRate(netCashFlow, totalIncome),
		LiquidityMonths: liquidityMonths(liquidAssets, totalExpenses),

		IncomeByCategory:  incomeByCategory,
		ExpenseByCategory: expenseByCategory,
		AssetByType:       assetByType,
		LiabilityByType:   liabilityByType,
	}
}

// dscr is (income - non-debt expenses) / debt service, with a sentinel when
// there is no debt service.
func dscr(totalIncome, totalExpenses, debtService decimal.Decimal) decimal.Decimal {
	if debtService.LessThanOrEqual(decimal.Zero) {
		return ratioSentinel
	}
	return totalIncome.Sub(totalExpenses.Sub(debtService)).Div(debtService).Round(ratioPlaces)
}

// savingsRate is net cash flow over income, zero when there is no income,
// clamped to a bounded range.
func savingsRate(netCashFlow, totalIncome decimal.Decimal) decimal.Decimal {
	if totalIncome.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	rate := netCashFlow.Div(totalIncome)
	if rate.GreaterThan(savingsRateBound) {
		rate = savingsRateBound
	}
	if rate.LessThan(savingsRateBound.Neg()) {
		rate = savingsRateBound.Neg()
	}
	return rate.Round(ratioPlaces)
}

// liquidityMonths is liquid assets over monthly expenses, with a sentinel
// when there are no expenses.
func liquidityMonths(liquidAssets, totalExpenses decimal.Decimal) decimal.Decimal {
	if totalExpenses.LessThanOrEqual(decimal.Zero) {
		return ratioSentinel
	}
	return liquidAssets.Div(totalExpenses).Round(ratioPlaces)
}
