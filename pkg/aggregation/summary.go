package aggregation

import (
	"sort"
	"time"

	"github.com/finmate/finmate/pkg/transaction"
	"github.com/shopspring/decimal"
)

// Summary is the dashboard view of a transaction log.
type Summary struct {
	Income           decimal.Decimal
	Expense          decimal.Decimal
	Savings          decimal.Decimal
	NetAsset         decimal.Decimal
	AvailableBalance decimal.Decimal
	Surplus          decimal.Decimal
	AllocatableFunds decimal.Decimal
}

func Summarize(transactions []transaction.Transaction) Summary {
	income := TotalByType(transactions, transaction.Income)
	expense := TotalByType(transactions, transaction.Expense)
	savings := TotalByType(transactions, transaction.Savings)
	surplus := income.Sub(expense).Sub(savings)
	return Summary{
		Income:           income,
		Expense:          expense,
		Savings:          savings,
		NetAsset:         income.Sub(expense),
		AvailableBalance: surplus,
		Surplus:          surplus,
		AllocatableFunds: decimal.Max(surplus, decimal.Zero),
	}
}

type BudgetOverviewResult struct {
	TotalBudget decimal.Decimal
	// Used is the total expense of the log, not only the part covered by a category.
	Used       decimal.Decimal
	Remaining  decimal.Decimal
	Percentage int
	Categories []BudgetUsageRow
}

func BudgetOverview(transactions []transaction.Transaction, categories []BudgetLimit) BudgetOverviewResult {
	total := decimal.Zero
	for _, c := range categories {
		total = total.Add(c.Total)
	}
	used := TotalByType(transactions, transaction.Expense)
	return BudgetOverviewResult{
		TotalBudget: total,
		Used:        used,
		Remaining:   total.Sub(used),
		Percentage:  Percentage(used, total),
		Categories:  BudgetUsage(transactions, categories),
	}
}

type SavingsOverviewResult struct {
	TotalTarget    decimal.Decimal
	TotalCollected decimal.Decimal
	Remaining      decimal.Decimal
	Percentage     int
	Plans          []SavingsProgressRow
}

func SavingsOverview(transactions []transaction.Transaction, plans []SavingsGoal) SavingsOverviewResult {
	rows := SavingsProgress(transactions, plans)
	target := decimal.Zero
	collected := decimal.Zero
	for _, row := range rows {
		target = target.Add(row.Plan.Target)
		collected = collected.Add(row.Collected)
	}
	return SavingsOverviewResult{
		TotalTarget:    target,
		TotalCollected: collected,
		Remaining:      target.Sub(collected),
		Percentage:     Percentage(collected, target),
		Plans:          rows,
	}
}

type CategoryAmount struct {
	Category string
	Amount   decimal.Decimal
	// Percentage is the share of the month's total expense.
	Percentage int
}

type Recap struct {
	Year    int
	Month   time.Month
	Income  decimal.Decimal
	Expense decimal.Decimal
	Savings decimal.Decimal
	Net     decimal.Decimal
	// ExpenseByCategory is sorted by amount descending, then by category name.
	ExpenseByCategory []CategoryAmount
	ElapsedDays       int
	DailyAverage      decimal.Decimal
}

// MonthlyRecap summarizes one calendar month. The daily expense average divides by the days of
// the month elapsed at today: all of them for past months, none for future ones.
func MonthlyRecap(transactions []transaction.Transaction, year int, month time.Month, today time.Time) Recap {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	inMonth := FilterByPeriod(transactions, first, last)

	byCategory := make(map[string]decimal.Decimal)
	for _, t := range inMonth {
		if t.Type == transaction.Expense {
			byCategory[t.Category] = byCategory[t.Category].Add(t.Amount)
		}
	}
	breakdown := make([]CategoryAmount, 0, len(byCategory))
	for category, amount := range byCategory {
		breakdown = append(breakdown, CategoryAmount{Category: category, Amount: amount})
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if cmp := breakdown[i].Amount.Cmp(breakdown[j].Amount); cmp != 0 {
			return cmp > 0
		}
		return breakdown[i].Category < breakdown[j].Category
	})

	income := TotalByType(inMonth, transaction.Income)
	expense := TotalByType(inMonth, transaction.Expense)
	for i := range breakdown {
		breakdown[i].Percentage = Percentage(breakdown[i].Amount, expense)
	}
	elapsed := elapsedDays(first, last, today)
	average := decimal.Zero
	if elapsed > 0 {
		average = expense.Div(decimal.NewFromInt(int64(elapsed))).Round(2)
	}

	return Recap{
		Year:              year,
		Month:             month,
		Income:            income,
		Expense:           expense,
		Savings:           TotalByType(inMonth, transaction.Savings),
		Net:               income.Sub(expense),
		ExpenseByCategory: breakdown,
		ElapsedDays:       elapsed,
		DailyAverage:      average,
	}
}

func elapsedDays(first, last, today time.Time) int {
	y, m, d := today.Date()
	today = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	switch {
	case today.Before(first):
		return 0
	case today.After(last):
		return last.Day()
	default:
		return today.Day()
	}
}
