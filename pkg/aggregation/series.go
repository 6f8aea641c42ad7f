package aggregation

import (
	"time"

	"github.com/finmate/finmate/internal/utils"
	"github.com/finmate/finmate/pkg/transaction"
	"github.com/shopspring/decimal"
)

type DailyAmount struct {
	Date   time.Time
	Amount decimal.Decimal
}

type MonthAmount struct {
	Year    int
	Month   time.Month
	Income  decimal.Decimal
	Expense decimal.Decimal
	Savings decimal.Decimal
}

// DailyExpenses returns the expense total of every day in [from, to], oldest first, with
// zero for days without expenses. An empty or inverted period yields no days.
func DailyExpenses(transactions []transaction.Transaction, from, to time.Time) []DailyAmount {
	if from.IsZero() || to.IsZero() {
		return []DailyAmount{}
	}
	from = utils.DateOf(from)
	to = utils.DateOf(to)
	if from.After(to) {
		return []DailyAmount{}
	}

	byDay := make(map[string]decimal.Decimal)
	for _, t := range FilterByPeriod(transactions, from, to) {
		if t.Type == transaction.Expense {
			key := t.Date.Format(DateKeyLayout)
			byDay[key] = byDay[key].Add(t.Amount)
		}
	}

	days := make([]DailyAmount, 0, int(to.Sub(from).Hours()/24)+1)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, DailyAmount{Date: d, Amount: byDay[d.Format(DateKeyLayout)]})
	}
	return days
}

// MonthlyComparison returns income, expense and savings totals of the given number of calendar
// months ending with the month of today, oldest first.
func MonthlyComparison(transactions []transaction.Transaction, months int, today time.Time) []MonthAmount {
	if months <= 0 {
		return []MonthAmount{}
	}
	current := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	first := current.AddDate(0, 1-months, 0)

	result := make([]MonthAmount, 0, months)
	index := make(map[string]int, months)
	for m := first; !m.After(current); m = m.AddDate(0, 1, 0) {
		index[m.Format("2006-01")] = len(result)
		result = append(result, MonthAmount{Year: m.Year(), Month: m.Month()})
	}

	for _, t := range transactions {
		if t.Date.IsZero() {
			continue
		}
		i, ok := index[t.Date.Format("2006-01")]
		if !ok {
			continue
		}
		switch t.Type {
		case transaction.Income:
			result[i].Income = result[i].Income.Add(t.Amount)
		case transaction.Expense:
			result[i].Expense = result[i].Expense.Add(t.Amount)
		case transaction.Savings:
			result[i].Savings = result[i].Savings.Add(t.Amount)
		}
	}
	return result
}
