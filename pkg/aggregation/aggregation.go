// Package aggregation derives the read-only financial views shown to the user from a flat
// transaction log. Every function is pure: inputs are never mutated and nil is treated as empty.
package aggregation

import (
	"strings"

	"github.com/finmate/finmate/pkg/transaction"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// BudgetLimit is a spending ceiling as seen by the engine.
type BudgetLimit struct {
	ID    int
	Name  string
	Total decimal.Decimal
}

// SavingsGoal is a savings plan target as seen by the engine.
type SavingsGoal struct {
	ID     int
	Name   string
	Target decimal.Decimal
}

type BudgetUsageRow struct {
	Category   BudgetLimit
	Used       decimal.Decimal
	Remaining  decimal.Decimal
	Percentage int
}

type SavingsProgressRow struct {
	Plan       SavingsGoal
	Collected  decimal.Decimal
	Remaining  decimal.Decimal
	Percentage int
}

// TotalByType sums the amounts of all transactions of the given type.
func TotalByType(transactions []transaction.Transaction, txType transaction.Type) decimal.Decimal {
	total := decimal.Zero
	for _, t := range transactions {
		if t.Type == txType {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// NetAsset is income minus expense. It may be negative.
func NetAsset(transactions []transaction.Transaction) decimal.Decimal {
	return TotalByType(transactions, transaction.Income).Sub(TotalByType(transactions, transaction.Expense))
}

// AvailableBalance is the net asset minus savings contributions. It may be negative.
func AvailableBalance(transactions []transaction.Transaction) decimal.Decimal {
	return NetAsset(transactions).Sub(TotalByType(transactions, transaction.Savings))
}

// AllocatableSurplus is income minus expense minus savings, unclamped.
func AllocatableSurplus(transactions []transaction.Transaction) decimal.Decimal {
	return TotalByType(transactions, transaction.Income).
		Sub(TotalByType(transactions, transaction.Expense)).
		Sub(TotalByType(transactions, transaction.Savings))
}

// AllocatableFunds is the surplus available for savings allocation, never below zero.
func AllocatableFunds(transactions []transaction.Transaction) decimal.Decimal {
	return decimal.Max(AllocatableSurplus(transactions), decimal.Zero)
}

// BudgetUsage reports, per category and in input order, the matching expense total.
// A transaction linked to a category id counts only for that category; unlinked
// expenses match on a case-insensitive category name.
func BudgetUsage(transactions []transaction.Transaction, categories []BudgetLimit) []BudgetUsageRow {
	rows := make([]BudgetUsageRow, 0, len(categories))
	for _, c := range categories {
		used := decimal.Zero
		for _, t := range transactions {
			if t.Type != transaction.Expense {
				continue
			}
			if matchesBudget(t, c) {
				used = used.Add(t.Amount)
			}
		}
		rows = append(rows, BudgetUsageRow{
			Category:   c,
			Used:       used,
			Remaining:  c.Total.Sub(used),
			Percentage: Percentage(used, c.Total),
		})
	}
	return rows
}

// SavingsProgress reports, per plan and in input order, the collected savings.
// Linked contributions count only for their plan; unlinked ones match the plan name exactly.
func SavingsProgress(transactions []transaction.Transaction, plans []SavingsGoal) []SavingsProgressRow {
	rows := make([]SavingsProgressRow, 0, len(plans))
	for _, p := range plans {
		collected := decimal.Zero
		for _, t := range transactions {
			if t.Type != transaction.Savings {
				continue
			}
			if matchesPlan(t, p) {
				collected = collected.Add(t.Amount)
			}
		}
		rows = append(rows, SavingsProgressRow{
			Plan:       p,
			Collected:  collected,
			Remaining:  p.Target.Sub(collected),
			Percentage: Percentage(collected, p.Target),
		})
	}
	return rows
}

// Percentage returns round(part/whole*100) clamped to [0, 100], or 0 when whole is not positive.
func Percentage(part, whole decimal.Decimal) int {
	if !whole.IsPositive() {
		return 0
	}
	pct := part.Mul(hundred).Div(whole).Round(0)
	if pct.IsNegative() {
		return 0
	}
	if pct.GreaterThan(hundred) {
		return 100
	}
	return int(pct.IntPart())
}

func matchesBudget(t transaction.Transaction, c BudgetLimit) bool {
	if t.BudgetCategoryId != 0 {
		return c.ID != 0 && t.BudgetCategoryId == c.ID
	}
	return strings.EqualFold(strings.TrimSpace(t.Category), strings.TrimSpace(c.Name))
}

func matchesPlan(t transaction.Transaction, p SavingsGoal) bool {
	if t.SavingsPlanId != 0 {
		return p.ID != 0 && t.SavingsPlanId == p.ID
	}
	return t.Category == p.Name
}
