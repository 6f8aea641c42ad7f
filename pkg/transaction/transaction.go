package transaction

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var ErrTransactionNotFound = errors.New("transaction not found")
var ErrInvalidTransaction = errors.New("invalid transaction")

type Type string

const (
	Income  Type = "income"
	Expense Type = "expense"
	Savings Type = "savings"

	// LegacyBudget and LegacySavingsPlan tag records that encoded budget and plan definitions
	// as transactions. They are read from raw input but never stored or counted.
	LegacyBudget      Type = "budget"
	LegacySavingsPlan Type = "savings_plan"
)

// maxAmount is the first value NUMERIC(18,2) cannot hold.
var maxAmount = decimal.New(1, 16)

// ValidAmount reports whether amount is non-negative, below 10^16 and has at most two decimal
// places. The exponent is bounded first so no comparison has to rescale an oversized value.
func ValidAmount(amount decimal.Decimal) bool {
	if exp := amount.Exponent(); exp > 16 || exp < -18 {
		return false
	}
	if amount.IsNegative() || !amount.LessThan(maxAmount) {
		return false
	}
	return amount.Equal(amount.Truncate(2))
}

func (t Type) IsValid() bool {
	return t == Income || t == Expense || t == Savings
}

func (t Type) IsLegacy() bool {
	return t == LegacyBudget || t == LegacySavingsPlan
}

type Method string

const (
	Manual Method = "manual"
	Voice  Method = "voice"
	Ocr    Method = "ocr"
	System Method = "system"
)

func (m Method) IsValid() bool {
	switch m {
	case Manual, Voice, Ocr, System:
		return true
	}
	return false
}

type Transaction struct {
	Id       string
	Category string
	Amount   decimal.Decimal
	Type     Type
	Method   Method
	// Date is a calendar date at midnight UTC. The zero value means the date is missing.
	Date time.Time
	Note string
	// BudgetCategoryId and SavingsPlanId are explicit links, 0 when unset.
	BudgetCategoryId int
	SavingsPlanId    int
	Created          time.Time
}

// Filter narrows ListTransactions. Zero values are ignored; From and To are inclusive.
type Filter struct {
	Type     Type
	Category string
	From     time.Time
	To       time.Time
}

func (f Filter) Matches(t Transaction) bool {
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if !f.From.IsZero() && t.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && t.Date.After(f.To) {
		return false
	}
	return true
}

// Validate checks a transaction before it is stored and fills in the default method.
func (t *Transaction) Validate() error {
	if !t.Type.IsValid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, t.Type)
	}
	if t.Method == "" {
		t.Method = Manual
	}
	if !t.Method.IsValid() {
		return fmt.Errorf("%w: unknown method %q", ErrInvalidTransaction, t.Method)
	}
	if !ValidAmount(t.Amount) {
		return fmt.Errorf("%w: amount must be between 0 and 10^16 with at most 2 decimals", ErrInvalidTransaction)
	}
	t.Category = strings.TrimSpace(t.Category)
	if t.Category == "" {
		return fmt.Errorf("%w: category is required", ErrInvalidTransaction)
	}
	if t.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidTransaction)
	}
	if t.BudgetCategoryId < 0 || t.SavingsPlanId < 0 {
		return fmt.Errorf("%w: link ids must not be negative", ErrInvalidTransaction)
	}
	if t.BudgetCategoryId > 0 && t.Type != Expense {
		return fmt.Errorf("%w: only expenses can be linked to a budget category", ErrInvalidTransaction)
	}
	if t.SavingsPlanId > 0 && t.Type != Savings {
		return fmt.Errorf("%w: only savings can be linked to a savings plan", ErrInvalidTransaction)
	}
	return nil
}
