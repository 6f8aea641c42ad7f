package budget

import (
	"errors"
	"fmt"
	"strings"

	"github.com/finmate/finmate/pkg/aggregation"
	"github.com/finmate/finmate/pkg/transaction"
	"github.com/shopspring/decimal"
)

var ErrCategoryNotFound = errors.New("budget category not found")
var ErrDuplicateCategory = errors.New("budget category with this name already exists")
var ErrInvalidCategory = errors.New("invalid budget category")

// palette is cycled through for categories created without a color.
var palette = []string{"#F97316", "#22C55E", "#3B82F6", "#EAB308", "#EC4899", "#8B5CF6", "#14B8A6", "#EF4444"}

type Category struct {
	ID   int
	Name string
	// Total is the spending ceiling of the category.
	Total    decimal.Decimal
	Color    string
	Position int
}

func (c *Category) validate() error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidCategory)
	}
	if !transaction.ValidAmount(c.Total) {
		return fmt.Errorf("%w: total must be between 0 and 10^16 with at most 2 decimals", ErrInvalidCategory)
	}
	return nil
}

func (c Category) limit() aggregation.BudgetLimit {
	return aggregation.BudgetLimit{ID: c.ID, Name: c.Name, Total: c.Total}
}

func paletteColor(index int) string {
	if index < 0 {
		index = -index
	}
	return palette[index%len(palette)]
}
