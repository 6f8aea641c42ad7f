package savings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/finmate/finmate/pkg/aggregation"
	"github.com/finmate/finmate/pkg/transaction"
	"github.com/shopspring/decimal"
)

var ErrPlanNotFound = errors.New("savings plan not found")
var ErrInvalidPlan = errors.New("invalid savings plan")
var ErrInvalidAllocation = errors.New("invalid allocation")
var ErrNothingToAllocate = errors.New("nothing to allocate")
var ErrInsufficientSurplus = errors.New("allocation exceeds available surplus")

const defaultIcon = "gift"

type Plan struct {
	ID     int
	Name   string
	Target decimal.Decimal
	Icon   string
}

func (p *Plan) validate() error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPlan)
	}
	if !p.Target.IsPositive() || !transaction.ValidAmount(p.Target) {
		return fmt.Errorf("%w: target must be between 0 and 10^16 with at most 2 decimals", ErrInvalidPlan)
	}
	if p.Icon == "" {
		p.Icon = defaultIcon
	}
	return nil
}

func (p Plan) goal() aggregation.SavingsGoal {
	return aggregation.SavingsGoal{ID: p.ID, Name: p.Name, Target: p.Target}
}

type PlanProgress struct {
	Plan       Plan
	Collected  decimal.Decimal
	Remaining  decimal.Decimal
	Percentage int
}

type Progress struct {
	TotalTarget    decimal.Decimal
	TotalCollected decimal.Decimal
	Remaining      decimal.Decimal
	Percentage     int
	Plans          []PlanProgress
}

// Allocation requests Amount to be moved from the surplus into a plan.
type Allocation struct {
	PlanId int
	Amount decimal.Decimal
}

type Contribution struct {
	Plan          Plan
	Amount        decimal.Decimal
	TransactionId string
}

type AllocationResult struct {
	Total          decimal.Decimal
	Contributions  []Contribution
	RemainingFunds decimal.Decimal
}
