package savings

import (
	"context"
	"fmt"
	"sync"

	"github.com/finmate/finmate/internal/event_bus"
	"github.com/finmate/finmate/internal/utils"
	"github.com/finmate/finmate/pkg/aggregation"
	"github.com/finmate/finmate/pkg/transaction"
	"github.com/finmate/finmate/pkg/user"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	ListPlans(ctx context.Context) ([]Plan, error)
	GetPlan(ctx context.Context, id int) (Plan, error)
	CreatePlan(ctx context.Context, plan Plan) (Plan, error)
	UpdatePlan(ctx context.Context, plan Plan) (Plan, error)
	DeletePlan(ctx context.Context, id int) error
	GetProgress(ctx context.Context) (Progress, error)
	GetAllocatableFunds(ctx context.Context) (decimal.Decimal, error)
	Allocate(ctx context.Context, allocations []Allocation) (AllocationResult, error)
}

// TransactionStore is the part of the transaction log the savings service reads and appends to.
type TransactionStore interface {
	ListAll(ctx context.Context) ([]transaction.Transaction, error)
	CreateTransaction(ctx context.Context, t transaction.Transaction) (transaction.Transaction, error)
}

type ServiceImpl struct {
	repo         Repository
	transactions TransactionStore
	eventBus     *event_bus.EventBus
	clock        utils.Clock
	// allocating serializes the surplus check and the writes of Allocate within this process.
	allocating sync.Mutex
}

func NewService(repo Repository, transactions TransactionStore, eventBus *event_bus.EventBus, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, transactions: transactions, eventBus: eventBus, clock: clock}
}

func (s *ServiceImpl) ListPlans(ctx context.Context) ([]Plan, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetAll(ctx, userId)
}

func (s *ServiceImpl) GetPlan(ctx context.Context, id int) (Plan, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Plan{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Get(ctx, userId, id)
}

func (s *ServiceImpl) CreatePlan(ctx context.Context, plan Plan) (Plan, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Plan{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := plan.validate(); err != nil {
		return Plan{}, err
	}
	id, err := s.repo.Store(ctx, userId, plan)
	if err != nil {
		return Plan{}, err
	}
	plan.ID = id
	return plan, nil
}

func (s *ServiceImpl) UpdatePlan(ctx context.Context, plan Plan) (Plan, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Plan{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := plan.validate(); err != nil {
		return Plan{}, err
	}
	updated, err := s.repo.Update(ctx, userId, plan)
	if err != nil {
		return Plan{}, err
	}
	if !updated {
		return Plan{}, ErrPlanNotFound
	}
	return plan, nil
}

func (s *ServiceImpl) DeletePlan(ctx context.Context, id int) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	deleted, err := s.repo.Delete(ctx, userId, id)
	if err != nil {
		return err
	}
	if !deleted {
		log.Warnf("savings plan not deleted, probably because it does not exist (%d) or the user (%d) is not the owner", id, userId)
		return ErrPlanNotFound
	}
	return nil
}

func (s *ServiceImpl) GetProgress(ctx context.Context) (Progress, error) {
	plans, err := s.ListPlans(ctx)
	if err != nil {
		return Progress{}, err
	}
	transactions, err := s.transactions.ListAll(ctx)
	if err != nil {
		return Progress{}, err
	}

	goals := make([]aggregation.SavingsGoal, 0, len(plans))
	for _, p := range plans {
		goals = append(goals, p.goal())
	}
	overview := aggregation.SavingsOverview(transactions, goals)

	rows := make([]PlanProgress, 0, len(plans))
	for i, row := range overview.Plans {
		rows = append(rows, PlanProgress{
			Plan:       plans[i],
			Collected:  row.Collected,
			Remaining:  row.Remaining,
			Percentage: row.Percentage,
		})
	}
	return Progress{
		TotalTarget:    overview.TotalTarget,
		TotalCollected: overview.TotalCollected,
		Remaining:      overview.Remaining,
		Percentage:     overview.Percentage,
		Plans:          rows,
	}, nil
}

func (s *ServiceImpl) GetAllocatableFunds(ctx context.Context) (decimal.Decimal, error) {
	if _, err := user.CurrentId(ctx); err != nil {
		return decimal.Zero, fmt.Errorf("failed to get current user: %w", err)
	}
	transactions, err := s.transactions.ListAll(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return aggregation.AllocatableFunds(transactions), nil
}

// Allocate records one savings contribution per plan, bounded by the allocatable funds of a
// freshly fetched log. Repeated plan ids are merged and zero amounts are ignored.
func (s *ServiceImpl) Allocate(ctx context.Context, allocations []Allocation) (AllocationResult, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return AllocationResult{}, fmt.Errorf("failed to get current user: %w", err)
	}

	order := make([]int, 0, len(allocations))
	amounts := make(map[int]decimal.Decimal)
	total := decimal.Zero
	for _, a := range allocations {
		if !transaction.ValidAmount(a.Amount) {
			return AllocationResult{}, fmt.Errorf("%w: amount for plan %d must be between 0 and 10^16 with at most 2 decimals",
				ErrInvalidAllocation, a.PlanId)
		}
		if a.Amount.IsZero() {
			continue
		}
		if _, seen := amounts[a.PlanId]; !seen {
			order = append(order, a.PlanId)
		}
		amounts[a.PlanId] = amounts[a.PlanId].Add(a.Amount)
		total = total.Add(a.Amount)
	}
	if !total.IsPositive() {
		return AllocationResult{}, ErrNothingToAllocate
	}
	for planId, amount := range amounts {
		if !transaction.ValidAmount(amount) {
			return AllocationResult{}, fmt.Errorf("%w: merged amount for plan %d is out of range", ErrInvalidAllocation, planId)
		}
	}

	plans := make([]Plan, 0, len(order))
	for _, planId := range order {
		plan, err := s.repo.Get(ctx, userId, planId)
		if err != nil {
			return AllocationResult{}, fmt.Errorf("plan %d: %w", planId, err)
		}
		plans = append(plans, plan)
	}

	s.allocating.Lock()
	defer s.allocating.Unlock()

	transactions, err := s.transactions.ListAll(ctx)
	if err != nil {
		return AllocationResult{}, err
	}
	funds := aggregation.AllocatableFunds(transactions)
	if total.GreaterThan(funds) {
		return AllocationResult{}, fmt.Errorf("%w: requested %s, available %s", ErrInsufficientSurplus, total, funds)
	}

	today := utils.Today(s.clock)
	result := AllocationResult{Total: total, RemainingFunds: funds.Sub(total)}
	for _, plan := range plans {
		created, err := s.transactions.CreateTransaction(ctx, transaction.Transaction{
			Category:      plan.Name,
			Amount:        amounts[plan.ID],
			Type:          transaction.Savings,
			Method:        transaction.System,
			Date:          today,
			SavingsPlanId: plan.ID,
		})
		if err != nil {
			log.Errorf("allocation to plan %d failed after %d contribution(s): %v", plan.ID, len(result.Contributions), err)
			return AllocationResult{}, err
		}
		result.Contributions = append(result.Contributions, Contribution{
			Plan:          plan,
			Amount:        created.Amount,
			TransactionId: created.Id,
		})
	}

	s.publishAllocated(ctx, userId, result)
	return result, nil
}

func (s *ServiceImpl) publishAllocated(ctx context.Context, userId int, result AllocationResult) {
	if s.eventBus == nil {
		return
	}
	contributions := make([]event_bus.SavingsAllocation, 0, len(result.Contributions))
	for _, c := range result.Contributions {
		contributions = append(contributions, event_bus.SavingsAllocation{
			PlanId:        c.Plan.ID,
			PlanName:      c.Plan.Name,
			Amount:        c.Amount,
			TransactionId: c.TransactionId,
		})
	}
	err := s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.SavingsAllocatedType, event_bus.SavingsAllocated{
		UserId:         userId,
		Total:          result.Total,
		Contributions:  contributions,
		RemainingFunds: result.RemainingFunds,
	}))
	if err != nil {
		log.Errorf("failed to publish %s event: %v", event_bus.SavingsAllocatedType, err)
	}
}
