package savings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/finmate/finmate/internal/event_bus"
	"github.com/finmate/finmate/internal/utils"
	"github.com/finmate/finmate/pkg/transaction"
	"github.com/finmate/finmate/pkg/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = user.WithUser(context.Background(), user.User{Id: 1})

var planRepoStub = NewRepositoryStub()
var transactionRepoStub = transaction.NewRepositoryStub()
var clock = &utils.MockClock{FixedNow: time.Date(2025, 3, 15, 20, 0, 0, 0, time.UTC)}

var service Service
var transactions transaction.Service
var allocatedEvents []event_bus.SavingsAllocated

func setup(t *testing.T) func() {
	bus := event_bus.NewEventBus()
	allocatedEvents = nil
	event_bus.SubscribeTyped(bus, event_bus.SavingsAllocatedType, func(e event_bus.EventT[event_bus.SavingsAllocated]) error {
		allocatedEvents = append(allocatedEvents, e.Data)
		return nil
	})
	transactions = transaction.NewService(transactionRepoStub, planLinks{transactionRepoStub}, bus)
	service = NewService(planRepoStub, transactions, bus, clock)
	return func() {
		t.Log("Teardown after test")
		planRepoStub.Cleanup()
		transactionRepoStub.Cleanup()
	}
}

// planLinks resolves savings plan links against the plans stored by the savings service.
type planLinks struct {
	*transaction.RepositoryStub
}

func (p planLinks) SavingsPlanExists(ctx context.Context, userId int, id int) (bool, error) {
	_, err := planRepoStub.Get(ctx, userId, id)
	if errors.Is(err, ErrPlanNotFound) {
		return false, nil
	}
	return err == nil, err
}

func money(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func record(t *testing.T, txType transaction.Type, category string, amount int64) {
	t.Helper()
	_, err := transactions.CreateTransaction(ctx, transaction.Transaction{
		Type:     txType,
		Category: category,
		Amount:   money(amount),
		Date:     time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
}

func TestServiceImpl_CreatePlan(t *testing.T) {
	t.Run("should create plan with default icon", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		plan, err := service.CreatePlan(ctx, Plan{Name: "Dana Darurat", Target: money(1000000)})

		// then
		require.NoError(t, err)
		assert.NotZero(t, plan.ID)
		assert.Equal(t, "gift", plan.Icon)
	})

	t.Run("should reject non-positive target", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.CreatePlan(ctx, Plan{Name: "Dana Darurat", Target: money(0)})
		assert.ErrorIs(t, err, ErrInvalidPlan)

		_, err = service.CreatePlan(ctx, Plan{Name: "Dana Darurat", Target: decimal.RequireFromString("1e2000000000")})
		assert.ErrorIs(t, err, ErrInvalidPlan)
	})

	t.Run("should return error when context has no user", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.CreatePlan(context.Background(), Plan{Name: "X", Target: money(1)})

		assert.Contains(t, err.Error(), "failed to get current user")
	})
}

func TestServiceImpl_UpdateAndDeletePlan(t *testing.T) {
	teardown := setup(t)
	defer teardown()

	// given
	plan, _ := service.CreatePlan(ctx, Plan{Name: "Laptop", Target: money(100)})

	// when
	updated, err := service.UpdatePlan(ctx, Plan{ID: plan.ID, Name: "Laptop Baru", Target: money(200), Icon: "laptop"})
	require.NoError(t, err)
	_, missingErr := service.UpdatePlan(ctx, Plan{ID: 999, Name: "X", Target: money(1)})
	deleteErr := service.DeletePlan(ctx, plan.ID)
	deleteAgainErr := service.DeletePlan(ctx, plan.ID)

	// then
	assert.Equal(t, "Laptop Baru", updated.Name)
	assert.ErrorIs(t, missingErr, ErrPlanNotFound)
	assert.NoError(t, deleteErr)
	assert.ErrorIs(t, deleteAgainErr, ErrPlanNotFound)
}

func TestServiceImpl_GetProgress(t *testing.T) {
	teardown := setup(t)
	defer teardown()

	// given
	_, _ = service.CreatePlan(ctx, Plan{Name: "Dana Darurat", Target: money(1000000)})
	_, _ = service.CreatePlan(ctx, Plan{Name: "Liburan", Target: money(500000)})
	record(t, transaction.Savings, "Dana Darurat", 250000)
	record(t, transaction.Savings, "dana darurat", 100000)

	// when
	progress, err := service.GetProgress(ctx)

	// then
	require.NoError(t, err)
	require.Len(t, progress.Plans, 2)
	assert.True(t, progress.Plans[0].Collected.Equal(money(250000)))
	assert.True(t, progress.Plans[0].Remaining.Equal(money(750000)))
	assert.Equal(t, 25, progress.Plans[0].Percentage)
	assert.True(t, progress.Plans[1].Collected.IsZero())
	assert.True(t, progress.TotalTarget.Equal(money(1500000)))
	assert.True(t, progress.TotalCollected.Equal(money(250000)))
}

func TestServiceImpl_GetAllocatableFunds(t *testing.T) {
	t.Run("should return surplus", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		record(t, transaction.Income, "Gaji", 600000)
		record(t, transaction.Expense, "Makan", 500000)
		record(t, transaction.Savings, "Dana Darurat", 50000)

		// when
		funds, err := service.GetAllocatableFunds(ctx)

		// then
		require.NoError(t, err)
		assert.True(t, funds.Equal(money(50000)))
	})

	t.Run("should clamp negative surplus to zero", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		record(t, transaction.Income, "Gaji", 100)
		record(t, transaction.Expense, "Makan", 500)

		// when
		funds, err := service.GetAllocatableFunds(ctx)

		// then
		require.NoError(t, err)
		assert.True(t, funds.IsZero())
	})
}

func TestServiceImpl_Allocate(t *testing.T) {
	t.Run("should create one savings transaction per plan", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		record(t, transaction.Income, "Gaji", 600000)
		record(t, transaction.Expense, "Makan", 400000)
		darurat, _ := service.CreatePlan(ctx, Plan{Name: "Dana Darurat", Target: money(1000000)})
		liburan, _ := service.CreatePlan(ctx, Plan{Name: "Liburan", Target: money(500000)})

		// when
		result, err := service.Allocate(ctx, []Allocation{
			{PlanId: darurat.ID, Amount: money(100000)},
			{PlanId: liburan.ID, Amount: money(0)},
			{PlanId: darurat.ID, Amount: money(20000)},
		})

		// then
		require.NoError(t, err)
		assert.True(t, result.Total.Equal(money(120000)))
		assert.True(t, result.RemainingFunds.Equal(money(80000)))
		require.Len(t, result.Contributions, 1)

		savings, _ := transactions.ListTransactions(ctx, transaction.Filter{Type: transaction.Savings})
		require.Len(t, savings, 1)
		assert.Equal(t, "Dana Darurat", savings[0].Category)
		assert.Equal(t, transaction.System, savings[0].Method)
		assert.Equal(t, darurat.ID, savings[0].SavingsPlanId)
		assert.Equal(t, "2025-03-15", savings[0].Date.Format("2006-01-02"))
		assert.Equal(t, savings[0].Id, result.Contributions[0].TransactionId)

		require.Len(t, allocatedEvents, 1)
		assert.Equal(t, 1, allocatedEvents[0].UserId)
		assert.Equal(t, "Dana Darurat", allocatedEvents[0].Contributions[0].PlanName)

		funds, _ := service.GetAllocatableFunds(ctx)
		assert.True(t, funds.Equal(money(80000)))
	})

	t.Run("should fail with insufficient surplus and create nothing", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		record(t, transaction.Income, "Gaji", 600000)
		record(t, transaction.Expense, "Makan", 500000)
		record(t, transaction.Savings, "Dana Darurat", 50000)
		plan, _ := service.CreatePlan(ctx, Plan{Name: "Liburan", Target: money(500000)})

		// when
		_, err := service.Allocate(ctx, []Allocation{{PlanId: plan.ID, Amount: money(50001)}})

		// then
		assert.ErrorIs(t, err, ErrInsufficientSurplus)
		savings, _ := transactions.ListTransactions(ctx, transaction.Filter{Type: transaction.Savings})
		assert.Len(t, savings, 1)
		assert.Empty(t, allocatedEvents)
	})

	t.Run("should allow allocating exactly the surplus", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		record(t, transaction.Income, "Gaji", 1000)
		plan, _ := service.CreatePlan(ctx, Plan{Name: "Liburan", Target: money(5000)})

		// when
		result, err := service.Allocate(ctx, []Allocation{{PlanId: plan.ID, Amount: money(1000)}})

		// then
		require.NoError(t, err)
		assert.True(t, result.RemainingFunds.IsZero())
	})

	t.Run("should reject unknown plan", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		record(t, transaction.Income, "Gaji", 1000)

		_, err := service.Allocate(ctx, []Allocation{{PlanId: 77, Amount: money(10)}})

		assert.ErrorIs(t, err, ErrPlanNotFound)
	})

	t.Run("should reject empty and negative allocations", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.Allocate(ctx, nil)
		assert.ErrorIs(t, err, ErrNothingToAllocate)

		_, err = service.Allocate(ctx, []Allocation{{PlanId: 1, Amount: money(0)}})
		assert.ErrorIs(t, err, ErrNothingToAllocate)

		_, err = service.Allocate(ctx, []Allocation{{PlanId: 1, Amount: money(-5)}})
		assert.ErrorIs(t, err, ErrInvalidAllocation)

		_, err = service.Allocate(ctx, []Allocation{{PlanId: 1, Amount: decimal.RequireFromString("1e2000000000")}})
		assert.ErrorIs(t, err, ErrInvalidAllocation)

		_, err = service.Allocate(ctx, []Allocation{{PlanId: 1, Amount: decimal.RequireFromString("0.001")}})
		assert.ErrorIs(t, err, ErrInvalidAllocation)
	})

	t.Run("should keep linked contributions on their plan after rename", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		record(t, transaction.Income, "Gaji", 1000)
		plan, _ := service.CreatePlan(ctx, Plan{Name: "Laptop", Target: money(1000)})
		_, err := service.Allocate(ctx, []Allocation{{PlanId: plan.ID, Amount: money(400)}})
		require.NoError(t, err)
		_, err = service.UpdatePlan(ctx, Plan{ID: plan.ID, Name: "Laptop Kerja", Target: money(1000)})
		require.NoError(t, err)
		_, _ = service.CreatePlan(ctx, Plan{Name: "Laptop", Target: money(1000)})

		// when
		progress, err := service.GetProgress(ctx)

		// then
		require.NoError(t, err)
		require.Len(t, progress.Plans, 2)
		assert.True(t, progress.Plans[0].Collected.Equal(money(400)))
		assert.True(t, progress.Plans[1].Collected.IsZero())
	})
}
