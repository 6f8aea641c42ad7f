package transaction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/finmate/finmate/internal/event_bus"
	"github.com/finmate/finmate/pkg/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = user.WithUser(context.Background(), user.User{Id: 1, Uid: "u-1"})

var repoStub = NewRepositoryStub()

var service Service
var published []event_bus.Event

func setup(t *testing.T) func() {
	bus := event_bus.NewEventBus()
	published = nil
	bus.SubscribeAll(func(e event_bus.Event) error {
		published = append(published, e)
		return nil
	})
	service = NewService(repoStub, repoStub, bus)
	return func() {
		t.Log("Teardown after test")
		repoStub.Cleanup()
	}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func expense(category string, amount int64, day time.Time) Transaction {
	return Transaction{Category: category, Amount: decimal.NewFromInt(amount), Type: Expense, Date: day}
}

func TestServiceImpl_CreateTransaction(t *testing.T) {
	t.Run("should create transaction with id and default method", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		created, err := service.CreateTransaction(ctx, expense("Makan", 25000, date(2025, 3, 1)))

		// then
		require.NoError(t, err)
		assert.NotEmpty(t, created.Id)
		assert.Equal(t, Manual, created.Method)
		require.Len(t, published, 1)
		assert.Equal(t, event_bus.TransactionCreatedType, published[0].Type)
		payload := published[0].Data.(event_bus.TransactionChanged)
		assert.Equal(t, created.Id, payload.Id)
		assert.Equal(t, 1, payload.UserId)
	})

	t.Run("should reject invalid transactions", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		invalid := map[string]Transaction{
			"unknown type":    {Category: "x", Amount: decimal.NewFromInt(1), Type: "transfer", Date: date(2025, 1, 1)},
			"legacy type":     {Category: "x", Amount: decimal.NewFromInt(1), Type: LegacyBudget, Date: date(2025, 1, 1)},
			"unknown method":  {Category: "x", Amount: decimal.NewFromInt(1), Type: Income, Method: "fax", Date: date(2025, 1, 1)},
			"negative amount": {Category: "x", Amount: decimal.NewFromInt(-1), Type: Income, Date: date(2025, 1, 1)},
			"huge exponent":   {Category: "x", Amount: decimal.RequireFromString("1e2000000000"), Type: Income, Date: date(2025, 1, 1)},
			"three decimals":  {Category: "x", Amount: decimal.RequireFromString("10.005"), Type: Income, Date: date(2025, 1, 1)},
			"blank category":  {Category: "  ", Amount: decimal.NewFromInt(1), Type: Income, Date: date(2025, 1, 1)},
			"missing date":    {Category: "x", Amount: decimal.NewFromInt(1), Type: Income},
		}
		for name, tx := range invalid {
			t.Run(name, func(t *testing.T) {
				_, err := service.CreateTransaction(ctx, tx)
				assert.ErrorIs(t, err, ErrInvalidTransaction)
			})
		}
		assert.Empty(t, published)
	})

	t.Run("should accept links to own category and plan", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		repoStub.AddBudgetCategory(1, 5)
		repoStub.AddSavingsPlan(1, 7)

		// when
		linkedExpense := expense("Makan", 1, date(2025, 1, 1))
		linkedExpense.BudgetCategoryId = 5
		_, errExpense := service.CreateTransaction(ctx, linkedExpense)
		_, errSavings := service.CreateTransaction(ctx, Transaction{
			Category: "Dana Darurat", Amount: decimal.NewFromInt(1), Type: Savings, Date: date(2025, 1, 1), SavingsPlanId: 7,
		})

		// then
		assert.NoError(t, errExpense)
		assert.NoError(t, errSavings)
	})

	t.Run("should reject unknown and foreign link ids", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		repoStub.AddBudgetCategory(2, 5)
		repoStub.AddSavingsPlan(2, 7)

		invalid := map[string]Transaction{
			"unknown category": {Category: "x", Amount: decimal.NewFromInt(1), Type: Expense, Date: date(2025, 1, 1), BudgetCategoryId: 99},
			"foreign category": {Category: "x", Amount: decimal.NewFromInt(1), Type: Expense, Date: date(2025, 1, 1), BudgetCategoryId: 5},
			"unknown plan":     {Category: "x", Amount: decimal.NewFromInt(1), Type: Savings, Date: date(2025, 1, 1), SavingsPlanId: 99},
			"foreign plan":     {Category: "x", Amount: decimal.NewFromInt(1), Type: Savings, Date: date(2025, 1, 1), SavingsPlanId: 7},
		}
		for name, tx := range invalid {
			t.Run(name, func(t *testing.T) {
				_, err := service.CreateTransaction(ctx, tx)
				assert.ErrorIs(t, err, ErrInvalidTransaction)
			})
		}
		assert.Empty(t, repoStub.data[1])
	})

	t.Run("should reject links that do not fit the type", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		repoStub.AddBudgetCategory(1, 5)
		repoStub.AddSavingsPlan(1, 7)

		_, err := service.CreateTransaction(ctx, Transaction{
			Category: "x", Amount: decimal.NewFromInt(1), Type: Income, Date: date(2025, 1, 1), BudgetCategoryId: 5,
		})
		assert.ErrorIs(t, err, ErrInvalidTransaction)

		_, err = service.CreateTransaction(ctx, Transaction{
			Category: "x", Amount: decimal.NewFromInt(1), Type: Expense, Date: date(2025, 1, 1), SavingsPlanId: 7,
		})
		assert.ErrorIs(t, err, ErrInvalidTransaction)
	})

	t.Run("should return error when context has no user", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.CreateTransaction(context.Background(), expense("Makan", 1, date(2025, 1, 1)))

		// then
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get current user")
	})

	t.Run("should surface repository failure without publishing", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		repoStub.FailWith(errors.New("db down"))

		// when
		_, err := service.CreateTransaction(ctx, expense("Makan", 1, date(2025, 1, 1)))

		// then
		assert.EqualError(t, err, "db down")
		assert.Empty(t, published)
	})
}

func TestServiceImpl_ListTransactions(t *testing.T) {
	t.Run("should order by date then creation, newest first", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		first, _ := service.CreateTransaction(ctx, expense("A", 1, date(2025, 3, 1)))
		second, _ := service.CreateTransaction(ctx, expense("B", 1, date(2025, 3, 2)))
		third, _ := service.CreateTransaction(ctx, expense("C", 1, date(2025, 3, 1)))

		// when
		result, err := service.ListTransactions(ctx, Filter{})

		// then
		require.NoError(t, err)
		require.Len(t, result, 3)
		assert.Equal(t, []string{second.Id, third.Id, first.Id}, []string{result[0].Id, result[1].Id, result[2].Id})
	})

	t.Run("should filter by type, category and inclusive period", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		_, _ = service.CreateTransaction(ctx, expense("Makan", 1, date(2025, 3, 1)))
		_, _ = service.CreateTransaction(ctx, expense("Makan", 2, date(2025, 3, 5)))
		_, _ = service.CreateTransaction(ctx, expense("Makan", 3, date(2025, 3, 10)))
		_, _ = service.CreateTransaction(ctx, expense("Transport", 4, date(2025, 3, 5)))
		_, _ = service.CreateTransaction(ctx, Transaction{Category: "Makan", Amount: decimal.NewFromInt(5), Type: Income, Date: date(2025, 3, 5)})

		// when
		result, err := service.ListTransactions(ctx, Filter{Type: Expense, Category: "Makan", From: date(2025, 3, 1), To: date(2025, 3, 5)})

		// then
		require.NoError(t, err)
		require.Len(t, result, 2)
		assert.True(t, result[0].Amount.Equal(decimal.NewFromInt(2)))
		assert.True(t, result[1].Amount.Equal(decimal.NewFromInt(1)))
	})

	t.Run("should reject inverted period", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.ListTransactions(ctx, Filter{From: date(2025, 3, 5), To: date(2025, 3, 1)})

		// then
		assert.ErrorIs(t, err, ErrInvalidTransaction)
	})

	t.Run("should only see own transactions", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		other := user.WithUser(context.Background(), user.User{Id: 2})
		_, _ = service.CreateTransaction(other, expense("Makan", 1, date(2025, 3, 1)))

		// when
		result, err := service.ListAll(ctx)

		// then
		require.NoError(t, err)
		assert.Empty(t, result)
	})
}

func TestServiceImpl_ListAllForUsers(t *testing.T) {
	t.Run("should merge logs of family members newest first", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		other := user.WithUser(context.Background(), user.User{Id: 2})
		stranger := user.WithUser(context.Background(), user.User{Id: 3})
		own, _ := service.CreateTransaction(ctx, expense("Makan", 1, date(2025, 3, 1)))
		partner, _ := service.CreateTransaction(other, expense("Transport", 2, date(2025, 3, 2)))
		_, _ = service.CreateTransaction(stranger, expense("Hiburan", 3, date(2025, 3, 3)))

		// when
		result, err := service.ListAllForUsers(ctx, []int{1, 2})

		// then
		require.NoError(t, err)
		require.Len(t, result, 2)
		assert.Equal(t, []string{partner.Id, own.Id}, []string{result[0].Id, result[1].Id})
	})

	t.Run("should require current user among owners", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.ListAllForUsers(ctx, []int{2, 3})

		// then
		assert.Error(t, err)
	})
}

func TestServiceImpl_UpdateTransaction(t *testing.T) {
	t.Run("should replace mutable fields and publish", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, _ := service.CreateTransaction(ctx, expense("Makan", 1, date(2025, 3, 1)))
		changed := created
		changed.Category = "Transport"
		changed.Amount = decimal.NewFromInt(99)

		// when
		updated, err := service.UpdateTransaction(ctx, changed)

		// then
		require.NoError(t, err)
		assert.Equal(t, "Transport", updated.Category)
		stored, _ := service.GetTransaction(ctx, created.Id)
		assert.True(t, stored.Amount.Equal(decimal.NewFromInt(99)))
		assert.Equal(t, event_bus.TransactionUpdatedType, published[len(published)-1].Type)
	})

	t.Run("should reject link to another user's category", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		repoStub.AddBudgetCategory(2, 5)
		created, _ := service.CreateTransaction(ctx, expense("Makan", 1, date(2025, 3, 1)))
		changed := created
		changed.BudgetCategoryId = 5

		// when
		_, err := service.UpdateTransaction(ctx, changed)

		// then
		assert.ErrorIs(t, err, ErrInvalidTransaction)
		stored, _ := service.GetTransaction(ctx, created.Id)
		assert.Equal(t, 0, stored.BudgetCategoryId)
	})

	t.Run("should return not found for unknown id", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		tx := expense("Makan", 1, date(2025, 3, 1))
		tx.Id = "6f1c2a1e-7f5e-4c55-9a49-3c1f1bb0f111"

		// when
		_, err := service.UpdateTransaction(ctx, tx)

		// then
		assert.ErrorIs(t, err, ErrTransactionNotFound)
	})
}

func TestServiceImpl_DeleteTransaction(t *testing.T) {
	t.Run("should delete and publish", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, _ := service.CreateTransaction(ctx, expense("Makan", 1, date(2025, 3, 1)))

		// when
		err := service.DeleteTransaction(ctx, created.Id)

		// then
		require.NoError(t, err)
		_, getErr := service.GetTransaction(ctx, created.Id)
		assert.ErrorIs(t, getErr, ErrTransactionNotFound)
		last := published[len(published)-1]
		assert.Equal(t, event_bus.TransactionDeletedType, last.Type)
		assert.Equal(t, created.Id, last.Data.(event_bus.TransactionDeleted).Id)
	})

	t.Run("should return not found for malformed id", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		err := service.DeleteTransaction(ctx, "not-a-uuid")

		// then
		assert.ErrorIs(t, err, ErrTransactionNotFound)
	})
}
