package budget

import (
	"context"
	"flag"
	"os"
	"testing"

	"github.com/finmate/finmate/internal/test_utils"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var db *pgxpool.Pool

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}
	var cleanup func()
	db, cleanup = test_utils.TestWithDB()
	code := m.Run()
	cleanup()
	os.Exit(code)
}

func setupTestRepository(t *testing.T) (context.Context, BudgetRepo, int) {
	if db == nil {
		t.Skip("database tests are skipped in short mode")
	}
	ctx := context.Background()
	require.NoError(t, test_utils.Truncate(ctx, db, "budget_category", "users"))
	testUser, err := test_utils.CreateTestUser(ctx, db)
	require.NoError(t, err)
	return ctx, NewBudgetRepo(db), testUser.Id
}

func TestBudgetRepoImpl_StoreAndGetAll(t *testing.T) {
	// given
	ctx, repo, userId := setupTestRepository(t)

	// when
	_, err := repo.Store(ctx, userId, Category{Name: "Transport", Total: money(200000), Position: 200})
	require.NoError(t, err)
	id, err := repo.Store(ctx, userId, Category{Name: "Makan", Total: money(800000), Color: "#fff", Position: 100})
	require.NoError(t, err)

	// then
	categories, err := repo.GetAll(ctx, userId)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, id, categories[0].ID)
	assert.True(t, categories[0].Total.Equal(money(800000)))
	maxPosition, err := repo.FindMaxPosition(ctx, userId)
	require.NoError(t, err)
	assert.Equal(t, 200, maxPosition)
}

func TestBudgetRepoImpl_DuplicateName(t *testing.T) {
	// given
	ctx, repo, userId := setupTestRepository(t)
	_, err := repo.Store(ctx, userId, Category{Name: "Makan", Total: money(1)})
	require.NoError(t, err)

	// when
	_, err = repo.Store(ctx, userId, Category{Name: "MAKAN", Total: money(1)})

	// then
	assert.ErrorIs(t, err, ErrDuplicateCategory)
}

func TestBudgetRepoImpl_UpdateAndDelete(t *testing.T) {
	// given
	ctx, repo, userId := setupTestRepository(t)
	id, err := repo.Store(ctx, userId, Category{Name: "Makan", Total: money(1)})
	require.NoError(t, err)

	// when
	updated, err := repo.Update(ctx, userId, Category{ID: id, Name: "Makanan", Total: money(2)})
	require.NoError(t, err)
	notOwned, err := repo.Update(ctx, userId+1, Category{ID: id, Name: "X", Total: money(2)})
	require.NoError(t, err)
	deleted, err := repo.Delete(ctx, userId, id)
	require.NoError(t, err)
	_, getErr := repo.Get(ctx, userId, id)

	// then
	assert.True(t, updated)
	assert.False(t, notOwned)
	assert.True(t, deleted)
	assert.ErrorIs(t, getErr, ErrCategoryNotFound)
}
