package user_test

import (
	"context"
	"flag"
	"os"
	"testing"

	"github.com/finmate/finmate/internal/test_utils"
	"github.com/finmate/finmate/pkg/user"
	"github.com/google/uuid"
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

func TestUserRepoImpl_Family(t *testing.T) {
	if db == nil {
		t.Skip("database tests are skipped in short mode")
	}
	// given
	ctx := context.Background()
	require.NoError(t, test_utils.Truncate(ctx, db, "users", "family"))
	repo := user.NewUserRepo(db)
	member, err := test_utils.CreateTestUser(ctx, db)
	require.NoError(t, err)
	family := user.Family{Id: uuid.NewString(), Name: "Rumah"}

	// when
	require.NoError(t, repo.StoreFamily(ctx, family))
	joined, err := repo.SetFamily(ctx, member.Id, family.Id)

	// then
	require.NoError(t, err)
	assert.Equal(t, family.Id, joined.FamilyId)
	stored, err := repo.GetFamily(ctx, family.Id)
	require.NoError(t, err)
	assert.Equal(t, "Rumah", stored.Name)
	members, err := repo.ListFamilyMembers(ctx, family.Id)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, member.Id, members[0].Id)

	left, err := repo.SetFamily(ctx, member.Id, "")
	require.NoError(t, err)
	assert.Empty(t, left.FamilyId)
	_, err = repo.GetFamily(ctx, uuid.NewString())
	assert.ErrorIs(t, err, user.ErrFamilyNotFound)
}
