package test_utils

import (
	"context"

	"github.com/finmate/finmate/pkg/user"
	"github.com/jackc/pgx/v5/pgxpool"
)

var TestUser = user.User{
	Uid:   "test-user",
	Name:  "Test User",
	Email: "test@example.com",
}

// ContextWithUser returns a context carrying u as the current user.
func ContextWithUser(u user.User) context.Context {
	return user.WithUser(context.Background(), u)
}

// CreateTestUser inserts TestUser and returns it with its database id.
func CreateTestUser(ctx context.Context, db *pgxpool.Pool) (user.User, error) {
	repo := user.NewUserRepo(db)
	id, err := repo.CreateUser(ctx, TestUser)
	if err != nil {
		return user.User{}, err
	}
	created := TestUser
	created.Id = id
	return created, nil
}
