package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repo interface {
	CreateUser(ctx context.Context, user User) (int, error)
	GetUser(ctx context.Context, id int) (User, error)
	GetUserByUid(ctx context.Context, uid string) (User, error)
	UpdateUser(ctx context.Context, userId int, user User) (User, error)
	StoreFamily(ctx context.Context, family Family) error
	GetFamily(ctx context.Context, familyId string) (Family, error)
	// SetFamily moves the user into familyId, or out of any family when familyId is empty.
	SetFamily(ctx context.Context, userId int, familyId string) (User, error)
	ListFamilyMembers(ctx context.Context, familyId string) ([]User, error)
}

type UserRepoImpl struct {
	db *pgxpool.Pool
}

func NewUserRepo(db *pgxpool.Pool) *UserRepoImpl {
	return &UserRepoImpl{db: db}
}

const userColumns = `id, uid, name, email, COALESCE(family_id::text, '')`

func scanUser(row pgx.Row) (User, error) {
	var user User
	err := row.Scan(&user.Id, &user.Uid, &user.Name, &user.Email, &user.FamilyId)
	return user, err
}

func (u *UserRepoImpl) CreateUser(ctx context.Context, user User) (int, error) {
	query := `INSERT INTO users (uid, name, email) VALUES ($1, $2, $3) RETURNING id`
	var id int
	err := u.db.QueryRow(ctx, query, user.Uid, user.Name, user.Email).Scan(&id)
	if err != nil {
		log.Errorf("failed to create user: %v", err)
		return 0, err
	}
	return id, nil
}

func (u *UserRepoImpl) GetUser(ctx context.Context, id int) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(u.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		log.Debugf("user with id %d not found", id)
		return User{}, ErrUserNotFound
	} else if err != nil {
		log.Errorf("failed to get user: %v", err)
		return User{}, err
	}
	return user, nil
}

func (u *UserRepoImpl) GetUserByUid(ctx context.Context, uid string) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`
	user, err := scanUser(u.db.QueryRow(ctx, query, uid))
	if errors.Is(err, pgx.ErrNoRows) {
		log.Debugf("user with uid %s not found", uid)
		return User{}, ErrUserNotFound
	} else if err != nil {
		log.Errorf("failed to get user: %v", err)
		return User{}, err
	}
	return user, nil
}

func (u *UserRepoImpl) UpdateUser(ctx context.Context, userId int, user User) (User, error) {
	query := `UPDATE users SET name = $1, email = $2 WHERE id = $3`
	result, err := u.db.Exec(ctx, query, user.Name, user.Email, userId)
	if err != nil {
		err := fmt.Errorf("could not update user: %w", err)
		log.Error(err)
		return User{}, err
	}
	if result.RowsAffected() == 0 {
		return User{}, ErrUserNotFound
	}
	return u.GetUser(ctx, userId)
}

func (u *UserRepoImpl) StoreFamily(ctx context.Context, family Family) error {
	_, err := u.db.Exec(ctx, `INSERT INTO family (id, name) VALUES ($1, $2)`, family.Id, family.Name)
	if err != nil {
		log.Errorf("failed to store family: %v", err)
		return err
	}
	return nil
}

func (u *UserRepoImpl) GetFamily(ctx context.Context, familyId string) (Family, error) {
	var family Family
	err := u.db.QueryRow(ctx, `SELECT id::text, name FROM family WHERE id = $1`, familyId).Scan(&family.Id, &family.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return Family{}, ErrFamilyNotFound
	} else if err != nil {
		log.Errorf("failed to get family %s: %v", familyId, err)
		return Family{}, err
	}
	return family, nil
}

func (u *UserRepoImpl) SetFamily(ctx context.Context, userId int, familyId string) (User, error) {
	result, err := u.db.Exec(ctx, `UPDATE users SET family_id = NULLIF($1, '')::uuid WHERE id = $2`, familyId, userId)
	if err != nil {
		log.Errorf("failed to set family of user %d: %v", userId, err)
		return User{}, err
	}
	if result.RowsAffected() == 0 {
		return User{}, ErrUserNotFound
	}
	return u.GetUser(ctx, userId)
}

func (u *UserRepoImpl) ListFamilyMembers(ctx context.Context, familyId string) ([]User, error) {
	rows, err := u.db.Query(ctx, `SELECT `+userColumns+` FROM users WHERE family_id = $1 ORDER BY id`, familyId)
	if err != nil {
		log.Errorf("failed to list members of family %s: %v", familyId, err)
		return nil, err
	}
	members, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (User, error) {
		return scanUser(row)
	})
	if err != nil {
		log.Errorf("failed to scan family members: %v", err)
		return nil, err
	}
	return members, nil
}
