package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const maxFamilyNameLength = 255

type Service interface {
	GetCurrentUser(ctx context.Context) (User, error)
	GetUserByUid(ctx context.Context, uid string) (User, error)
	CreateUser(ctx context.Context, user User) (User, error)
	UpdateUser(ctx context.Context, user User) (User, error)
	CreateFamily(ctx context.Context, name string) (Family, error)
	GetFamily(ctx context.Context) (Family, error)
	JoinFamily(ctx context.Context, familyId string) (Family, error)
	LeaveFamily(ctx context.Context) (User, error)
	FamilyMemberIds(ctx context.Context) ([]int, error)
}

type UserServiceImpl struct {
	repo Repo
}

func NewUserService(repo Repo) *UserServiceImpl {
	return &UserServiceImpl{repo: repo}
}

func (u *UserServiceImpl) GetCurrentUser(ctx context.Context) (User, error) {
	userId, err := CurrentId(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return u.repo.GetUser(ctx, userId)
}

func (u *UserServiceImpl) GetUserByUid(ctx context.Context, uid string) (User, error) {
	return u.repo.GetUserByUid(ctx, uid)
}

func (u *UserServiceImpl) CreateUser(ctx context.Context, user User) (User, error) {
	user.Email = strings.TrimSpace(user.Email)
	if err := user.Validate(); err != nil {
		return User{}, err
	}
	userId, err := u.repo.CreateUser(ctx, user)
	if err != nil {
		return User{}, err
	}
	user.Id = userId
	return user, nil
}

// UpdateUser changes name and email of the current user. The uid is immutable.
func (u *UserServiceImpl) UpdateUser(ctx context.Context, user User) (User, error) {
	current, err := CurrentUser(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	user.Id = current.Id
	user.Uid = current.Uid
	user.FamilyId = current.FamilyId
	user.Email = strings.TrimSpace(user.Email)
	if err := user.Validate(); err != nil {
		return User{}, err
	}
	return u.repo.UpdateUser(ctx, current.Id, user)
}

// CreateFamily starts a new family with the current user as its first member. A user already in a
// family moves to the new one.
func (u *UserServiceImpl) CreateFamily(ctx context.Context, name string) (Family, error) {
	userId, err := CurrentId(ctx)
	if err != nil {
		return Family{}, fmt.Errorf("failed to get current user: %w", err)
	}
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxFamilyNameLength {
		return Family{}, fmt.Errorf("%w: name must have 1 to %d characters", ErrInvalidFamily, maxFamilyNameLength)
	}
	family := Family{Id: uuid.NewString(), Name: name}
	if err := u.repo.StoreFamily(ctx, family); err != nil {
		return Family{}, err
	}
	if _, err := u.repo.SetFamily(ctx, userId, family.Id); err != nil {
		return Family{}, err
	}
	log.Infof("User %d created family %s", userId, family.Id)
	return u.familyWithMembers(ctx, family.Id)
}

func (u *UserServiceImpl) GetFamily(ctx context.Context) (Family, error) {
	familyId, err := CurrentFamilyId(ctx)
	if err != nil {
		return Family{}, err
	}
	return u.familyWithMembers(ctx, familyId)
}

// JoinFamily makes the current user a member of familyId, leaving any previous family.
func (u *UserServiceImpl) JoinFamily(ctx context.Context, familyId string) (Family, error) {
	userId, err := CurrentId(ctx)
	if err != nil {
		return Family{}, fmt.Errorf("failed to get current user: %w", err)
	}
	parsed, err := uuid.Parse(strings.TrimSpace(familyId))
	if err != nil {
		return Family{}, fmt.Errorf("%w: %q", ErrFamilyNotFound, familyId)
	}
	family, err := u.repo.GetFamily(ctx, parsed.String())
	if err != nil {
		return Family{}, err
	}
	if _, err := u.repo.SetFamily(ctx, userId, family.Id); err != nil {
		return Family{}, err
	}
	log.Infof("User %d joined family %s", userId, family.Id)
	return u.familyWithMembers(ctx, family.Id)
}

func (u *UserServiceImpl) LeaveFamily(ctx context.Context) (User, error) {
	familyId, err := CurrentFamilyId(ctx)
	if err != nil {
		return User{}, err
	}
	userId, _ := CurrentId(ctx)
	log.Infof("User %d left family %s", userId, familyId)
	return u.repo.SetFamily(ctx, userId, "")
}

// FamilyMemberIds returns the ids of everyone sharing the current user's family, ordered by id.
// A user without a family is its own only member.
func (u *UserServiceImpl) FamilyMemberIds(ctx context.Context) ([]int, error) {
	familyId, err := CurrentFamilyId(ctx)
	if errors.Is(err, ErrNoFamily) {
		userId, _ := CurrentId(ctx)
		return []int{userId}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	members, err := u.repo.ListFamilyMembers(ctx, familyId)
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.Id)
	}
	return ids, nil
}

func (u *UserServiceImpl) familyWithMembers(ctx context.Context, familyId string) (Family, error) {
	family, err := u.repo.GetFamily(ctx, familyId)
	if err != nil {
		return Family{}, err
	}
	family.Members, err = u.repo.ListFamilyMembers(ctx, familyId)
	if err != nil {
		return Family{}, err
	}
	return family, nil
}
