package user

import (
	"context"
	"sort"
)

type StubUserRepository struct {
	nextId   int
	data     map[int]User
	families map[string]Family
}

func NewStubUserRepository() *StubUserRepository {
	return &StubUserRepository{nextId: 0, data: map[int]User{}, families: map[string]Family{}}
}

func (s *StubUserRepository) CreateUser(ctx context.Context, user User) (int, error) {
	s.nextId++
	user.Id = s.nextId
	s.data[s.nextId] = user
	return s.nextId, nil
}

func (s *StubUserRepository) GetUser(ctx context.Context, id int) (User, error) {
	user, ok := s.data[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (s *StubUserRepository) GetUserByUid(ctx context.Context, uid string) (User, error) {
	for _, user := range s.data {
		if user.Uid == uid {
			return user, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (s *StubUserRepository) UpdateUser(ctx context.Context, userId int, user User) (User, error) {
	current, ok := s.data[userId]
	if !ok {
		return User{}, ErrUserNotFound
	}
	current.Name = user.Name
	current.Email = user.Email
	s.data[userId] = current
	return current, nil
}

func (s *StubUserRepository) StoreFamily(ctx context.Context, family Family) error {
	s.families[family.Id] = Family{Id: family.Id, Name: family.Name}
	return nil
}

func (s *StubUserRepository) GetFamily(ctx context.Context, familyId string) (Family, error) {
	family, ok := s.families[familyId]
	if !ok {
		return Family{}, ErrFamilyNotFound
	}
	return family, nil
}

func (s *StubUserRepository) SetFamily(ctx context.Context, userId int, familyId string) (User, error) {
	user, ok := s.data[userId]
	if !ok {
		return User{}, ErrUserNotFound
	}
	user.FamilyId = familyId
	s.data[userId] = user
	return user, nil
}

func (s *StubUserRepository) ListFamilyMembers(ctx context.Context, familyId string) ([]User, error) {
	members := make([]User, 0)
	for _, user := range s.data {
		if user.FamilyId == familyId {
			members = append(members, user)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].Id < members[j].Id })
	return members, nil
}
