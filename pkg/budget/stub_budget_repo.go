package budget

import (
	"context"
	"sort"
	"strings"
)

type StubBudgetRepo struct {
	nextId int
	data   map[int]map[int]Category
}

func NewStubBudgetRepo() *StubBudgetRepo {
	return &StubBudgetRepo{data: map[int]map[int]Category{}}
}

func (s *StubBudgetRepo) userData(userId int) map[int]Category {
	if s.data[userId] == nil {
		s.data[userId] = map[int]Category{}
	}
	return s.data[userId]
}

func (s *StubBudgetRepo) nameTaken(userId int, category Category) bool {
	for _, existing := range s.userData(userId) {
		if existing.ID != category.ID && strings.EqualFold(existing.Name, category.Name) {
			return true
		}
	}
	return false
}

func (s *StubBudgetRepo) Store(ctx context.Context, userId int, category Category) (int, error) {
	if s.nameTaken(userId, category) {
		return 0, ErrDuplicateCategory
	}
	s.nextId++
	category.ID = s.nextId
	s.userData(userId)[category.ID] = category
	return category.ID, nil
}

func (s *StubBudgetRepo) GetAll(ctx context.Context, userId int) ([]Category, error) {
	categories := make([]Category, 0, len(s.userData(userId)))
	for _, c := range s.userData(userId) {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Position != categories[j].Position {
			return categories[i].Position < categories[j].Position
		}
		return categories[i].ID < categories[j].ID
	})
	return categories, nil
}

func (s *StubBudgetRepo) Get(ctx context.Context, userId int, id int) (Category, error) {
	c, ok := s.userData(userId)[id]
	if !ok {
		return Category{}, ErrCategoryNotFound
	}
	return c, nil
}

func (s *StubBudgetRepo) Update(ctx context.Context, userId int, category Category) (bool, error) {
	existing, ok := s.userData(userId)[category.ID]
	if !ok {
		return false, nil
	}
	if s.nameTaken(userId, category) {
		return false, ErrDuplicateCategory
	}
	category.Position = existing.Position
	s.userData(userId)[category.ID] = category
	return true, nil
}

func (s *StubBudgetRepo) UpdatePosition(ctx context.Context, userId int, category Category) (bool, error) {
	existing, ok := s.userData(userId)[category.ID]
	if !ok {
		return false, nil
	}
	existing.Position = category.Position
	s.userData(userId)[category.ID] = existing
	return true, nil
}

func (s *StubBudgetRepo) FindMaxPosition(ctx context.Context, userId int) (int, error) {
	maxPosition := 0
	for _, c := range s.userData(userId) {
		if c.Position > maxPosition {
			maxPosition = c.Position
		}
	}
	return maxPosition, nil
}

func (s *StubBudgetRepo) Delete(ctx context.Context, userId int, id int) (bool, error) {
	if _, ok := s.userData(userId)[id]; !ok {
		return false, nil
	}
	delete(s.userData(userId), id)
	return true, nil
}

func (s *StubBudgetRepo) Cleanup() {
	s.nextId = 0
	s.data = map[int]map[int]Category{}
}
