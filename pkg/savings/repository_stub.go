package savings

import (
	"context"
	"sort"
)

type RepositoryStub struct {
	nextId int
	data   map[int]map[int]Plan
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{data: map[int]map[int]Plan{}}
}

func (s *RepositoryStub) userData(userId int) map[int]Plan {
	if s.data[userId] == nil {
		s.data[userId] = map[int]Plan{}
	}
	return s.data[userId]
}

func (s *RepositoryStub) Store(ctx context.Context, userId int, plan Plan) (int, error) {
	s.nextId++
	plan.ID = s.nextId
	s.userData(userId)[plan.ID] = plan
	return plan.ID, nil
}

func (s *RepositoryStub) GetAll(ctx context.Context, userId int) ([]Plan, error) {
	plans := make([]Plan, 0, len(s.userData(userId)))
	for _, p := range s.userData(userId) {
		plans = append(plans, p)
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].ID < plans[j].ID })
	return plans, nil
}

func (s *RepositoryStub) Get(ctx context.Context, userId int, id int) (Plan, error) {
	p, ok := s.userData(userId)[id]
	if !ok {
		return Plan{}, ErrPlanNotFound
	}
	return p, nil
}

func (s *RepositoryStub) Update(ctx context.Context, userId int, plan Plan) (bool, error) {
	if _, ok := s.userData(userId)[plan.ID]; !ok {
		return false, nil
	}
	s.userData(userId)[plan.ID] = plan
	return true, nil
}

func (s *RepositoryStub) Delete(ctx context.Context, userId int, id int) (bool, error) {
	if _, ok := s.userData(userId)[id]; !ok {
		return false, nil
	}
	delete(s.userData(userId), id)
	return true, nil
}

func (s *RepositoryStub) Cleanup() {
	s.nextId = 0
	s.data = map[int]map[int]Plan{}
}
