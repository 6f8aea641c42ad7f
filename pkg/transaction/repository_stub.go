package transaction

import (
	"context"
	"sort"
	"time"
)

type RepositoryStub struct {
	data             map[int][]Transaction
	budgetCategories map[int]map[int]bool
	savingsPlans     map[int]map[int]bool
	now              time.Time
	failErr          error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		data:             make(map[int][]Transaction),
		budgetCategories: make(map[int]map[int]bool),
		savingsPlans:     make(map[int]map[int]bool),
		now:              time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// AddBudgetCategory and AddSavingsPlan register link targets owned by userId.
func (s *RepositoryStub) AddBudgetCategory(userId int, id int) {
	if s.budgetCategories[userId] == nil {
		s.budgetCategories[userId] = make(map[int]bool)
	}
	s.budgetCategories[userId][id] = true
}

func (s *RepositoryStub) AddSavingsPlan(userId int, id int) {
	if s.savingsPlans[userId] == nil {
		s.savingsPlans[userId] = make(map[int]bool)
	}
	s.savingsPlans[userId][id] = true
}

func (s *RepositoryStub) BudgetCategoryExists(ctx context.Context, userId int, id int) (bool, error) {
	if s.failErr != nil {
		return false, s.failErr
	}
	return s.budgetCategories[userId][id], nil
}

func (s *RepositoryStub) SavingsPlanExists(ctx context.Context, userId int, id int) (bool, error) {
	if s.failErr != nil {
		return false, s.failErr
	}
	return s.savingsPlans[userId][id], nil
}

// FailWith makes every following call return err until Cleanup.
func (s *RepositoryStub) FailWith(err error) {
	s.failErr = err
}

func (s *RepositoryStub) Store(ctx context.Context, userId int, transaction Transaction) (Transaction, error) {
	if s.failErr != nil {
		return Transaction{}, s.failErr
	}
	s.now = s.now.Add(time.Second)
	transaction.Created = s.now
	s.data[userId] = append(s.data[userId], transaction)
	return transaction, nil
}

func (s *RepositoryStub) Get(ctx context.Context, userId int, id string) (Transaction, error) {
	if s.failErr != nil {
		return Transaction{}, s.failErr
	}
	for _, t := range s.data[userId] {
		if t.Id == id {
			return t, nil
		}
	}
	return Transaction{}, ErrTransactionNotFound
}

func (s *RepositoryStub) List(ctx context.Context, userId int, filter Filter) ([]Transaction, error) {
	if s.failErr != nil {
		return nil, s.failErr
	}
	result := make([]Transaction, 0)
	for _, t := range s.data[userId] {
		if filter.Matches(t) {
			result = append(result, t)
		}
	}
	sortNewestFirst(result)
	return result, nil
}

func (s *RepositoryStub) ListForUsers(ctx context.Context, userIds []int) ([]Transaction, error) {
	if s.failErr != nil {
		return nil, s.failErr
	}
	result := make([]Transaction, 0)
	for _, userId := range userIds {
		result = append(result, s.data[userId]...)
	}
	sortNewestFirst(result)
	return result, nil
}

func sortNewestFirst(result []Transaction) {
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.After(result[j].Date)
		}
		return result[i].Created.After(result[j].Created)
	})
}

func (s *RepositoryStub) Update(ctx context.Context, userId int, transaction Transaction) (Transaction, error) {
	if s.failErr != nil {
		return Transaction{}, s.failErr
	}
	for i, t := range s.data[userId] {
		if t.Id == transaction.Id {
			transaction.Created = t.Created
			s.data[userId][i] = transaction
			return transaction, nil
		}
	}
	return Transaction{}, ErrTransactionNotFound
}

func (s *RepositoryStub) Delete(ctx context.Context, userId int, id string) (bool, error) {
	if s.failErr != nil {
		return false, s.failErr
	}
	for i, t := range s.data[userId] {
		if t.Id == id {
			s.data[userId] = append(s.data[userId][:i], s.data[userId][i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *RepositoryStub) Cleanup() {
	s.data = make(map[int][]Transaction)
	s.budgetCategories = make(map[int]map[int]bool)
	s.savingsPlans = make(map[int]map[int]bool)
	s.failErr = nil
}
