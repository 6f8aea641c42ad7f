package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finmate/finmate/internal/utils"
	"github.com/finmate/finmate/pkg/aggregation"
	"github.com/finmate/finmate/pkg/transaction"
)

var ErrInvalidPeriod = errors.New("invalid period")
var ErrInvalidScope = errors.New("invalid scope")

const (
	defaultDailyDays        = 7
	maxDailyDays            = 366
	DefaultComparisonMonths = 6
	maxComparisonMonths     = 24
)

type Service interface {
	GetSummary(ctx context.Context, scope Scope) (aggregation.Summary, error)
	GetMonthlyRecap(ctx context.Context, scope Scope, year int, month time.Month) (aggregation.Recap, error)
	GetTimeline(ctx context.Context, scope Scope, from, to time.Time) ([]aggregation.DateGroup, error)
	GetDailyExpenses(ctx context.Context, scope Scope, from, to time.Time) ([]aggregation.DailyAmount, error)
	GetMonthlyComparison(ctx context.Context, scope Scope, months int) ([]aggregation.MonthAmount, error)
	Preview(raw []byte) Preview
}

type TransactionReader interface {
	ListAll(ctx context.Context) ([]transaction.Transaction, error)
	ListAllForUsers(ctx context.Context, userIds []int) ([]transaction.Transaction, error)
}

// FamilyResolver lists the users whose transactions make up a family report.
type FamilyResolver interface {
	FamilyMemberIds(ctx context.Context) ([]int, error)
}

type ServiceImpl struct {
	transactions TransactionReader
	families     FamilyResolver
	clock        utils.Clock
}

func NewService(transactions TransactionReader, families FamilyResolver, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{transactions: transactions, families: families, clock: clock}
}

func (s *ServiceImpl) load(ctx context.Context, scope Scope) ([]transaction.Transaction, error) {
	switch scope {
	case "", Personal:
		return s.transactions.ListAll(ctx)
	case Family:
		memberIds, err := s.families.FamilyMemberIds(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve family members: %w", err)
		}
		return s.transactions.ListAllForUsers(ctx, memberIds)
	default:
		return nil, fmt.Errorf("%w: unknown scope %q", ErrInvalidScope, scope)
	}
}

func (s *ServiceImpl) GetSummary(ctx context.Context, scope Scope) (aggregation.Summary, error) {
	transactions, err := s.load(ctx, scope)
	if err != nil {
		return aggregation.Summary{}, err
	}
	return aggregation.Summarize(transactions), nil
}

func (s *ServiceImpl) GetMonthlyRecap(ctx context.Context, scope Scope, year int, month time.Month) (aggregation.Recap, error) {
	if month < time.January || month > time.December {
		return aggregation.Recap{}, ErrInvalidPeriod
	}
	transactions, err := s.load(ctx, scope)
	if err != nil {
		return aggregation.Recap{}, err
	}
	return aggregation.MonthlyRecap(transactions, year, month, s.clock.Now()), nil
}

func (s *ServiceImpl) GetTimeline(ctx context.Context, scope Scope, from, to time.Time) ([]aggregation.DateGroup, error) {
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, ErrInvalidPeriod
	}
	transactions, err := s.load(ctx, scope)
	if err != nil {
		return nil, err
	}
	return aggregation.GroupByDate(aggregation.FilterByPeriod(transactions, from, to)), nil
}

// GetDailyExpenses returns one entry per day of the period. A missing to defaults to today and a
// missing from to the week ending at to.
func (s *ServiceImpl) GetDailyExpenses(ctx context.Context, scope Scope, from, to time.Time) ([]aggregation.DailyAmount, error) {
	if to.IsZero() {
		to = utils.Today(s.clock)
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -(defaultDailyDays - 1))
	}
	if from.After(to) {
		return nil, ErrInvalidPeriod
	}
	if to.Sub(from) >= maxDailyDays*24*time.Hour {
		return nil, fmt.Errorf("%w: at most %d days", ErrInvalidPeriod, maxDailyDays)
	}
	transactions, err := s.load(ctx, scope)
	if err != nil {
		return nil, err
	}
	return aggregation.DailyExpenses(transactions, from, to), nil
}

func (s *ServiceImpl) GetMonthlyComparison(ctx context.Context, scope Scope, months int) ([]aggregation.MonthAmount, error) {
	if months < 1 || months > maxComparisonMonths {
		return nil, fmt.Errorf("%w: months must be between 1 and %d", ErrInvalidPeriod, maxComparisonMonths)
	}
	transactions, err := s.load(ctx, scope)
	if err != nil {
		return nil, err
	}
	return aggregation.MonthlyComparison(transactions, months, s.clock.Now()), nil
}

func (s *ServiceImpl) Preview(raw []byte) Preview {
	transactions := aggregation.DecodeLenient(raw)
	return Preview{
		TransactionCount: len(transactions),
		Summary:          aggregation.Summarize(transactions),
		Timeline:         aggregation.GroupByDate(transactions),
	}
}
