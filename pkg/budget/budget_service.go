package budget

import (
	"context"
	"fmt"

	"github.com/finmate/finmate/pkg/aggregation"
	"github.com/finmate/finmate/pkg/transaction"
	"github.com/finmate/finmate/pkg/user"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const positionStep = 100

type BudgetService interface {
	ListCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, id int) (Category, error)
	CreateCategory(ctx context.Context, category Category) (Category, error)
	UpdateCategory(ctx context.Context, category Category) (Category, error)
	DeleteCategory(ctx context.Context, id int) error
	// MoveAfter places the category right after precedingId, or first when precedingId is 0.
	MoveAfter(ctx context.Context, id, precedingId int) error
	GetUsage(ctx context.Context) (Usage, error)
}

// TransactionReader is the fetch-all source of the user's transaction log.
type TransactionReader interface {
	ListAll(ctx context.Context) ([]transaction.Transaction, error)
}

type Usage struct {
	TotalBudget decimal.Decimal
	Used        decimal.Decimal
	Remaining   decimal.Decimal
	Percentage  int
	Categories  []CategoryUsage
}

type CategoryUsage struct {
	Category   Category
	Used       decimal.Decimal
	Remaining  decimal.Decimal
	Percentage int
}

type BudgetServiceImpl struct {
	repo         BudgetRepo
	transactions TransactionReader
}

func NewBudgetServiceImpl(repo BudgetRepo, transactions TransactionReader) *BudgetServiceImpl {
	return &BudgetServiceImpl{repo: repo, transactions: transactions}
}

func (s *BudgetServiceImpl) ListCategories(ctx context.Context) ([]Category, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetAll(ctx, userId)
}

func (s *BudgetServiceImpl) GetCategory(ctx context.Context, id int) (Category, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Category{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Get(ctx, userId, id)
}

func (s *BudgetServiceImpl) CreateCategory(ctx context.Context, category Category) (Category, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Category{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := category.validate(); err != nil {
		return Category{}, err
	}
	maxPosition, err := s.repo.FindMaxPosition(ctx, userId)
	if err != nil {
		return Category{}, err
	}
	category.Position = maxPosition + positionStep
	if category.Color == "" {
		category.Color = paletteColor(category.Position / positionStep)
	}

	id, err := s.repo.Store(ctx, userId, category)
	if err != nil {
		return Category{}, err
	}
	category.ID = id
	return category, nil
}

func (s *BudgetServiceImpl) UpdateCategory(ctx context.Context, category Category) (Category, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Category{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := category.validate(); err != nil {
		return Category{}, err
	}
	existing, err := s.repo.Get(ctx, userId, category.ID)
	if err != nil {
		return Category{}, err
	}
	if category.Color == "" {
		category.Color = existing.Color
	}
	category.Position = existing.Position

	updated, err := s.repo.Update(ctx, userId, category)
	if err != nil {
		return Category{}, err
	}
	if !updated {
		log.Warnf("budget category not updated, probably because it does not exist (%d) or the user (%d) is not the owner", category.ID, userId)
		return Category{}, ErrCategoryNotFound
	}
	return category, nil
}

func (s *BudgetServiceImpl) DeleteCategory(ctx context.Context, id int) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}

	deleted, err := s.repo.Delete(ctx, userId, id)
	if err != nil {
		return err
	}
	if !deleted {
		log.Warnf("budget category not deleted, probably because it does not exist (%d) or the user (%d) is not the owner", id, userId)
		return ErrCategoryNotFound
	}
	return nil
}

func (s *BudgetServiceImpl) MoveAfter(ctx context.Context, id, precedingId int) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	categories, err := s.repo.GetAll(ctx, userId)
	if err != nil {
		return err
	}

	movedIdx := findCategory(id, categories)
	if movedIdx == -1 {
		return ErrCategoryNotFound
	}
	moved := categories[movedIdx]
	others := make([]Category, 0, len(categories)-1)
	others = append(others, categories[:movedIdx]...)
	others = append(others, categories[movedIdx+1:]...)

	insertAt := 0
	prevPos := 0
	if precedingId != 0 {
		prevIdx := findCategory(precedingId, others)
		if prevIdx == -1 {
			return ErrCategoryNotFound
		}
		insertAt = prevIdx + 1
		prevPos = others[prevIdx].Position
	}

	if insertAt == len(others) {
		moved.Position = prevPos + positionStep
	} else if nextPos := others[insertAt].Position; nextPos-prevPos > 1 {
		moved.Position = prevPos + (nextPos-prevPos)/2
	} else {
		// no room between neighbours, renumber everything
		reordered := make([]Category, 0, len(categories))
		reordered = append(reordered, others[:insertAt]...)
		reordered = append(reordered, moved)
		reordered = append(reordered, others[insertAt:]...)
		return s.reorderCategories(ctx, userId, reordered)
	}

	if _, err := s.repo.UpdatePosition(ctx, userId, moved); err != nil {
		return err
	}
	return nil
}

func (s *BudgetServiceImpl) reorderCategories(ctx context.Context, userId int, categories []Category) error {
	for i, category := range categories {
		category.Position = (i + 1) * positionStep
		if _, err := s.repo.UpdatePosition(ctx, userId, category); err != nil {
			return err
		}
	}
	return nil
}

func (s *BudgetServiceImpl) GetUsage(ctx context.Context) (Usage, error) {
	categories, err := s.ListCategories(ctx)
	if err != nil {
		return Usage{}, err
	}
	transactions, err := s.transactions.ListAll(ctx)
	if err != nil {
		return Usage{}, err
	}

	limits := make([]aggregation.BudgetLimit, 0, len(categories))
	for _, c := range categories {
		limits = append(limits, c.limit())
	}
	overview := aggregation.BudgetOverview(transactions, limits)

	rows := make([]CategoryUsage, 0, len(categories))
	for i, row := range overview.Categories {
		rows = append(rows, CategoryUsage{
			Category:   categories[i],
			Used:       row.Used,
			Remaining:  row.Remaining,
			Percentage: row.Percentage,
		})
	}
	return Usage{
		TotalBudget: overview.TotalBudget,
		Used:        overview.Used,
		Remaining:   overview.Remaining,
		Percentage:  overview.Percentage,
		Categories:  rows,
	}, nil
}

func findCategory(id int, categories []Category) int {
	for idx, c := range categories {
		if c.ID == id {
			return idx
		}
	}
	return -1
}
