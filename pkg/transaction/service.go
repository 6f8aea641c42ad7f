package transaction

import (
	"context"
	"fmt"
	"slices"

	"github.com/finmate/finmate/internal/event_bus"
	"github.com/finmate/finmate/pkg/user"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	CreateTransaction(ctx context.Context, transaction Transaction) (Transaction, error)
	GetTransaction(ctx context.Context, id string) (Transaction, error)
	ListTransactions(ctx context.Context, filter Filter) ([]Transaction, error)
	UpdateTransaction(ctx context.Context, transaction Transaction) (Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	// ListAll returns the whole log of the current user, newest first.
	ListAll(ctx context.Context) ([]Transaction, error)
	// ListAllForUsers returns the combined log of a family. The current user must be one of userIds.
	ListAllForUsers(ctx context.Context, userIds []int) ([]Transaction, error)
}

// LinkChecker tells whether a budget category or savings plan id belongs to the user.
type LinkChecker interface {
	BudgetCategoryExists(ctx context.Context, userId int, id int) (bool, error)
	SavingsPlanExists(ctx context.Context, userId int, id int) (bool, error)
}

type ServiceImpl struct {
	repo     Repository
	links    LinkChecker
	eventBus *event_bus.EventBus
}

func NewService(repo Repository, links LinkChecker, eventBus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, links: links, eventBus: eventBus}
}

func (s *ServiceImpl) CreateTransaction(ctx context.Context, transaction Transaction) (Transaction, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := transaction.Validate(); err != nil {
		return Transaction{}, err
	}
	if err := s.checkLinks(ctx, userId, transaction); err != nil {
		return Transaction{}, err
	}
	transaction.Id = uuid.NewString()

	stored, err := s.repo.Store(ctx, userId, transaction)
	if err != nil {
		return Transaction{}, err
	}
	s.publish(ctx, event_bus.TransactionCreatedType, changedEvent(userId, stored))
	return stored, nil
}

func (s *ServiceImpl) GetTransaction(ctx context.Context, id string) (Transaction, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if _, err := uuid.Parse(id); err != nil {
		return Transaction{}, ErrTransactionNotFound
	}
	return s.repo.Get(ctx, userId, id)
}

func (s *ServiceImpl) ListTransactions(ctx context.Context, filter Filter) ([]Transaction, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	if filter.Type != "" && !filter.Type.IsValid() {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, filter.Type)
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.From.After(filter.To) {
		return nil, fmt.Errorf("%w: from date is after to date", ErrInvalidTransaction)
	}
	return s.repo.List(ctx, userId, filter)
}

func (s *ServiceImpl) ListAll(ctx context.Context) ([]Transaction, error) {
	return s.ListTransactions(ctx, Filter{})
}

func (s *ServiceImpl) ListAllForUsers(ctx context.Context, userIds []int) ([]Transaction, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	if !slices.Contains(userIds, userId) {
		return nil, fmt.Errorf("user %d is not among the requested owners", userId)
	}
	return s.repo.ListForUsers(ctx, userIds)
}

func (s *ServiceImpl) UpdateTransaction(ctx context.Context, transaction Transaction) (Transaction, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if _, err := uuid.Parse(transaction.Id); err != nil {
		return Transaction{}, ErrTransactionNotFound
	}
	if err := transaction.Validate(); err != nil {
		return Transaction{}, err
	}
	if err := s.checkLinks(ctx, userId, transaction); err != nil {
		return Transaction{}, err
	}

	updated, err := s.repo.Update(ctx, userId, transaction)
	if err != nil {
		return Transaction{}, err
	}
	s.publish(ctx, event_bus.TransactionUpdatedType, changedEvent(userId, updated))
	return updated, nil
}

func (s *ServiceImpl) DeleteTransaction(ctx context.Context, id string) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	if _, err := uuid.Parse(id); err != nil {
		return ErrTransactionNotFound
	}

	deleted, err := s.repo.Delete(ctx, userId, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrTransactionNotFound
	}
	s.publish(ctx, event_bus.TransactionDeletedType, event_bus.TransactionDeleted{Id: id, UserId: userId})
	return nil
}

// checkLinks rejects link ids that do not name one of the user's own categories or plans.
func (s *ServiceImpl) checkLinks(ctx context.Context, userId int, t Transaction) error {
	if t.BudgetCategoryId > 0 {
		exists, err := s.links.BudgetCategoryExists(ctx, userId, t.BudgetCategoryId)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: budget category %d not found", ErrInvalidTransaction, t.BudgetCategoryId)
		}
	}
	if t.SavingsPlanId > 0 {
		exists, err := s.links.SavingsPlanExists(ctx, userId, t.SavingsPlanId)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: savings plan %d not found", ErrInvalidTransaction, t.SavingsPlanId)
		}
	}
	return nil
}

// publish is best-effort: the change is already committed, so subscriber failures are only logged.
func (s *ServiceImpl) publish(ctx context.Context, eventType event_bus.EventType, data any) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(event_bus.NewEvent(ctx, eventType, data)); err != nil {
		log.Errorf("failed to publish %s event: %v", eventType, err)
	}
}

func changedEvent(userId int, t Transaction) event_bus.TransactionChanged {
	return event_bus.TransactionChanged{
		Id:               t.Id,
		UserId:           userId,
		Category:         t.Category,
		Amount:           t.Amount,
		Type:             string(t.Type),
		Method:           string(t.Method),
		Date:             t.Date,
		BudgetCategoryId: t.BudgetCategoryId,
		SavingsPlanId:    t.SavingsPlanId,
	}
}
