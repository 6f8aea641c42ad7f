package report

import (
	"context"
	"errors"
	"time"

	"github.com/finmate/finmate/pkg/transaction"
	"github.com/finmate/finmate/pkg/user"
	"github.com/shopspring/decimal"
)

type transactionReaderStub struct {
	transactions []transaction.Transaction
	// others holds the logs of users other than the current one.
	others map[int][]transaction.Transaction
}

func (s *transactionReaderStub) ListAll(ctx context.Context) ([]transaction.Transaction, error) {
	if _, err := user.CurrentId(ctx); err != nil {
		return nil, errors.New("failed to get current user")
	}
	return s.transactions, nil
}

func (s *transactionReaderStub) ListAllForUsers(ctx context.Context, userIds []int) ([]transaction.Transaction, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, errors.New("failed to get current user")
	}
	result := make([]transaction.Transaction, 0)
	for _, id := range userIds {
		if id == userId {
			result = append(result, s.transactions...)
		} else {
			result = append(result, s.others[id]...)
		}
	}
	return result, nil
}

func (s *transactionReaderStub) reset() {
	s.transactions = nil
	s.others = nil
}

type familyResolverStub struct {
	memberIds []int
	err       error
}

func (s *familyResolverStub) FamilyMemberIds(ctx context.Context) ([]int, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.memberIds) == 0 {
		userId, err := user.CurrentId(ctx)
		return []int{userId}, err
	}
	return s.memberIds, nil
}

func entry(txType transaction.Type, category string, amount int64, date time.Time) transaction.Transaction {
	return transaction.Transaction{
		Id:       category + date.Format("0102"),
		Type:     txType,
		Category: category,
		Amount:   decimal.NewFromInt(amount),
		Method:   transaction.Manual,
		Date:     date,
	}
}

func day(month time.Month, d int) time.Time {
	return time.Date(2025, month, d, 0, 0, 0, 0, time.UTC)
}
