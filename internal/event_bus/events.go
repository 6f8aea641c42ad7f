package event_bus

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TransactionCreatedType EventType = "transaction.created"
	TransactionUpdatedType EventType = "transaction.updated"
	TransactionDeletedType EventType = "transaction.deleted"
	SavingsAllocatedType   EventType = "savings.allocated"
)

// TransactionChanged is published for created and updated transactions.
type TransactionChanged struct {
	Id               string          `json:"id"`
	UserId           int             `json:"userId"`
	Category         string          `json:"category"`
	Amount           decimal.Decimal `json:"amount"`
	Type             string          `json:"type"`
	Method           string          `json:"method"`
	Date             time.Time       `json:"date"`
	BudgetCategoryId int             `json:"budgetCategoryId,omitempty"`
	SavingsPlanId    int             `json:"savingsPlanId,omitempty"`
}

type TransactionDeleted struct {
	Id     string `json:"id"`
	UserId int    `json:"userId"`
}

type SavingsAllocated struct {
	UserId         int                 `json:"userId"`
	Total          decimal.Decimal     `json:"total"`
	Contributions  []SavingsAllocation `json:"contributions"`
	RemainingFunds decimal.Decimal     `json:"remainingFunds"`
}

type SavingsAllocation struct {
	PlanId        int             `json:"planId"`
	PlanName      string          `json:"planName"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionId string          `json:"transactionId"`
}
