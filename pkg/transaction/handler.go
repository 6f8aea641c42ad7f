package transaction

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/finmate/finmate/internal/rest"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const DateLayout = "2006-01-02"

type TransactionDTO struct {
	Id               string          `json:"id"`
	Category         string          `json:"category"`
	Amount           decimal.Decimal `json:"amount"`
	Type             string          `json:"type"`
	Method           string          `json:"method"`
	Date             string          `json:"date"`
	Note             string          `json:"note,omitempty"`
	BudgetCategoryId int             `json:"budgetCategoryId,omitempty"`
	SavingsPlanId    int             `json:"savingsPlanId,omitempty"`
	Created          *time.Time      `json:"created,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Debug("Listing transactions")

	query := r.URL.Query()
	filter := Filter{
		Type:     Type(query.Get("type")),
		Category: query.Get("category"),
	}
	var err error
	if filter.From, err = parseOptionalDate(query.Get("from")); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid from date", "from must be in YYYY-MM-DD format")
		return
	}
	if filter.To, err = parseOptionalDate(query.Get("to")); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid to date", "to must be in YYYY-MM-DD format")
		return
	}

	transactions, err := h.service.ListTransactions(r.Context(), filter)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	result := make([]TransactionDTO, 0, len(transactions))
	for _, t := range transactions {
		result = append(result, ToDTO(t))
	}
	if err := json.NewEncoder(w).Encode(result); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id := mux.Vars(r)["transactionId"]
	log.Debugf("Getting transaction %s", id)

	t, err := h.service.GetTransaction(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if err := json.NewEncoder(w).Encode(ToDTO(t)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Debug("Creating transaction")

	var dto TransactionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	t, err := FromDTO(dto)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid date", "date must be in YYYY-MM-DD format")
		return
	}

	created, err := h.service.CreateTransaction(r.Context(), t)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(ToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id := mux.Vars(r)["transactionId"]
	log.Debugf("Updating transaction %s", id)

	var dto TransactionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	t, err := FromDTO(dto)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid date", "date must be in YYYY-MM-DD format")
		return
	}
	t.Id = id

	updated, err := h.service.UpdateTransaction(r.Context(), t)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if err := json.NewEncoder(w).Encode(ToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["transactionId"]
	log.Debugf("Deleting transaction %s", id)

	if err := h.service.DeleteTransaction(r.Context(), id); err != nil {
		w.Header().Set("Content-Type", "application/json")
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrTransactionNotFound):
		rest.WriteError(w, http.StatusNotFound, "Transaction not found", "")
	case errors.Is(err, ErrInvalidTransaction):
		rest.WriteError(w, http.StatusBadRequest, "Invalid transaction", err.Error())
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func parseOptionalDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(DateLayout, value)
}

func FromDTO(dto TransactionDTO) (Transaction, error) {
	date, err := parseOptionalDate(dto.Date)
	if err != nil {
		return Transaction{}, err
	}
	return Transaction{
		Id:               dto.Id,
		Category:         dto.Category,
		Amount:           dto.Amount,
		Type:             Type(dto.Type),
		Method:           Method(dto.Method),
		Date:             date,
		Note:             dto.Note,
		BudgetCategoryId: dto.BudgetCategoryId,
		SavingsPlanId:    dto.SavingsPlanId,
	}, nil
}

func ToDTO(t Transaction) TransactionDTO {
	dto := TransactionDTO{
		Id:               t.Id,
		Category:         t.Category,
		Amount:           t.Amount,
		Type:             string(t.Type),
		Method:           string(t.Method),
		Note:             t.Note,
		BudgetCategoryId: t.BudgetCategoryId,
		SavingsPlanId:    t.SavingsPlanId,
	}
	if !t.Date.IsZero() {
		dto.Date = t.Date.Format(DateLayout)
	}
	if !t.Created.IsZero() {
		created := t.Created
		dto.Created = &created
	}
	return dto
}
