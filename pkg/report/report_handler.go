package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/finmate/finmate/internal/rest"
	"github.com/finmate/finmate/internal/utils"
	"github.com/finmate/finmate/pkg/aggregation"
	"github.com/finmate/finmate/pkg/transaction"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const maxPreviewBody = 1 << 20

type SummaryDTO struct {
	Income           decimal.Decimal `json:"income"`
	Expense          decimal.Decimal `json:"expense"`
	Savings          decimal.Decimal `json:"savings"`
	NetAsset         decimal.Decimal `json:"netAsset"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
	Surplus          decimal.Decimal `json:"surplus"`
	AllocatableFunds decimal.Decimal `json:"allocatableFunds"`
}

type CategoryAmountDTO struct {
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage int             `json:"percentage"`
}

type DailyAmountDTO struct {
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

type MonthAmountDTO struct {
	Month   string          `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Savings decimal.Decimal `json:"savings"`
}

type RecapDTO struct {
	Month             string              `json:"month"`
	Income            decimal.Decimal     `json:"income"`
	Expense           decimal.Decimal     `json:"expense"`
	Savings           decimal.Decimal     `json:"savings"`
	Net               decimal.Decimal     `json:"net"`
	ExpenseByCategory []CategoryAmountDTO `json:"expenseByCategory"`
	ElapsedDays       int                 `json:"elapsedDays"`
	DailyAverage      decimal.Decimal     `json:"dailyAverage"`
}

type DateGroupDTO struct {
	Date         string                       `json:"date"`
	Transactions []transaction.TransactionDTO `json:"transactions"`
}

type PreviewDTO struct {
	TransactionCount int            `json:"transactionCount"`
	Summary          SummaryDTO     `json:"summary"`
	Timeline         []DateGroupDTO `json:"timeline"`
}

type Handler struct {
	service       Service
	recapRenderer RecapRenderer
	clock         utils.Clock
}

func NewHandler(service Service, recapRenderer RecapRenderer, clock utils.Clock) *Handler {
	return &Handler{service: service, recapRenderer: recapRenderer, clock: clock}
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Debug("Getting summary")
	scope, ok := readScope(w, r)
	if !ok {
		return
	}

	summary, err := h.service.GetSummary(r.Context(), scope)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := json.NewEncoder(w).Encode(summaryToDTO(summary)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) GetMonthlyRecap(w http.ResponseWriter, r *http.Request) {
	scope, ok := readScope(w, r)
	if !ok {
		return
	}
	month := utils.Today(h.clock)
	if value := r.URL.Query().Get("month"); value != "" {
		parsed, err := time.Parse("2006-01", value)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			rest.WriteError(w, http.StatusBadRequest, "Invalid month format", "month must be in YYYY-MM format")
			return
		}
		month = parsed
	}

	recap, err := h.service.GetMonthlyRecap(r.Context(), scope, month.Year(), month.Month())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if r.Header.Get("Accept") == "text/csv" {
		csv, err := h.recapRenderer.RenderRecap(recap)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="recap-%04d-%02d.csv"`, recap.Year, int(recap.Month)))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(csv)); err != nil {
			log.Errorf("failed to write csv recap: %v", err)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(recapToDTO(recap)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	scope, ok := readScope(w, r)
	if !ok {
		return
	}
	from, to, ok := readPeriod(w, r)
	if !ok {
		return
	}

	timeline, err := h.service.GetTimeline(r.Context(), scope, from, to)
	if err != nil {
		if errors.Is(err, ErrInvalidPeriod) {
			rest.WriteError(w, http.StatusBadRequest, "Invalid period", "from must not be after to")
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := json.NewEncoder(w).Encode(timelineToDTO(timeline)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) GetDailyExpenses(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	scope, ok := readScope(w, r)
	if !ok {
		return
	}
	from, to, ok := readPeriod(w, r)
	if !ok {
		return
	}

	days, err := h.service.GetDailyExpenses(r.Context(), scope, from, to)
	if err != nil {
		if errors.Is(err, ErrInvalidPeriod) {
			rest.WriteError(w, http.StatusBadRequest, "Invalid period", err.Error())
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	result := make([]DailyAmountDTO, 0, len(days))
	for _, d := range days {
		result = append(result, DailyAmountDTO{Date: d.Date.Format(transaction.DateLayout), Amount: d.Amount})
	}
	if err := json.NewEncoder(w).Encode(result); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) GetMonthlyComparison(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	scope, ok := readScope(w, r)
	if !ok {
		return
	}
	months := DefaultComparisonMonths
	if value := r.URL.Query().Get("months"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid months", "months must be a number")
			return
		}
		months = parsed
	}

	comparison, err := h.service.GetMonthlyComparison(r.Context(), scope, months)
	if err != nil {
		if errors.Is(err, ErrInvalidPeriod) {
			rest.WriteError(w, http.StatusBadRequest, "Invalid months", err.Error())
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	result := make([]MonthAmountDTO, 0, len(comparison))
	for _, m := range comparison {
		result = append(result, MonthAmountDTO{
			Month:   fmt.Sprintf("%04d-%02d", m.Year, int(m.Month)),
			Income:  m.Income,
			Expense: m.Expense,
			Savings: m.Savings,
		})
	}
	if err := json.NewEncoder(w).Encode(result); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPreviewBody))
	if err != nil {
		rest.WriteError(w, http.StatusRequestEntityTooLarge, "Request body too large", err.Error())
		return
	}

	preview := h.service.Preview(body)
	dto := PreviewDTO{
		TransactionCount: preview.TransactionCount,
		Summary:          summaryToDTO(preview.Summary),
		Timeline:         timelineToDTO(preview.Timeline),
	}
	if err := json.NewEncoder(w).Encode(dto); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func readScope(w http.ResponseWriter, r *http.Request) (Scope, bool) {
	scope, err := ParseScope(r.URL.Query().Get("scope"))
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		rest.WriteError(w, http.StatusBadRequest, "Invalid scope", "scope must be personal or family")
		return "", false
	}
	return scope, true
}

func readPeriod(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	from, err := parseOptionalDate(r.URL.Query().Get("from"))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid from date", "from must be in YYYY-MM-DD format")
		return time.Time{}, time.Time{}, false
	}
	to, err := parseOptionalDate(r.URL.Query().Get("to"))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid to date", "to must be in YYYY-MM-DD format")
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func parseOptionalDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(transaction.DateLayout, value)
}

func summaryToDTO(s aggregation.Summary) SummaryDTO {
	return SummaryDTO{
		Income:           s.Income,
		Expense:          s.Expense,
		Savings:          s.Savings,
		NetAsset:         s.NetAsset,
		AvailableBalance: s.AvailableBalance,
		Surplus:          s.Surplus,
		AllocatableFunds: s.AllocatableFunds,
	}
}

func recapToDTO(recap aggregation.Recap) RecapDTO {
	categories := make([]CategoryAmountDTO, 0, len(recap.ExpenseByCategory))
	for _, c := range recap.ExpenseByCategory {
		categories = append(categories, CategoryAmountDTO{Category: c.Category, Amount: c.Amount, Percentage: c.Percentage})
	}
	return RecapDTO{
		Month:             fmt.Sprintf("%04d-%02d", recap.Year, int(recap.Month)),
		Income:            recap.Income,
		Expense:           recap.Expense,
		Savings:           recap.Savings,
		Net:               recap.Net,
		ExpenseByCategory: categories,
		ElapsedDays:       recap.ElapsedDays,
		DailyAverage:      recap.DailyAverage,
	}
}

func timelineToDTO(groups []aggregation.DateGroup) []DateGroupDTO {
	result := make([]DateGroupDTO, 0, len(groups))
	for _, g := range groups {
		transactions := make([]transaction.TransactionDTO, 0, len(g.Transactions))
		for _, t := range g.Transactions {
			transactions = append(transactions, transaction.ToDTO(t))
		}
		result = append(result, DateGroupDTO{Date: g.Date, Transactions: transactions})
	}
	return result
}
