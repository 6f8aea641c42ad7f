package savings

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/finmate/finmate/internal/rest"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type PlanDTO struct {
	ID     int             `json:"id"`
	Name   string          `json:"name"`
	Target decimal.Decimal `json:"target"`
	Icon   string          `json:"icon,omitempty"`
}

type PlanProgressDTO struct {
	PlanDTO
	Collected  decimal.Decimal `json:"collected"`
	Remaining  decimal.Decimal `json:"remaining"`
	Percentage int             `json:"percentage"`
}

type ProgressDTO struct {
	TotalTarget    decimal.Decimal   `json:"totalTarget"`
	TotalCollected decimal.Decimal   `json:"totalCollected"`
	Remaining      decimal.Decimal   `json:"remaining"`
	Percentage     int               `json:"percentage"`
	Plans          []PlanProgressDTO `json:"plans"`
}

type SurplusDTO struct {
	AllocatableFunds decimal.Decimal `json:"allocatableFunds"`
}

type AllocationDTO struct {
	PlanId int             `json:"planId"`
	Amount decimal.Decimal `json:"amount"`
}

type AllocationRequestDTO struct {
	Allocations []AllocationDTO `json:"allocations"`
}

type ContributionDTO struct {
	PlanId        int             `json:"planId"`
	PlanName      string          `json:"planName"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionId string          `json:"transactionId"`
}

type AllocationResultDTO struct {
	Total          decimal.Decimal   `json:"total"`
	Contributions  []ContributionDTO `json:"contributions"`
	RemainingFunds decimal.Decimal   `json:"remainingFunds"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	plans, err := h.service.ListPlans(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dtos := make([]PlanDTO, 0, len(plans))
	for _, p := range plans {
		dtos = append(dtos, planToDTO(p))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, ok := planId(w, r)
	if !ok {
		return
	}

	plan, err := h.service.GetPlan(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := json.NewEncoder(w).Encode(planToDTO(plan)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Debug("Creating savings plan")

	var dto PlanDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}

	created, err := h.service.CreatePlan(r.Context(), dtoToPlan(dto))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(planToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, ok := planId(w, r)
	if !ok {
		return
	}
	log.Debugf("Updating savings plan %d", id)

	var dto PlanDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	plan := dtoToPlan(dto)
	plan.ID = id

	updated, err := h.service.UpdatePlan(r.Context(), plan)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := json.NewEncoder(w).Encode(planToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, ok := planId(w, r)
	if !ok {
		return
	}
	log.Debugf("Deleting savings plan %d", id)

	if err := h.service.DeletePlan(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	progress, err := h.service.GetProgress(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	plans := make([]PlanProgressDTO, 0, len(progress.Plans))
	for _, p := range progress.Plans {
		plans = append(plans, PlanProgressDTO{
			PlanDTO:    planToDTO(p.Plan),
			Collected:  p.Collected,
			Remaining:  p.Remaining,
			Percentage: p.Percentage,
		})
	}
	dto := ProgressDTO{
		TotalTarget:    progress.TotalTarget,
		TotalCollected: progress.TotalCollected,
		Remaining:      progress.Remaining,
		Percentage:     progress.Percentage,
		Plans:          plans,
	}
	if err := json.NewEncoder(w).Encode(dto); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) GetSurplus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	funds, err := h.service.GetAllocatableFunds(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := json.NewEncoder(w).Encode(SurplusDTO{AllocatableFunds: funds}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) Allocate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Debug("Allocating surplus to savings plans")

	var request AllocationRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	allocations := make([]Allocation, 0, len(request.Allocations))
	for _, a := range request.Allocations {
		allocations = append(allocations, Allocation{PlanId: a.PlanId, Amount: a.Amount})
	}

	result, err := h.service.Allocate(r.Context(), allocations)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	contributions := make([]ContributionDTO, 0, len(result.Contributions))
	for _, c := range result.Contributions {
		contributions = append(contributions, ContributionDTO{
			PlanId:        c.Plan.ID,
			PlanName:      c.Plan.Name,
			Amount:        c.Amount,
			TransactionId: c.TransactionId,
		})
	}
	w.WriteHeader(http.StatusCreated)
	err = json.NewEncoder(w).Encode(AllocationResultDTO{
		Total:          result.Total,
		Contributions:  contributions,
		RemainingFunds: result.RemainingFunds,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func planId(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["planId"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid plan id", "")
		return 0, false
	}
	return id, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrPlanNotFound):
		rest.WriteError(w, http.StatusNotFound, "Savings plan not found", err.Error())
	case errors.Is(err, ErrInvalidPlan), errors.Is(err, ErrInvalidAllocation), errors.Is(err, ErrNothingToAllocate):
		rest.WriteError(w, http.StatusBadRequest, "Invalid request", err.Error())
	case errors.Is(err, ErrInsufficientSurplus):
		rest.WriteError(w, http.StatusUnprocessableEntity, "Insufficient surplus", err.Error())
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func planToDTO(p Plan) PlanDTO {
	return PlanDTO{ID: p.ID, Name: p.Name, Target: p.Target, Icon: p.Icon}
}

func dtoToPlan(dto PlanDTO) Plan {
	return Plan{ID: dto.ID, Name: dto.Name, Target: dto.Target, Icon: dto.Icon}
}
