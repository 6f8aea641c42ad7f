package budget

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

type CategoryDTO struct {
	ID       int             `json:"id"`
	Name     string          `json:"name"`
	Total    decimal.Decimal `json:"total"`
	Color    string          `json:"color,omitempty"`
	Position int             `json:"position"`
}

type CategoryUsageDTO struct {
	CategoryDTO
	Used       decimal.Decimal `json:"used"`
	Remaining  decimal.Decimal `json:"remaining"`
	Percentage int             `json:"percentage"`
}

type UsageDTO struct {
	TotalBudget decimal.Decimal    `json:"totalBudget"`
	Used        decimal.Decimal    `json:"used"`
	Remaining   decimal.Decimal    `json:"remaining"`
	Percentage  int                `json:"percentage"`
	Categories  []CategoryUsageDTO `json:"categories"`
}

type BudgetHandler struct {
	budgetService BudgetService
}

func NewBudgetHandler(budgetService BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetService}
}

func (handler *BudgetHandler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating budget category")
	w.Header().Set("Content-Type", "application/json")

	var dto CategoryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}

	created, err := handler.budgetService.CreateCategory(r.Context(), DTOToCategory(dto))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(CategoryToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *BudgetHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	categories, err := handler.budgetService.ListCategories(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	dtos := make([]CategoryDTO, 0, len(categories))
	for _, c := range categories {
		dtos = append(dtos, CategoryToDTO(c))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *BudgetHandler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, ok := categoryId(w, r)
	if !ok {
		return
	}

	category, err := handler.budgetService.GetCategory(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := json.NewEncoder(w).Encode(CategoryToDTO(category)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *BudgetHandler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, ok := categoryId(w, r)
	if !ok {
		return
	}
	log.Debugf("Updating budget category %d", id)

	var dto CategoryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	category := DTOToCategory(dto)
	category.ID = id

	updated, err := handler.budgetService.UpdateCategory(r.Context(), category)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := json.NewEncoder(w).Encode(CategoryToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *BudgetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, ok := categoryId(w, r)
	if !ok {
		return
	}
	log.Debugf("Deleting budget category %d", id)

	if err := handler.budgetService.DeleteCategory(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (handler *BudgetHandler) SetPosition(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, ok := categoryId(w, r)
	if !ok {
		return
	}

	var setPositionDTO struct {
		PrecedingId int `json:"precedingId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&setPositionDTO); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}

	if err := handler.budgetService.MoveAfter(r.Context(), id, setPositionDTO.PrecedingId); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (handler *BudgetHandler) GetUsage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Debug("Getting budget usage")

	usage, err := handler.budgetService.GetUsage(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := json.NewEncoder(w).Encode(UsageToDTO(usage)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func categoryId(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["categoryId"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid category id", "")
		return 0, false
	}
	return id, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrCategoryNotFound):
		rest.WriteError(w, http.StatusNotFound, "Budget category not found", "")
	case errors.Is(err, ErrDuplicateCategory):
		rest.WriteError(w, http.StatusConflict, "Budget category already exists", err.Error())
	case errors.Is(err, ErrInvalidCategory):
		rest.WriteError(w, http.StatusBadRequest, "Invalid budget category", err.Error())
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func CategoryToDTO(c Category) CategoryDTO {
	return CategoryDTO{
		ID:       c.ID,
		Name:     c.Name,
		Total:    c.Total,
		Color:    c.Color,
		Position: c.Position,
	}
}

func DTOToCategory(dto CategoryDTO) Category {
	return Category{
		ID:    dto.ID,
		Name:  dto.Name,
		Total: dto.Total,
		Color: dto.Color,
	}
}

func UsageToDTO(usage Usage) UsageDTO {
	categories := make([]CategoryUsageDTO, 0, len(usage.Categories))
	for _, c := range usage.Categories {
		categories = append(categories, CategoryUsageDTO{
			CategoryDTO: CategoryToDTO(c.Category),
			Used:        c.Used,
			Remaining:   c.Remaining,
			Percentage:  c.Percentage,
		})
	}
	return UsageDTO{
		TotalBudget: usage.TotalBudget,
		Used:        usage.Used,
		Remaining:   usage.Remaining,
		Percentage:  usage.Percentage,
		Categories:  categories,
	}
}
