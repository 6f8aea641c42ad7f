package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/finmate/finmate/internal/rest"
	log "github.com/sirupsen/logrus"
)

type UserDTO struct {
	Id    int    `json:"id"`
	Uid   string `json:"uid"`
	Name  string `json:"name"`
	Email string `json:"email"`
	// FamilyId is read only, use the family endpoints to change it.
	FamilyId string `json:"familyId,omitempty"`
}

type FamilyDTO struct {
	Id      string    `json:"id"`
	Name    string    `json:"name"`
	Members []UserDTO `json:"members"`
}

type JoinFamilyDTO struct {
	FamilyId string `json:"familyId"`
}

type Handler struct {
	userService Service
}

func NewHandler(userService Service) *Handler {
	return &Handler{
		userService: userService,
	}
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Debug("Creating user")

	var user UserDTO
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", "")
		return
	}
	log.Tracef("Creating new user: %+v", user)

	createdUser, err := h.userService.CreateUser(r.Context(), dtoToUser(user))
	if err != nil {
		if errors.Is(err, ErrUserDataInvalid) {
			rest.WriteError(w, http.StatusBadRequest, "Invalid user data", err.Error())
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	log.Tracef("Created user: %+v", createdUser)

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(userToDTO(createdUser)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Trace("Getting current user")

	currentUser, err := h.userService.GetCurrentUser(r.Context())
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(userToDTO(currentUser)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Trace("Updating user")

	var user UserDTO
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", "")
		return
	}

	updatedUser, err := h.userService.UpdateUser(r.Context(), dtoToUser(user))
	if err != nil {
		if errors.Is(err, ErrUserDataInvalid) {
			rest.WriteError(w, http.StatusBadRequest, "Invalid user data", err.Error())
			return
		}
		if errors.Is(err, ErrUserNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(userToDTO(updatedUser)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func dtoToUser(dto UserDTO) User {
	return User{
		Id:    dto.Id,
		Uid:   dto.Uid,
		Name:  dto.Name,
		Email: dto.Email,
	}
}

func userToDTO(user User) UserDTO {
	return UserDTO{
		Id:       user.Id,
		Uid:      user.Uid,
		Name:     user.Name,
		Email:    user.Email,
		FamilyId: user.FamilyId,
	}
}

func familyToDTO(family Family) FamilyDTO {
	members := make([]UserDTO, 0, len(family.Members))
	for _, m := range family.Members {
		members = append(members, userToDTO(m))
	}
	return FamilyDTO{Id: family.Id, Name: family.Name, Members: members}
}

func (h *Handler) CreateFamily(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto FamilyDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", "")
		return
	}

	family, err := h.userService.CreateFamily(r.Context(), dto.Name)
	if err != nil {
		h.writeFamilyError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(familyToDTO(family)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) GetFamily(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	family, err := h.userService.GetFamily(r.Context())
	if err != nil {
		h.writeFamilyError(w, err)
		return
	}

	if err := json.NewEncoder(w).Encode(familyToDTO(family)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) JoinFamily(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto JoinFamilyDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", "")
		return
	}

	family, err := h.userService.JoinFamily(r.Context(), dto.FamilyId)
	if err != nil {
		h.writeFamilyError(w, err)
		return
	}

	if err := json.NewEncoder(w).Encode(familyToDTO(family)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) LeaveFamily(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	updated, err := h.userService.LeaveFamily(r.Context())
	if err != nil {
		h.writeFamilyError(w, err)
		return
	}

	if err := json.NewEncoder(w).Encode(userToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) writeFamilyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidFamily):
		rest.WriteError(w, http.StatusBadRequest, "Invalid family data", err.Error())
	case errors.Is(err, ErrFamilyNotFound):
		rest.WriteError(w, http.StatusNotFound, "Family not found", err.Error())
	case errors.Is(err, ErrNoFamily):
		rest.WriteError(w, http.StatusConflict, "Not a family member", err.Error())
	default:
		log.Errorf("family request failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
