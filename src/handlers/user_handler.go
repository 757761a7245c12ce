package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/username/tradejournal/src/models"
	"github.com/username/tradejournal/src/services"
	"github.com/username/tradejournal/src/utils"
)

// UserHandler serves the admin user-management screen.
type UserHandler struct {
	users services.UserService
}

func NewUserHandler(users services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOrReject(w, r)
	if !ok {
		return
	}
	users, err := h.users.List(r.Context(), p)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, users)
}

func (h *UserHandler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOrReject(w, r)
	if !ok {
		return
	}
	var in models.UserCreate
	if !decodeJSON(w, r, &in) {
		return
	}
	user, err := h.users.Create(r.Context(), p, in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.SendJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOrReject(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		utils.SendJSONErrorBody(w, utils.ErrorBody{Error: "Invalid user ID", Code: "validation"}, http.StatusBadRequest)
		return
	}
	var in models.UserUpdate
	if !decodeJSON(w, r, &in) {
		return
	}
	user, err := h.users.Update(r.Context(), p, id, in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, user)
}
