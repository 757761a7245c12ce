package handlers

import (
	"net/http"

	"github.com/username/tradejournal/src/models"
	"github.com/username/tradejournal/src/services"
	"github.com/username/tradejournal/src/utils"
)

// AccountHandler serves the signed-in user's own profile.
type AccountHandler struct {
	users services.UserService
}

func NewAccountHandler(users services.UserService) *AccountHandler {
	return &AccountHandler{users: users}
}

func (h *AccountHandler) HandleGetMe(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOrReject(w, r)
	if !ok {
		return
	}
	user, err := h.users.Me(r.Context(), p)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, user)
}

func (h *AccountHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOrReject(w, r)
	if !ok {
		return
	}
	var in models.UserUpdate
	if !decodeJSON(w, r, &in) {
		return
	}
	user, err := h.users.UpdateProfile(r.Context(), p, in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, user)
}

func (h *AccountHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOrReject(w, r)
	if !ok {
		return
	}
	var in models.PasswordChange
	if !decodeJSON(w, r, &in) {
		return
	}
	if err := h.users.ChangePassword(r.Context(), p, in); err != nil {
		respondError(w, r, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
}
