package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/username/tradejournal/src/logger"
	"github.com/username/tradejournal/src/services"
	"github.com/username/tradejournal/src/utils"
)

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

type AuthHandler struct {
	sessions services.SessionService
	cookies  CookieConfig
}

func NewAuthHandler(sessions services.SessionService, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{sessions: sessions, cookies: cookies}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, p *services.Principal) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookies.Name,
		Value:    p.SessionID,
		Path:     "/",
		Expires:  p.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookies.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())

	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		utils.SendJSONErrorBody(w, utils.ErrorBody{
			Error:  "Username and password are required",
			Code:   "validation",
			Fields: map[string]string{"username": "required", "password": "required"},
		}, http.StatusBadRequest)
		return
	}

	p, err := h.sessions.Login(r.Context(), req.Username, req.Password, r.UserAgent(), clientIP(r))
	if err != nil {
		ctxLogger.Warn("Login failed", "username", req.Username, "error", err)
		respondError(w, r, err)
		return
	}

	h.setCookie(w, p)
	utils.SendJSON(w, http.StatusOK, sessionResponse{Username: p.Username, Role: p.Role, ExpiresAt: p.ExpiresAt})
}

func (h *AuthHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOrReject(w, r)
	if !ok {
		return
	}
	if err := h.sessions.Logout(r.Context(), p.SessionID); err != nil {
		respondError(w, r, err)
		return
	}
	h.clearCookie(w)
	utils.SendJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// SessionHandler reports who is signed in, without calling the remote API.
func (h *AuthHandler) SessionHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOrReject(w, r)
	if !ok {
		return
	}
	utils.SendJSON(w, http.StatusOK, sessionResponse{Username: p.Username, Role: p.Role, ExpiresAt: p.ExpiresAt})
}
