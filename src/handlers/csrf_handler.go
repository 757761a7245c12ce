package handlers

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/username/tradejournal/src/logger"
	"github.com/username/tradejournal/src/utils"
)

const (
	CSRFCookieName = "tj_csrf"
	CSRFHeaderName = "X-CSRF-Token"
	csrfNonceSize  = 32
)

// CSRF issues and checks double-submit tokens. Tokens are a random nonce
// followed by its HMAC under the configured key, so a cookie planted by
// another origin without the key is rejected.
type CSRF struct {
	key    []byte
	secure bool
}

func NewCSRF(key []byte, secureCookies bool) *CSRF {
	return &CSRF{key: key, secure: secureCookies}
}

func (c *CSRF) mac(nonce []byte) []byte {
	m := hmac.New(sha256.New, c.key)
	m.Write(nonce)
	return m.Sum(nil)
}

func (c *CSRF) newToken() (string, error) {
	nonce := make([]byte, csrfNonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(append(nonce, c.mac(nonce)...)), nil
}

func (c *CSRF) valid(token string) bool {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || len(raw) != csrfNonceSize+sha256.Size {
		return false
	}
	return hmac.Equal(raw[csrfNonceSize:], c.mac(raw[:csrfNonceSize]))
}

func (c *CSRF) GetCSRFToken(w http.ResponseWriter, r *http.Request) {
	token, err := c.newToken()
	if err != nil {
		logger.FromContext(r.Context()).Error("Error generating CSRF token", "error", err)
		utils.SendJSONError(w, "Failed to generate CSRF token", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		HttpOnly: true,
		Secure:   c.secure || r.TLS != nil,
		MaxAge:   3600,
	})

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(CSRFHeaderName, token)
	json.NewEncoder(w).Encode(map[string]string{"csrfToken": token})
}

// Middleware rejects state-changing requests whose header token does not
// match the cookie or was not issued with this key.
func (c *CSRF) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		headerToken := r.Header.Get(CSRFHeaderName)
		cookie, errCookie := r.Cookie(CSRFCookieName)
		if headerToken != "" && errCookie == nil && hmac.Equal([]byte(headerToken), []byte(cookie.Value)) && c.valid(headerToken) {
			next.ServeHTTP(w, r)
			return
		}

		logger.FromContext(r.Context()).Warn("CSRF validation failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Bool("headerTokenExists", headerToken != ""),
			slog.Bool("cookieExists", errCookie == nil),
			slog.String("origin", r.Header.Get("Origin")),
		)
		utils.SendJSONErrorBody(w, utils.ErrorBody{Error: "CSRF token validation failed", Code: "csrf"}, http.StatusForbidden)
	})
}
