package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issueCSRF(t *testing.T, c *CSRF) string {
	t.Helper()
	rr := httptest.NewRecorder()
	c.GetCSRFToken(rr, httptest.NewRequest(http.MethodGet, "/api/auth/csrf", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	cookie := findCookie(rr.Result().Cookies(), CSRFCookieName)
	require.NotNil(t, cookie)
	assert.Equal(t, body["csrfToken"], cookie.Value)
	assert.True(t, cookie.HttpOnly)
	return body["csrfToken"]
}

func TestCSRFMiddleware(t *testing.T) {
	c := NewCSRF([]byte("0123456789abcdef0123456789abcdef"), false)
	token := issueCSRF(t, c)
	next := c.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(method, header, cookie string) int {
		req := httptest.NewRequest(method, "/api/trades", nil)
		if header != "" {
			req.Header.Set(CSRFHeaderName, header)
		}
		if cookie != "" {
			req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: cookie})
		}
		rr := httptest.NewRecorder()
		next.ServeHTTP(rr, req)
		return rr.Code
	}

	forged := NewCSRF([]byte("another-key-another-key-another!!"), false)
	forgedToken := issueCSRF(t, forged)

	assert.Equal(t, http.StatusNoContent, send(http.MethodGet, "", ""))
	assert.Equal(t, http.StatusNoContent, send(http.MethodPost, token, token))
	assert.Equal(t, http.StatusForbidden, send(http.MethodPost, "", token))
	assert.Equal(t, http.StatusForbidden, send(http.MethodPost, token, ""))
	assert.Equal(t, http.StatusForbidden, send(http.MethodDelete, token, issueCSRF(t, c)))
	assert.Equal(t, http.StatusForbidden, send(http.MethodPut, forgedToken, forgedToken))
	assert.Equal(t, http.StatusForbidden, send(http.MethodPost, "garbage", "garbage"))
}
