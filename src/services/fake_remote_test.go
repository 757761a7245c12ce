package services

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/require"

	"github.com/username/tradejournal/src/apiclient"
	"github.com/username/tradejournal/src/database"
	"github.com/username/tradejournal/src/models"
	"github.com/username/tradejournal/src/security"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// fakeRemote is an in-memory stand-in for the remote Trading API.
type fakeRemote struct {
	mu         sync.Mutex
	token      string
	user       models.User
	trades     []models.Trade
	report     *models.ReportSummary
	nextID     int64
	tradeCalls atomic.Int32
	lastImport string

	// tradesGate, when set, holds each trade list request until it is closed.
	tradesGate    chan struct{}
	tradesEntered chan struct{}
}

func newFakeRemote(t *testing.T) *fakeRemote {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "trader",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("remote-key"))
	require.NoError(t, err)

	capital := 1000.0
	return &fakeRemote{
		token:  raw,
		user:   models.User{ID: 7, Username: "trader", Email: "t@example.com", Role: models.RoleUser, Valid: true, InitialCapital: &capital},
		nextID: 100,
	}
}

func (f *fakeRemote) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeRemote) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/login" {
		_ = r.ParseForm()
		if r.PostForm.Get("username") != "trader" || r.PostForm.Get("password") != "s3cret" {
			f.writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect username or password"})
			return
		}
		f.writeJSON(w, http.StatusOK, map[string]string{"access_token": f.token, "token_type": "bearer", "role": f.user.Role})
		return
	}
	if r.Header.Get("Authorization") != "Bearer "+f.token {
		f.writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/trades/" {
		f.mu.Lock()
		gate, entered := f.tradesGate, f.tradesEntered
		f.mu.Unlock()
		if gate != nil {
			entered <- struct{}{}
			<-gate
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/users/me":
		f.writeJSON(w, http.StatusOK, f.user)
	case r.Method == http.MethodGet && r.URL.Path == "/api/trades/":
		f.tradeCalls.Add(1)
		f.writeJSON(w, http.StatusOK, f.trades)
	case r.Method == http.MethodGet && r.URL.Path == "/api/report/":
		if f.report == nil {
			f.writeJSON(w, http.StatusNotFound, map[string]string{"detail": "No report"})
			return
		}
		f.writeJSON(w, http.StatusOK, f.report)
	case r.Method == http.MethodPost && r.URL.Path == "/trades/":
		var in models.TradeInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		f.nextID++
		t := models.Trade{ID: f.nextID, Date: in.Date, Pair: in.Pair, System: in.System, Action: in.Action,
			Cancelled: in.Cancelled, ProfitOrLoss: models.Amount(in.ProfitOrLoss), RiskPercent: in.RiskPercent}
		f.trades = append(f.trades, t)
		f.writeJSON(w, http.StatusOK, t)
	case strings.HasPrefix(r.URL.Path, "/api/trades/") && r.URL.Path != "/api/trades/import":
		id, _ := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/api/trades/"), 10, 64)
		for i, t := range f.trades {
			if t.ID != id {
				continue
			}
			if r.Method == http.MethodDelete {
				f.trades = append(f.trades[:i], f.trades[i+1:]...)
				w.WriteHeader(http.StatusNoContent)
				return
			}
			var in models.TradeInput
			_ = json.NewDecoder(r.Body).Decode(&in)
			f.trades[i].ProfitOrLoss = models.Amount(in.ProfitOrLoss)
			f.trades[i].Pair = in.Pair
			f.writeJSON(w, http.StatusOK, f.trades[i])
			return
		}
		f.writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Trade not found"})
	case r.URL.Path == "/api/trades/import":
		file, hdr, err := r.FormFile("file")
		if err != nil {
			f.writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "file required"})
			return
		}
		defer file.Close()
		_, _ = io.Copy(io.Discard, file)
		f.lastImport = hdr.Filename
		f.writeJSON(w, http.StatusOK, models.ImportResult{Imported: 2, Issues: []models.ImportIssue{{Row: 3, MissingFields: []string{"pair"}}}})
	case r.URL.Path == "/api/ai/ask":
		f.writeJSON(w, http.StatusOK, map[string]string{"answer": "Focus on " + r.URL.Query().Get("question")})
	case r.Method == http.MethodGet && r.URL.Path == "/users/":
		if f.user.Role != models.RoleAdmin {
			f.writeJSON(w, http.StatusForbidden, map[string]string{"detail": "Not enough permissions"})
			return
		}
		f.writeJSON(w, http.StatusOK, []models.User{f.user})
	case r.Method == http.MethodPut && r.URL.Path == fmt.Sprintf("/api/users/%d", f.user.ID):
		var in models.UserUpdate
		_ = json.NewDecoder(r.Body).Decode(&in)
		f.user.Username, f.user.Email = in.Username, in.Email
		if in.InitialCapital != nil {
			f.user.InitialCapital = in.InitialCapital
		}
		f.writeJSON(w, http.StatusOK, f.user)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeRemote) setReport(r *models.ReportSummary) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.report = r
}

func (f *fakeRemote) importedFilename() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastImport
}

// holdTradeList makes trade list requests wait; each one signals entered on
// arrival and proceeds once release is closed.
func (f *fakeRemote) holdTradeList() (entered <-chan struct{}, release chan<- struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tradesEntered = make(chan struct{}, 4)
	f.tradesGate = make(chan struct{})
	return f.tradesEntered, f.tradesGate
}

func (f *fakeRemote) setTrades(trades ...models.Trade) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trades = trades
}

type testEnv struct {
	remote     *fakeRemote
	db         *sql.DB
	api        *apiclient.Client
	sessions   SessionService
	dashboards DashboardService
	trades     TradeService
	users      UserService
	assistant  AssistantService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	remote := newFakeRemote(t)
	srv := httptest.NewServer(remote)
	t.Cleanup(srv.Close)

	api, err := apiclient.New(apiclient.Config{BaseURL: srv.URL, Timeout: 5 * time.Second, RateLimit: 1000, Burst: 100})
	require.NoError(t, err)

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })

	sealer, err := security.NewTokenSealer(testSecret)
	require.NoError(t, err)

	dashboards := NewDashboardService(api, cache.New(time.Minute, time.Minute), time.Minute)
	return &testEnv{
		remote:     remote,
		db:         db,
		api:        api,
		sessions:   NewSessionService(db, api, sealer, cache.New(SessionCacheTTL, SessionCacheCleanup), 30*time.Minute),
		dashboards: dashboards,
		trades:     NewTradeService(db, api, dashboards, 1024),
		users:      NewUserService(api, dashboards),
		assistant:  NewAssistantService(api),
	}
}

func (e *testEnv) principal() *Principal {
	return &Principal{SessionID: "test", UserID: e.remote.user.ID, Username: "trader", Role: e.remote.user.Role, Token: e.remote.token, ExpiresAt: time.Now().Add(time.Hour)}
}
