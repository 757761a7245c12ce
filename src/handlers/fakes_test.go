package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/username/tradejournal/src/models"
	"github.com/username/tradejournal/src/services"
)

const testCookieName = "tj_session"

type fakeSessions struct {
	mu        sync.Mutex
	sessions  map[string]*services.Principal
	loggedOut []string
	loginErr  error
}

func newFakeSessions(ps ...*services.Principal) *fakeSessions {
	f := &fakeSessions{sessions: make(map[string]*services.Principal)}
	for _, p := range ps {
		f.sessions[p.SessionID] = p
	}
	return f
}

func (f *fakeSessions) Login(_ context.Context, username, password, _, _ string) (*services.Principal, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	p := &services.Principal{SessionID: "new-session", UserID: 1, Username: username, Role: models.RoleUser, ExpiresAt: time.Now().Add(time.Hour)}
	f.mu.Lock()
	f.sessions[p.SessionID] = p
	f.mu.Unlock()
	return p, nil
}

func (f *fakeSessions) Lookup(_ context.Context, id string) (*services.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.sessions[id]
	if !ok {
		return nil, services.ErrSessionNotFound
	}
	return p, nil
}

func (f *fakeSessions) Logout(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, id)
	f.loggedOut = append(f.loggedOut, id)
	return nil
}

func (f *fakeSessions) PurgeExpired() (int64, error) { return 0, nil }

type fakeDashboards struct {
	dashboard *models.Dashboard
	err       error
}

func (f *fakeDashboards) GetDashboard(context.Context, *services.Principal) (*models.Dashboard, error) {
	return f.dashboard, f.err
}

func (f *fakeDashboards) InvalidateUser(int64) {}

type fakeTrades struct {
	listState  *models.TradesViewState
	listErr    error
	created    models.TradeInput
	createErr  error
	deletedID  int64
	imported   string
	importSize int64
	saved      models.TradesViewState
	exported   models.TradesViewState
}

func (f *fakeTrades) ListPage(_ context.Context, _ *services.Principal, state *models.TradesViewState) (*models.TradePage, error) {
	f.listState = state
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &models.TradePage{Items: []models.Trade{}, Pairs: []string{}, RowsPerPage: models.DefaultRowsPerPage}, nil
}

func (f *fakeTrades) Create(_ context.Context, _ *services.Principal, in models.TradeInput) (*models.Trade, error) {
	f.created = in
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.Trade{ID: 1, Pair: in.Pair}, nil
}

func (f *fakeTrades) Update(_ context.Context, _ *services.Principal, id int64, in models.TradeInput) (*models.Trade, error) {
	return &models.Trade{ID: id, Pair: in.Pair}, nil
}

func (f *fakeTrades) Delete(_ context.Context, _ *services.Principal, id int64) error {
	f.deletedID = id
	return nil
}

func (f *fakeTrades) Import(_ context.Context, _ *services.Principal, filename string, size int64, file io.ReadSeeker) (*models.ImportResult, error) {
	f.imported = filename
	f.importSize = size
	return &models.ImportResult{Imported: 2}, nil
}

func (f *fakeTrades) ExportCSV(_ context.Context, _ *services.Principal, state models.TradesViewState, w io.Writer) error {
	f.exported = state
	_, err := io.WriteString(w, "id,date\n1,2024-01-01\n")
	return err
}

func (f *fakeTrades) GetViewState(*services.Principal) (models.TradesViewState, error) {
	return models.DefaultTradesViewState(), nil
}

func (f *fakeTrades) SaveViewState(_ *services.Principal, state models.TradesViewState) (models.TradesViewState, error) {
	f.saved = state
	return state, nil
}

func traderPrincipal() *services.Principal {
	return &services.Principal{SessionID: "sess-trader", UserID: 7, Username: "trader", Role: models.RoleUser, Token: "tok", ExpiresAt: time.Now().Add(time.Hour)}
}

func adminPrincipal() *services.Principal {
	return &services.Principal{SessionID: "sess-admin", UserID: 1, Username: "boss", Role: models.RoleAdmin, Token: "tok", ExpiresAt: time.Now().Add(time.Hour)}
}

func newTestAuthHandler(sessions services.SessionService) *AuthHandler {
	return NewAuthHandler(sessions, CookieConfig{Name: testCookieName})
}

// authedRequest builds a request already past RequireSession.
func authedRequest(method, target string, body io.Reader, p *services.Principal) *http.Request {
	req := httptest.NewRequest(method, target, body)
	return req.WithContext(WithPrincipal(req.Context(), p))
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}
