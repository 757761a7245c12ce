package services

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/username/tradejournal/src/models"
)

var (
	ErrSessionNotFound = errors.New("session not found or expired")
	ErrFileTooLarge    = errors.New("file exceeds the maximum upload size")
)

// Principal is the signed-in user behind a request. Token is the decrypted
// remote access token and never leaves the process.
type Principal struct {
	SessionID string
	UserID    int64
	Username  string
	Role      string
	Token     string
	ExpiresAt time.Time
}

func (p *Principal) IsAdmin() bool { return p != nil && p.Role == models.RoleAdmin }

// SessionService owns the dashboard session lifecycle.
type SessionService interface {
	Login(ctx context.Context, username, password, userAgent, clientIP string) (*Principal, error)
	Lookup(ctx context.Context, sessionID string) (*Principal, error)
	Logout(ctx context.Context, sessionID string) error
	PurgeExpired() (int64, error)
}

// DashboardService builds the overview screen.
type DashboardService interface {
	GetDashboard(ctx context.Context, p *Principal) (*models.Dashboard, error)
	InvalidateUser(userID int64)
}

// TradeService covers the trades screen: list, mutations, import and export.
type TradeService interface {
	ListPage(ctx context.Context, p *Principal, state *models.TradesViewState) (*models.TradePage, error)
	Create(ctx context.Context, p *Principal, in models.TradeInput) (*models.Trade, error)
	Update(ctx context.Context, p *Principal, id int64, in models.TradeInput) (*models.Trade, error)
	Delete(ctx context.Context, p *Principal, id int64) error
	Import(ctx context.Context, p *Principal, filename string, size int64, file io.ReadSeeker) (*models.ImportResult, error)
	ExportCSV(ctx context.Context, p *Principal, state models.TradesViewState, w io.Writer) error
	GetViewState(p *Principal) (models.TradesViewState, error)
	SaveViewState(p *Principal, state models.TradesViewState) (models.TradesViewState, error)
}

// UserService covers admin user management and the caller's own profile.
type UserService interface {
	Me(ctx context.Context, p *Principal) (*models.User, error)
	List(ctx context.Context, p *Principal) ([]models.User, error)
	Create(ctx context.Context, p *Principal, in models.UserCreate) (*models.User, error)
	Update(ctx context.Context, p *Principal, id int64, in models.UserUpdate) (*models.User, error)
	UpdateProfile(ctx context.Context, p *Principal, in models.UserUpdate) (*models.User, error)
	ChangePassword(ctx context.Context, p *Principal, in models.PasswordChange) error
}

type AssistantService interface {
	Ask(ctx context.Context, p *Principal, question string) (string, error)
}
