package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/username/tradejournal/src/analytics"
	"github.com/username/tradejournal/src/apiclient"
	"github.com/username/tradejournal/src/export"
	"github.com/username/tradejournal/src/logger"
	"github.com/username/tradejournal/src/model"
	"github.com/username/tradejournal/src/models"
	"github.com/username/tradejournal/src/security/validation"
)

type tradeServiceImpl struct {
	db            *sql.DB
	api           *apiclient.Client
	dashboards    DashboardService
	maxUploadSize int64
}

func NewTradeService(db *sql.DB, api *apiclient.Client, dashboards DashboardService, maxUploadSize int64) TradeService {
	return &tradeServiceImpl{db: db, api: api, dashboards: dashboards, maxUploadSize: maxUploadSize}
}

// ListPage pages the user's trades. A nil state means "as the user left it":
// the saved view state is used. A given state is normalized and saved.
func (s *tradeServiceImpl) ListPage(ctx context.Context, p *Principal, state *models.TradesViewState) (*models.TradePage, error) {
	var applied models.TradesViewState
	if state == nil {
		saved, err := s.GetViewState(p)
		if err != nil {
			return nil, err
		}
		applied = saved
	} else {
		saved, err := s.SaveViewState(p, *state)
		if err != nil {
			return nil, err
		}
		applied = saved
	}

	trades, err := s.api.ListTrades(ctx, p.Token)
	if err != nil {
		return nil, err
	}
	page := analytics.Paginate(trades, applied)
	return &page, nil
}

func (s *tradeServiceImpl) Create(ctx context.Context, p *Principal, in models.TradeInput) (*models.Trade, error) {
	if err := validation.ValidateTrade(&in); err != nil {
		return nil, err
	}
	t, err := s.api.CreateTrade(ctx, p.Token, in)
	if err != nil {
		return nil, err
	}
	s.dashboards.InvalidateUser(p.UserID)
	logger.FromContext(ctx).Info("Trade created", "userID", p.UserID, "tradeID", t.ID)
	return t, nil
}

func (s *tradeServiceImpl) Update(ctx context.Context, p *Principal, id int64, in models.TradeInput) (*models.Trade, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid trade id %d", validation.ErrValidationFailed, id)
	}
	if err := validation.ValidateTrade(&in); err != nil {
		return nil, err
	}
	t, err := s.api.UpdateTrade(ctx, p.Token, id, in)
	if err != nil {
		return nil, err
	}
	s.dashboards.InvalidateUser(p.UserID)
	logger.FromContext(ctx).Info("Trade updated", "userID", p.UserID, "tradeID", id)
	return t, nil
}

func (s *tradeServiceImpl) Delete(ctx context.Context, p *Principal, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid trade id %d", validation.ErrValidationFailed, id)
	}
	if err := s.api.DeleteTrade(ctx, p.Token, id); err != nil {
		return err
	}
	s.dashboards.InvalidateUser(p.UserID)
	logger.FromContext(ctx).Info("Trade deleted", "userID", p.UserID, "tradeID", id)
	return nil
}

// Import checks the upload and hands it to the remote importer unparsed.
func (s *tradeServiceImpl) Import(ctx context.Context, p *Principal, filename string, size int64, file io.ReadSeeker) (*models.ImportResult, error) {
	log := logger.FromContext(ctx)
	if size > s.maxUploadSize {
		log.Warn("Import rejected: file too large", "size", size, "limit", s.maxUploadSize)
		return nil, ErrFileTooLarge
	}
	kind, err := validation.ValidateImportFile(filename, file)
	if err != nil {
		return nil, err
	}

	res, err := s.api.ImportTrades(ctx, p.Token, filename, validation.ImportContentType(kind), file)
	if err != nil {
		return nil, err
	}
	s.dashboards.InvalidateUser(p.UserID)
	log.Info("Trades imported", "userID", p.UserID, "imported", res.Imported, "issues", len(res.Issues))
	return res, nil
}

// ExportCSV writes every trade matching the state's filters; pagination is ignored.
func (s *tradeServiceImpl) ExportCSV(ctx context.Context, p *Principal, state models.TradesViewState, w io.Writer) error {
	trades, err := s.api.ListTrades(ctx, p.Token)
	if err != nil {
		return err
	}
	return export.WriteTradesCSV(w, analytics.FilterTrades(trades, state))
}

func (s *tradeServiceImpl) GetViewState(p *Principal) (models.TradesViewState, error) {
	state := models.DefaultTradesViewState()
	if _, err := model.GetViewState(s.db, p.UserID, models.ScreenTrades, &state); err != nil {
		return models.DefaultTradesViewState(), fmt.Errorf("failed to load view state: %w", err)
	}
	return analytics.NormalizeViewState(state), nil
}

func (s *tradeServiceImpl) SaveViewState(p *Principal, state models.TradesViewState) (models.TradesViewState, error) {
	state = analytics.NormalizeViewState(state)
	if err := model.UpsertViewState(s.db, p.UserID, models.ScreenTrades, state); err != nil {
		return state, fmt.Errorf("failed to save view state: %w", err)
	}
	return state, nil
}
