package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/username/tradejournal/src/analytics"
	"github.com/username/tradejournal/src/apiclient"
	"github.com/username/tradejournal/src/logger"
	"github.com/username/tradejournal/src/models"
)

const (
	ckDashboard      = "dashboard_user_%d"
	RecentTradeCount = 10
)

type dashboardServiceImpl struct {
	api   *apiclient.Client
	cache *cache.Cache
	ttl   time.Duration

	// generations counts invalidations per user; a result computed before
	// an invalidation is never cached.
	mu          sync.Mutex
	generations map[int64]uint64
}

func NewDashboardService(api *apiclient.Client, dashboardCache *cache.Cache, ttl time.Duration) DashboardService {
	return &dashboardServiceImpl{api: api, cache: dashboardCache, ttl: ttl, generations: make(map[int64]uint64)}
}

func (s *dashboardServiceImpl) generation(userID int64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[userID]
}

// GetDashboard fetches trades, the report and the user concurrently and
// derives the overview metrics from them.
func (s *dashboardServiceImpl) GetDashboard(ctx context.Context, p *Principal) (*models.Dashboard, error) {
	log := logger.FromContext(ctx)
	cacheKey := fmt.Sprintf(ckDashboard, p.UserID)
	if cached, found := s.cache.Get(cacheKey); found {
		log.Debug("Dashboard served from cache", "userID", p.UserID)
		return cached.(*models.Dashboard), nil
	}
	gen := s.generation(p.UserID)

	var (
		wg                          sync.WaitGroup
		trades                      []models.Trade
		report                      *models.ReportSummary
		user                        *models.User
		tradesErr, reportErr, meErr error
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		trades, tradesErr = s.api.ListTrades(ctx, p.Token)
	}()
	go func() {
		defer wg.Done()
		report, reportErr = s.api.Report(ctx, p.Token)
	}()
	go func() {
		defer wg.Done()
		user, meErr = s.api.Me(ctx, p.Token)
	}()
	wg.Wait()

	if err := firstError(tradesErr, meErr, reportErr); err != nil {
		if err == reportErr && apiclient.KindOf(err) == apiclient.KindNotFound {
			// No report yet: headline figures stay at zero.
			log.Info("Report not available, rendering dashboard without it", "userID", p.UserID)
			report = nil
		} else {
			return nil, err
		}
	}

	initialCapital := analytics.ResolveInitialCapital(user, report)
	dashboard := &models.Dashboard{
		Metrics:        analytics.Aggregate(trades, report, initialCapital),
		Report:         report,
		InitialCapital: initialCapital,
		RecentTrades:   analytics.Recent(trades, RecentTradeCount),
		User:           user,
	}
	if s.ttl > 0 {
		s.mu.Lock()
		if s.generations[p.UserID] == gen {
			s.cache.Set(cacheKey, dashboard, s.ttl)
		} else {
			log.Debug("Dashboard invalidated while computing, not caching", "userID", p.UserID)
		}
		s.mu.Unlock()
	}
	log.Info("Dashboard computed", "userID", p.UserID, "trades", dashboard.Metrics.TotalTrades)
	return dashboard, nil
}

func (s *dashboardServiceImpl) InvalidateUser(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[userID]++
	s.cache.Delete(fmt.Sprintf(ckDashboard, userID))
}

// firstError prefers an authorization failure so the caller can end the
// session, then the first non-nil error in argument order.
func firstError(errs ...error) error {
	var first error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if k := apiclient.KindOf(err); k == apiclient.KindUnauthorized || k == apiclient.KindForbidden {
			return err
		}
		if first == nil {
			first = err
		}
	}
	return first
}
