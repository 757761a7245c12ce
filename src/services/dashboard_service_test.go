package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/tradejournal/src/apiclient"
	"github.com/username/tradejournal/src/models"
)

func TestDashboardService_ComputesAndCaches(t *testing.T) {
	env := newTestEnv(t)
	env.remote.setReport(&models.ReportSummary{TotalProfit: 100, TotalLoss: -50, Capital: 1050})
	env.remote.setTrades(
		models.Trade{ID: 1, Date: "2024-01-01", Pair: "EUR/USD", System: "A", ProfitOrLoss: 100},
		models.Trade{ID: 2, Date: "2024-01-02", Pair: "EUR/USD", System: "A", ProfitOrLoss: -50},
		models.Trade{ID: 3, Date: "2024-01-03", Pair: "GBP/USD", System: "B", ProfitOrLoss: 30, Cancelled: true},
	)
	ctx := context.Background()
	p := env.principal()

	d, err := env.dashboards.GetDashboard(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, d.InitialCapital)
	assert.Equal(t, 50.0, d.Metrics.WinRate)
	assert.Equal(t, 50.0, d.Metrics.NetProfit)
	assert.Equal(t, 1050.0, d.Metrics.CurrentCapital)
	require.Len(t, d.Metrics.CapitalSeries, 3)
	assert.Equal(t, 1050.0, d.Metrics.CapitalSeries[2].Capital)
	assert.Equal(t, int64(3), d.RecentTrades[0].ID)
	assert.Equal(t, "trader", d.User.Username)

	_, err = env.dashboards.GetDashboard(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, int32(1), env.remote.tradeCalls.Load(), "second read is cached")

	env.dashboards.InvalidateUser(p.UserID)
	_, err = env.dashboards.GetDashboard(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, int32(2), env.remote.tradeCalls.Load())
}

func TestDashboardService_InvalidationDuringFetchIsNotCached(t *testing.T) {
	env := newTestEnv(t)
	env.remote.setTrades(models.Trade{ID: 1, Date: "2024-01-01", Pair: "EUR/USD", System: "A", ProfitOrLoss: 10})
	ctx := context.Background()
	p := env.principal()

	entered, release := env.remote.holdTradeList()
	done := make(chan error, 1)
	go func() {
		_, err := env.dashboards.GetDashboard(ctx, p)
		done <- err
	}()

	<-entered
	env.dashboards.InvalidateUser(p.UserID)
	close(release)
	require.NoError(t, <-done)

	_, err := env.dashboards.GetDashboard(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, int32(2), env.remote.tradeCalls.Load(), "result computed before the invalidation must not be served")

	_, err = env.dashboards.GetDashboard(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, int32(2), env.remote.tradeCalls.Load(), "a clean fetch is cached again")
}

func TestDashboardService_MissingReportKeepsZeroHeadlines(t *testing.T) {
	env := newTestEnv(t)
	env.remote.setTrades(models.Trade{ID: 1, Date: "2024-01-01", Pair: "EUR/USD", System: "A", ProfitOrLoss: 10})

	d, err := env.dashboards.GetDashboard(context.Background(), env.principal())
	require.NoError(t, err)
	assert.Nil(t, d.Report)
	assert.Zero(t, d.Metrics.NetProfit)
	assert.Zero(t, d.Metrics.CurrentCapital)
	assert.Equal(t, 1010.0, d.Metrics.CapitalSeries[0].Capital)
}

func TestDashboardService_UnauthorizedWins(t *testing.T) {
	env := newTestEnv(t)
	p := env.principal()
	p.Token = "stale"

	_, err := env.dashboards.GetDashboard(context.Background(), p)
	assert.Equal(t, apiclient.KindUnauthorized, apiclient.KindOf(err))
}

func TestFirstError(t *testing.T) {
	notFound := &apiclient.Error{Kind: apiclient.KindNotFound}
	unauthorized := &apiclient.Error{Kind: apiclient.KindUnauthorized}

	assert.Nil(t, firstError(nil, nil))
	assert.Same(t, notFound, firstError(nil, notFound, nil))
	assert.Same(t, unauthorized, firstError(notFound, unauthorized))
}
