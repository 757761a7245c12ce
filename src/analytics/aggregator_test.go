package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/tradejournal/src/models"
)

func trade(date string, pl float64, cancelled bool, pair, system string) models.Trade {
	return models.Trade{Date: date, ProfitOrLoss: models.Amount(pl), Cancelled: cancelled, Pair: pair, System: system}
}

func capitals(series []models.CapitalPoint) []float64 {
	out := make([]float64, len(series))
	for i, p := range series {
		out[i] = p.Capital
	}
	return out
}

func TestClassify(t *testing.T) {
	assert.Equal(t, models.Classification{IsWin: true}, Classify(trade("", 10, false, "", "")))
	assert.Equal(t, models.Classification{IsLoss: true}, Classify(trade("", -1, false, "", "")))
	assert.Equal(t, models.Classification{IsBreakeven: true}, Classify(trade("", 0, false, "", "")))
	assert.Equal(t, models.Classification{IsCancelled: true}, Classify(trade("", 30, true, "", "")))
	assert.Equal(t, models.Classification{IsBreakeven: true}, Classify(trade("", math.NaN(), false, "", "")))
}

func TestAggregate_Empty(t *testing.T) {
	m := Aggregate(nil, nil, 1000)

	assert.Equal(t, 0, m.TotalTrades)
	assert.Equal(t, 0.0, m.WinRate)
	assert.Equal(t, 0.0, m.NetProfit)
	assert.Equal(t, 0.0, m.CurrentCapital)
	require.NotNil(t, m.CapitalSeries)
	assert.Empty(t, m.CapitalSeries)
	require.NotNil(t, m.PairDistribution)
	assert.Empty(t, m.PairDistribution)
	require.NotNil(t, m.SystemPerformance)
	assert.Empty(t, m.SystemPerformance)
}

func TestAggregate_Scenario(t *testing.T) {
	trades := []models.Trade{
		trade("2024-01-01", 100, false, "EUR/USD", "A"),
		trade("2024-01-02", -50, false, "EUR/USD", "A"),
		trade("2024-01-03", 30, true, "GBP/USD", "B"),
	}

	m := Aggregate(trades, nil, 1000)

	assert.Equal(t, 3, m.TotalTrades)
	assert.Equal(t, 2, m.ExecutedTrades)
	assert.Equal(t, 1, m.WinningTrades)
	assert.Equal(t, 1, m.LosingTrades)
	assert.Equal(t, 1, m.CancelledTrades)
	assert.Equal(t, 50.0, m.WinRate)
	assert.Equal(t, []float64{1100, 1050, 1050}, capitals(m.CapitalSeries))
	assert.Equal(t, "2024-01-03", m.CapitalSeries[2].Date)
	assert.Equal(t, map[string]int{"EUR/USD": 2, "GBP/USD": 1}, m.PairDistribution)
	assert.Equal(t, models.SystemStats{Total: 2, Wins: 1, Losses: 1, Profit: 50, WinRate: 50, AvgProfit: 25}, m.SystemPerformance["A"])
	assert.Equal(t, models.SystemStats{Total: 1}, m.SystemPerformance["B"])
}

func TestAggregate_ReportIsAuthoritativeForHeadlines(t *testing.T) {
	trades := []models.Trade{trade("2024-01-01", 500, false, "EUR/USD", "A")}

	m := Aggregate(trades, nil, 0)
	assert.Zero(t, m.NetProfit)
	assert.Zero(t, m.TotalProfit)
	assert.Zero(t, m.TotalLoss)
	assert.Zero(t, m.CurrentCapital)

	m = Aggregate(trades, &models.ReportSummary{TotalProfit: 300, TotalLoss: -120, Capital: 1180}, 0)
	assert.Equal(t, 180.0, m.NetProfit)
	assert.Equal(t, 300.0, m.TotalProfit)
	assert.Equal(t, -120.0, m.TotalLoss)
	assert.Equal(t, 1180.0, m.CurrentCapital)
}

func TestAggregate_CapitalSeriesStableAndEpochForBadDates(t *testing.T) {
	trades := []models.Trade{
		{ID: 1, Date: "2024-03-01", ProfitOrLoss: 10},
		{ID: 2, Date: "", ProfitOrLoss: 1},
		{ID: 3, Date: "2024-01-01", ProfitOrLoss: 5},
		{ID: 4, Date: "not a date", ProfitOrLoss: 2},
		{ID: 5, Date: "2024-01-01", ProfitOrLoss: 7},
		{ID: 6, Date: "2024-02-01T10:00:00Z", ProfitOrLoss: -3},
	}
	before := append([]models.Trade(nil), trades...)

	m := Aggregate(trades, nil, 100)

	require.Len(t, m.CapitalSeries, len(trades))
	dates := make([]string, len(m.CapitalSeries))
	for i, p := range m.CapitalSeries {
		dates[i] = p.Date
	}
	assert.Equal(t, []string{"", "not a date", "2024-01-01", "2024-01-01", "2024-02-01T10:00:00Z", "2024-03-01"}, dates)
	assert.Equal(t, []float64{101, 103, 108, 115, 112, 122}, capitals(m.CapitalSeries))
	assert.Equal(t, before, trades, "input must not be reordered")
}

func TestAggregate_EmptyLabelsExcludedFromGroupingsOnly(t *testing.T) {
	trades := []models.Trade{
		trade("2024-01-01", 10, false, "", "A"),
		trade("2024-01-02", -10, false, "EUR/USD", ""),
		trade("2024-01-03", 10, false, "  ", "A"),
	}

	m := Aggregate(trades, nil, 0)

	assert.Equal(t, 3, m.TotalTrades)
	assert.Equal(t, 2, m.WinningTrades)
	assert.Equal(t, map[string]int{"EUR/USD": 1, "  ": 1}, m.PairDistribution, "only the empty label is dropped")
	assert.Len(t, m.SystemPerformance, 1)
	assert.Equal(t, 2, m.SystemPerformance["A"].Total)
}

func TestAggregate_NonFiniteInitialCapitalIsZero(t *testing.T) {
	for _, capital := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		assert.NotPanics(t, func() { Aggregate(nil, nil, capital) })

		m := Aggregate([]models.Trade{trade("2024-01-01", 25, false, "EUR/USD", "A")}, nil, capital)
		assert.Equal(t, []float64{25}, capitals(m.CapitalSeries))
	}
}

func TestAggregate_Properties(t *testing.T) {
	trades := []models.Trade{
		trade("2024-01-05", 0, false, "EUR/USD", "A"),
		trade("2024-01-01", 12, false, "EUR/USD", "A"),
		trade("2024-01-03", -4, true, "USD/JPY", "B"),
		trade("", -8, false, "USD/JPY", "B"),
		trade("2024-01-02", 0, true, "", ""),
	}

	m1 := Aggregate(trades, nil, 50)
	m2 := Aggregate(trades, nil, 50)
	assert.Equal(t, m1, m2)

	breakeven := 0
	for _, tr := range trades {
		if Classify(tr).IsBreakeven {
			breakeven++
		}
	}
	assert.Equal(t, m1.TotalTrades, m1.WinningTrades+m1.LosingTrades+m1.CancelledTrades+breakeven)
	assert.LessOrEqual(t, m1.WinningTrades+m1.LosingTrades, m1.ExecutedTrades)
	assert.LessOrEqual(t, m1.ExecutedTrades, m1.TotalTrades)
	assert.Len(t, m1.CapitalSeries, len(trades))
	// The last point equals the starting capital plus every non-cancelled P&L.
	assert.Equal(t, 50.0+12-8, m1.CapitalSeries[len(m1.CapitalSeries)-1].Capital)
}

func TestAggregate_MoneySumsDoNotDrift(t *testing.T) {
	trades := []models.Trade{
		trade("2024-01-01", 0.1, false, "EUR/USD", "A"),
		trade("2024-01-02", 0.2, false, "EUR/USD", "A"),
	}

	m := Aggregate(trades, nil, 0)

	assert.Equal(t, []float64{0.1, 0.3}, capitals(m.CapitalSeries))
	assert.Equal(t, 0.3, m.SystemPerformance["A"].Profit)
	assert.Equal(t, 0.15, m.SystemPerformance["A"].AvgProfit)
}

func TestResolveInitialCapital(t *testing.T) {
	capital := 2500.0
	report := &models.ReportSummary{Capital: 1234}

	assert.Equal(t, 2500.0, ResolveInitialCapital(&models.User{InitialCapital: &capital}, report))
	assert.Equal(t, 1234.0, ResolveInitialCapital(&models.User{}, report))
	assert.Equal(t, 1234.0, ResolveInitialCapital(nil, report))
	assert.Equal(t, 0.0, ResolveInitialCapital(nil, nil))
}
