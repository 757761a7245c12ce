package analytics

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/username/tradejournal/src/models"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// tradeTime parses a trade date for ordering. Missing or unparseable dates
// order as the Unix epoch.
func tradeTime(date string) int64 {
	date = strings.TrimSpace(date)
	if date == "" {
		return 0
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, date); err == nil {
			return t.UnixMilli()
		}
	}
	return 0
}

// ResolveInitialCapital picks the capital the growth series starts from:
// the user's recorded initial capital, then the report's capital, then 0.
func ResolveInitialCapital(user *models.User, report *models.ReportSummary) float64 {
	if user != nil && user.InitialCapital != nil {
		return *user.InitialCapital
	}
	if report != nil {
		return report.Capital
	}
	return 0
}

// Aggregate derives the dashboard metrics from a trade list. Money headline
// figures come from report only; the capital series is rebuilt locally from
// trade order. trades is not modified.
func Aggregate(trades []models.Trade, report *models.ReportSummary, initialCapital float64) models.DerivedMetrics {
	if math.IsNaN(initialCapital) || math.IsInf(initialCapital, 0) {
		initialCapital = 0
	}
	m := models.DerivedMetrics{
		TotalTrades:       len(trades),
		CapitalSeries:     make([]models.CapitalPoint, 0, len(trades)),
		PairDistribution:  make(map[string]int),
		SystemPerformance: make(map[string]models.SystemStats),
	}

	for _, t := range trades {
		c := Classify(t)
		switch {
		case c.IsCancelled:
			m.CancelledTrades++
		case c.IsWin:
			m.WinningTrades++
		case c.IsLoss:
			m.LosingTrades++
		}
	}
	m.ExecutedTrades = m.TotalTrades - m.CancelledTrades

	if decided := m.WinningTrades + m.LosingTrades; decided > 0 {
		m.WinRate = float64(m.WinningTrades) / float64(decided) * 100
	}

	if report != nil {
		m.TotalProfit = report.TotalProfit
		m.TotalLoss = report.TotalLoss
		m.NetProfit = report.TotalProfit + report.TotalLoss
		m.CurrentCapital = report.Capital
	}

	m.CapitalSeries = capitalSeries(trades, initialCapital, m.CapitalSeries)
	m.PairDistribution = pairDistribution(trades, m.PairDistribution)
	m.SystemPerformance = systemPerformance(trades, m.SystemPerformance)
	return m
}

func capitalSeries(trades []models.Trade, initialCapital float64, out []models.CapitalPoint) []models.CapitalPoint {
	order := make([]int, len(trades))
	keys := make([]int64, len(trades))
	for i, t := range trades {
		order[i] = i
		keys[i] = tradeTime(t.Date)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return keys[order[a]] < keys[order[b]]
	})

	capital := decimal.NewFromFloat(initialCapital)
	for _, idx := range order {
		t := trades[idx]
		capital = capital.Add(decimal.NewFromFloat(effectiveProfit(t)))
		out = append(out, models.CapitalPoint{Date: t.Date, Capital: capital.InexactFloat64()})
	}
	return out
}

func pairDistribution(trades []models.Trade, out map[string]int) map[string]int {
	for _, t := range trades {
		if t.Pair == "" {
			continue
		}
		out[t.Pair]++
	}
	return out
}

// systemPerformance rolls trades up per strategy. Cancelled trades count
// toward total only.
func systemPerformance(trades []models.Trade, out map[string]models.SystemStats) map[string]models.SystemStats {
	profits := make(map[string]decimal.Decimal)
	for _, t := range trades {
		if t.System == "" {
			continue
		}
		s := out[t.System]
		s.Total++
		c := Classify(t)
		if c.IsWin {
			s.Wins++
		}
		if c.IsLoss {
			s.Losses++
		}
		profits[t.System] = profits[t.System].Add(decimal.NewFromFloat(effectiveProfit(t)))
		out[t.System] = s
	}

	for name, s := range out {
		s.Profit = profits[name].InexactFloat64()
		if s.Total > 0 {
			s.WinRate = float64(s.Wins) / float64(s.Total) * 100
			s.AvgProfit = s.Profit / float64(s.Total)
		}
		out[name] = s
	}
	return out
}
