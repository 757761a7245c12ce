package analytics

import (
	"slices"
	"sort"
	"strings"

	"github.com/username/tradejournal/src/models"
)

// NormalizeViewState clamps a trades view state to values the table accepts.
func NormalizeViewState(s models.TradesViewState) models.TradesViewState {
	s.Search = strings.TrimSpace(s.Search)
	switch s.Status {
	case models.StatusWin, models.StatusLoss, models.StatusCancelled, models.StatusBreakeven:
	default:
		s.Status = models.StatusAll
	}
	if strings.TrimSpace(s.Pair) == "" {
		s.Pair = models.StatusAll
	}
	if !slices.Contains(models.RowsPerPageOptions, s.RowsPerPage) {
		s.RowsPerPage = models.DefaultRowsPerPage
	}
	if s.Page < 0 {
		s.Page = 0
	}
	return s
}

func matchesStatus(t models.Trade, status string) bool {
	c := Classify(t)
	switch status {
	case models.StatusWin:
		return c.IsWin
	case models.StatusLoss:
		return c.IsLoss
	case models.StatusCancelled:
		return c.IsCancelled
	case models.StatusBreakeven:
		return c.IsBreakeven
	default:
		return true
	}
}

// FilterTrades applies the trades table filters: a case-insensitive search
// over pair, system and comments, a status and a pair. Order is preserved.
func FilterTrades(trades []models.Trade, s models.TradesViewState) []models.Trade {
	s = NormalizeViewState(s)
	needle := strings.ToLower(s.Search)

	out := make([]models.Trade, 0, len(trades))
	for _, t := range trades {
		if needle != "" &&
			!strings.Contains(strings.ToLower(t.Pair), needle) &&
			!strings.Contains(strings.ToLower(t.System), needle) &&
			!strings.Contains(strings.ToLower(t.Comments), needle) {
			continue
		}
		if !matchesStatus(t, s.Status) {
			continue
		}
		if s.Pair != models.StatusAll && t.Pair != s.Pair {
			continue
		}
		out = append(out, t)
	}
	return out
}

// DistinctPairs lists the non-empty pairs in trades, sorted.
func DistinctPairs(trades []models.Trade) []string {
	seen := make(map[string]struct{})
	pairs := []string{}
	for _, t := range trades {
		if t.Pair == "" {
			continue
		}
		if _, ok := seen[t.Pair]; ok {
			continue
		}
		seen[t.Pair] = struct{}{}
		pairs = append(pairs, t.Pair)
	}
	sort.Strings(pairs)
	return pairs
}

// Paginate filters trades by the view state and cuts out the requested page.
// A page past the end yields an empty item list, not an error.
func Paginate(trades []models.Trade, s models.TradesViewState) models.TradePage {
	s = NormalizeViewState(s)
	filtered := FilterTrades(trades, s)

	start, end := len(filtered), len(filtered)
	if pages := (len(filtered) + s.RowsPerPage - 1) / s.RowsPerPage; s.Page < pages {
		start = s.Page * s.RowsPerPage
		end = min(start+s.RowsPerPage, len(filtered))
	}

	return models.TradePage{
		Items:       slices.Clone(filtered[start:end]),
		Total:       len(filtered),
		Page:        s.Page,
		RowsPerPage: s.RowsPerPage,
		Pairs:       DistinctPairs(trades),
	}
}

// Recent returns up to n trades, newest first. Trades on the same date keep
// their list order.
func Recent(trades []models.Trade, n int) []models.Trade {
	if n <= 0 {
		return []models.Trade{}
	}
	out := slices.Clone(trades)
	if out == nil {
		out = []models.Trade{}
	}
	keys := make([]int64, len(out))
	order := make([]int, len(out))
	for i := range out {
		order[i] = i
		keys[i] = tradeTime(out[i].Date)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return keys[order[a]] > keys[order[b]]
	})
	if len(order) > n {
		order = order[:n]
	}
	recent := make([]models.Trade, 0, len(order))
	for _, idx := range order {
		recent = append(recent, out[idx])
	}
	return recent
}
