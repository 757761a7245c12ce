package analytics

import "github.com/username/tradejournal/src/models"

// Classify categorizes a trade by its recorded outcome. A cancelled trade is
// only ever cancelled; otherwise the sign of profit_or_loss decides, with zero
// (or a missing/malformed value) meaning breakeven.
func Classify(trade models.Trade) models.Classification {
	if trade.Cancelled {
		return models.Classification{IsCancelled: true}
	}
	pl := trade.ProfitOrLoss.Float()
	return models.Classification{
		IsWin:       pl > 0,
		IsLoss:      pl < 0,
		IsBreakeven: pl == 0,
	}
}

// effectiveProfit is the P&L a trade contributes to any money aggregate.
func effectiveProfit(trade models.Trade) float64 {
	if trade.Cancelled {
		return 0
	}
	return trade.ProfitOrLoss.Float()
}
