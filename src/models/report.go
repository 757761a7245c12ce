package models

// ReportSummary is the server-computed report. Its money totals are
// authoritative for the dashboard headline figures.
type ReportSummary struct {
	TotalProfit     float64 `json:"total_profit"`
	TotalLoss       float64 `json:"total_loss"`
	Capital         float64 `json:"capital"`
	WinProbability  float64 `json:"win_probability"`
	LossProbability float64 `json:"loss_probability"`
	AvgWin          float64 `json:"avg_win"`
	AvgLoss         float64 `json:"avg_loss"`
	Expectancy      float64 `json:"expectancy"`
}
