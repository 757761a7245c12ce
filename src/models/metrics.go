package models

// Classification is the outcome category of a single trade.
type Classification struct {
	IsWin       bool `json:"isWin"`
	IsLoss      bool `json:"isLoss"`
	IsCancelled bool `json:"isCancelled"`
	IsBreakeven bool `json:"isBreakeven"`
}

// CapitalPoint is one step of the running-balance reconstruction.
type CapitalPoint struct {
	Date    string  `json:"date"`
	Capital float64 `json:"capital"`
}

// SystemStats is the per-strategy rollup.
type SystemStats struct {
	Wins      int     `json:"wins"`
	Losses    int     `json:"losses"`
	Total     int     `json:"total"`
	Profit    float64 `json:"profit"`
	WinRate   float64 `json:"winRate"`
	AvgProfit float64 `json:"avgProfit"`
}

// DerivedMetrics is everything the dashboard renders from a trade list.
type DerivedMetrics struct {
	TotalTrades     int     `json:"totalTrades"`
	ExecutedTrades  int     `json:"executedTrades"`
	WinningTrades   int     `json:"winningTrades"`
	LosingTrades    int     `json:"losingTrades"`
	CancelledTrades int     `json:"cancelledTrades"`
	WinRate         float64 `json:"winRate"`

	NetProfit      float64 `json:"netProfit"`
	TotalProfit    float64 `json:"totalProfit"`
	TotalLoss      float64 `json:"totalLoss"`
	CurrentCapital float64 `json:"currentCapital"`

	CapitalSeries     []CapitalPoint         `json:"capitalSeries"`
	PairDistribution  map[string]int         `json:"pairDistribution"`
	SystemPerformance map[string]SystemStats `json:"systemPerformance"`
}

// Dashboard is the overview payload: derived metrics plus the inputs they came from.
type Dashboard struct {
	Metrics        DerivedMetrics `json:"metrics"`
	Report         *ReportSummary `json:"report"`
	InitialCapital float64        `json:"initialCapital"`
	RecentTrades   []Trade        `json:"recentTrades"`
	User           *User          `json:"user"`
}
