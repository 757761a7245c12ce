package models

// Trade status filters used by the trades view.
const (
	StatusAll       = "all"
	StatusWin       = "win"
	StatusLoss      = "loss"
	StatusCancelled = "cancelled"
	StatusBreakeven = "breakeven"
)

// ScreenTrades identifies the trades table in the view-state store.
const ScreenTrades = "trades"

// RowsPerPageOptions are the page sizes the trades table offers.
var RowsPerPageOptions = []int{5, 10, 25, 50}

const DefaultRowsPerPage = 10

// TradesViewState is the persisted filter and pagination state of the trades table.
type TradesViewState struct {
	Search      string `json:"search"`
	Status      string `json:"status"`
	Pair        string `json:"pair"`
	Page        int    `json:"page"`
	RowsPerPage int    `json:"rowsPerPage"`
}

// DefaultTradesViewState is what a user sees the first time the table opens.
func DefaultTradesViewState() TradesViewState {
	return TradesViewState{Status: StatusAll, Pair: StatusAll, RowsPerPage: DefaultRowsPerPage}
}

// TradePage is one page of the filtered trades table.
type TradePage struct {
	Items       []Trade  `json:"items"`
	Total       int      `json:"total"`
	Page        int      `json:"page"`
	RowsPerPage int      `json:"rowsPerPage"`
	Pairs       []string `json:"pairs"`
}
