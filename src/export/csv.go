package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/username/tradejournal/src/models"
	"github.com/username/tradejournal/src/security/validation"
)

var tradeHeader = []string{
	"id", "date", "pair", "system", "action", "risk", "risk_percent", "lots", "entry",
	"sl1_pips", "tp1_pips", "sl2_pips", "tp2_pips", "cancelled", "profit_or_loss", "comments",
}

// WriteTradesCSV writes trades with a header row. Text cells are guarded
// against spreadsheet formula injection.
func WriteTradesCSV(w io.Writer, trades []models.Trade) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tradeHeader); err != nil {
		return err
	}
	for _, t := range trades {
		row := []string{
			itoa64(t.ID),
			text(t.Date),
			text(t.Pair),
			text(t.System),
			text(t.Action),
			text(t.Risk),
			ftoa(t.RiskPercent),
			ftoa(t.Lots),
			ftoa(t.Entry),
			ftoa(t.SL1Pips),
			ftoa(t.TP1Pips),
			ftoa(t.SL2Pips),
			ftoa(t.TP2Pips),
			strconv.FormatBool(t.Cancelled),
			ftoa(t.ProfitOrLoss.Float()),
			text(t.Comments),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func text(s string) string { return validation.SanitizeForFormulaInjection(s) }
func itoa64(x int64) string { return fmt.Sprintf("%d", x) }
func ftoa(x float64) string { return strconv.FormatFloat(x, 'f', -1, 64) }
