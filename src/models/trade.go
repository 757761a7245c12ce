package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Trade actions accepted by the remote API.
const (
	ActionBuy  = "BUY"
	ActionSell = "SELL"
)

// Amount is a lenient money/number field. It decodes JSON numbers, numeric
// strings and null; anything else (or a non-finite value) decodes to 0.
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*a = 0
			return nil
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			*a = 0
			return nil
		}
		f = parsed
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		f = 0
	}
	*a = Amount(f)
	return nil
}

// Float returns the amount with non-finite values coerced to 0.
func (a Amount) Float() float64 {
	f := float64(a)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Trade is a single journal record as returned by the remote API.
type Trade struct {
	ID           int64   `json:"id"`
	Date         string  `json:"date"`
	Pair         string  `json:"pair"`
	System       string  `json:"system"`
	Action       string  `json:"action"`
	Risk         string  `json:"risk"`
	RiskPercent  float64 `json:"risk_percent"`
	Lots         float64 `json:"lots"`
	Entry        float64 `json:"entry"`
	SL1Pips      float64 `json:"sl1_pips"`
	TP1Pips      float64 `json:"tp1_pips"`
	SL2Pips      float64 `json:"sl2_pips"`
	TP2Pips      float64 `json:"tp2_pips"`
	Cancelled    bool    `json:"cancelled"`
	ProfitOrLoss Amount  `json:"profit_or_loss"`
	Comments     string  `json:"comments"`
	OwnerID      int64   `json:"owner_id,omitempty"`
}

// TradeInput is the create/update payload sent to the remote API.
type TradeInput struct {
	Date         string  `json:"date"`
	Pair         string  `json:"pair"`
	System       string  `json:"system"`
	Action       string  `json:"action"`
	Risk         string  `json:"risk"`
	RiskPercent  float64 `json:"risk_percent"`
	Lots         float64 `json:"lots"`
	Entry        float64 `json:"entry"`
	SL1Pips      float64 `json:"sl1_pips"`
	TP1Pips      float64 `json:"tp1_pips"`
	SL2Pips      float64 `json:"sl2_pips"`
	TP2Pips      float64 `json:"tp2_pips"`
	Cancelled    bool    `json:"cancelled"`
	ProfitOrLoss float64 `json:"profit_or_loss"`
	Comments     string  `json:"comments"`
}

// ImportIssue describes a spreadsheet row the remote importer could not map cleanly.
type ImportIssue struct {
	Row              int      `json:"row"`
	MissingFields    []string `json:"missing_fields"`
	ConversionErrors []string `json:"conversion_errors"`
}

// ImportResult is the remote importer's answer for one uploaded file.
type ImportResult struct {
	Imported int           `json:"imported"`
	Issues   []ImportIssue `json:"issues"`
}
