package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/username/tradejournal/src/models"
	"github.com/username/tradejournal/src/services"
	"github.com/username/tradejournal/src/utils"
)

type TradeHandler struct {
	trades services.TradeService
}

func NewTradeHandler(trades services.TradeService) *TradeHandler {
	return &TradeHandler{trades: trades}
}

var viewStateParams = []string{"search", "status", "pair", "page", "rowsPerPage"}

// viewStateFromQuery reads table filters from the query string. It returns
// nil when none are given so the saved state applies.
func viewStateFromQuery(r *http.Request) *models.TradesViewState {
	q := r.URL.Query()
	given := false
	for _, name := range viewStateParams {
		if q.Has(name) {
			given = true
			break
		}
	}
	if !given {
		return nil
	}
	state := models.DefaultTradesViewState()
	state.Search = q.Get("search")
	if v := q.Get("status"); v != "" {
		state.Status = v
	}
	if v := q.Get("pair"); v != "" {
		state.Pair = v
	}
	if v, err := strconv.Atoi(q.Get("page")); err == nil {
		state.Page = v
	}
	if v, err := strconv.Atoi(q.Get("rowsPerPage")); err == nil {
		state.RowsPerPage = v
	}
	return &state
}

func tradeIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		utils.SendJSONErrorBody(w, utils.ErrorBody{Error: "Invalid trade ID", Code: "validation"}, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *TradeHandler) HandleListTrades(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOrReject(w, r)
	if !ok {
		return
	}
	page, err := h.trades.ListPage(r.Context(), p, viewStateFromQuery(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, page)
}

func (h *TradeHandler) HandleCreateTrade(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOrReject(w, r)
	if !ok {
		return
	}
	var in models.TradeInput
	if !decodeJSON(w, r, &in) {
		return
	}
	trade, err := h.trades.Create(r.Context(), p, in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.SendJSON(w, http.StatusCreated, trade)
}

func (h *TradeHandler) HandleUpdateTrade(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOrReject(w, r)
	if !ok {
		return
	}
	id, ok := tradeIDParam(w, r)
	if !ok {
		return
	}
	var in models.TradeInput
	if !decodeJSON(w, r, &in) {
		return
	}
	trade, err := h.trades.Update(r.Context(), p, id, in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, trade)
}

func (h *TradeHandler) HandleDeleteTrade(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOrReject(w, r)
	if !ok {
		return
	}
	id, ok := tradeIDParam(w, r)
	if !ok {
		return
	}
	if err := h.trades.Delete(r.Context(), p, id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TradeHandler) HandleGetViewState(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOrReject(w, r)
	if !ok {
		return
	}
	state, err := h.trades.GetViewState(p)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, state)
}

func (h *TradeHandler) HandlePutViewState(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOrReject(w, r)
	if !ok {
		return
	}
	state := models.DefaultTradesViewState()
	if !decodeJSON(w, r, &state) {
		return
	}
	saved, err := h.trades.SaveViewState(p, state)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, saved)
}

func exportFilename(state *models.TradesViewState) string {
	if state == nil || state.Pair == models.StatusAll || state.Pair == "" {
		return "trades.csv"
	}
	return "trades-" + strings.NewReplacer("/", "", " ", "").Replace(strings.ToLower(state.Pair)) + ".csv"
}
