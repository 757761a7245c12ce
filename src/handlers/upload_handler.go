package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/username/tradejournal/src/logger"
	"github.com/username/tradejournal/src/models"
	"github.com/username/tradejournal/src/services"
	"github.com/username/tradejournal/src/utils"
)

// multipartOverhead is allowed on top of the file limit for form framing.
const multipartOverhead = 64 << 10

type UploadHandler struct {
	trades        services.TradeService
	maxUploadSize int64
}

func NewUploadHandler(trades services.TradeService, maxUploadSize int64) *UploadHandler {
	return &UploadHandler{trades: trades, maxUploadSize: maxUploadSize}
}

func (h *UploadHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOrReject(w, r)
	if !ok {
		return
	}
	ctxLogger := logger.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		ctxLogger.Warn("Failed to parse multipart form or request too large", "error", err, "limit", h.maxUploadSize)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, services.ErrFileTooLarge)
			return
		}
		utils.SendJSONErrorBody(w, utils.ErrorBody{
			Error: fmt.Sprintf("Failed to read upload or file too large (max %d MB)", h.maxUploadSize/(1024*1024)),
			Code:  "validation",
		}, http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		ctxLogger.Warn("Failed to retrieve file from request", "error", err)
		utils.SendJSONErrorBody(w, utils.ErrorBody{Error: "Failed to retrieve file from request. Ensure 'file' field is used.", Code: "validation"}, http.StatusBadRequest)
		return
	}
	defer file.Close()

	ctxLogger.Info("Processing import request", "filename", fileHeader.Filename, "size", fileHeader.Size)
	result, err := h.trades.Import(r.Context(), p, fileHeader.Filename, fileHeader.Size, file)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, result)
}

// HandleExport downloads every trade matching the current filters as CSV.
// The CSV is buffered so a remote failure can still be reported as JSON.
func (h *UploadHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOrReject(w, r)
	if !ok {
		return
	}

	state := viewStateFromQuery(r)
	applied := models.DefaultTradesViewState()
	if state != nil {
		applied = *state
	} else if saved, err := h.trades.GetViewState(p); err == nil {
		applied = saved
	}

	var buf bytes.Buffer
	if err := h.trades.ExportCSV(r.Context(), p, applied, &buf); err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename(&applied)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logger.FromContext(r.Context()).Error("Error writing CSV export", "error", err)
	}
}
