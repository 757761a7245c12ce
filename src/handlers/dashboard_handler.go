package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/username/tradejournal/src/logger"
	"github.com/username/tradejournal/src/services"
	"github.com/username/tradejournal/src/utils"
)

type DashboardHandler struct {
	dashboards services.DashboardService
}

func NewDashboardHandler(dashboards services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards}
}

func (h *DashboardHandler) HandleGetDashboard(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOrReject(w, r)
	if !ok {
		return
	}
	ctxLogger := logger.FromContext(r.Context())

	dashboard, err := h.dashboards.GetDashboard(r.Context(), p)
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "no-cache, private")
	currentETag, etagErr := utils.GenerateETag(dashboard)
	if etagErr != nil {
		ctxLogger.Error("Failed to generate ETag for dashboard", "error", etagErr)
	} else {
		quotedETag := fmt.Sprintf("\"%s\"", currentETag)
		w.Header().Set("ETag", quotedETag)
		for _, cETag := range strings.Split(r.Header.Get("If-None-Match"), ",") {
			if strings.TrimSpace(cETag) == quotedETag {
				ctxLogger.Debug("ETag match for dashboard", "etag", currentETag)
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	}

	utils.SendJSON(w, http.StatusOK, dashboard)
}
