package handlers

import (
	"net/http"

	"github.com/username/tradejournal/src/services"
	"github.com/username/tradejournal/src/utils"
)

type AssistantHandler struct {
	assistant services.AssistantService
}

func NewAssistantHandler(assistant services.AssistantService) *AssistantHandler {
	return &AssistantHandler{assistant: assistant}
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

func (h *AssistantHandler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	p, ok := principalOrReject(w, r)
	if !ok {
		return
	}
	var req askRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	answer, err := h.assistant.Ask(r.Context(), p, req.Question)
	if err != nil {
		respondError(w, r, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, askResponse{Answer: answer})
}
