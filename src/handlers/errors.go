package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/username/tradejournal/src/apiclient"
	"github.com/username/tradejournal/src/logger"
	"github.com/username/tradejournal/src/security/validation"
	"github.com/username/tradejournal/src/services"
	"github.com/username/tradejournal/src/utils"
)

const maxJSONBody = 1 << 20

func statusForKind(k apiclient.Kind) int {
	switch k {
	case apiclient.KindUnauthorized:
		return http.StatusUnauthorized
	case apiclient.KindForbidden:
		return http.StatusForbidden
	case apiclient.KindValidation:
		return http.StatusBadRequest
	case apiclient.KindNotFound:
		return http.StatusNotFound
	case apiclient.KindNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError maps a service error to an HTTP response. A remote
// Unauthorized ends the caller's session.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var fieldErrs validation.FieldErrors
	var apiErr *apiclient.Error
	switch {
	case errors.As(err, &fieldErrs):
		utils.SendJSONErrorBody(w, utils.ErrorBody{Error: "Validation failed", Code: "validation", Fields: fieldErrs}, http.StatusBadRequest)
	case errors.Is(err, validation.ErrValidationFailed):
		utils.SendJSONErrorBody(w, utils.ErrorBody{Error: err.Error(), Code: "validation"}, http.StatusBadRequest)
	case errors.Is(err, services.ErrFileTooLarge):
		utils.SendJSONErrorBody(w, utils.ErrorBody{Error: err.Error(), Code: "too_large"}, http.StatusRequestEntityTooLarge)
	case errors.Is(err, services.ErrSessionNotFound):
		utils.SendJSONErrorBody(w, utils.ErrorBody{Error: "Authentication required", Code: "unauthorized"}, http.StatusUnauthorized)
	case errors.As(err, &apiErr):
		if apiErr.Kind == apiclient.KindUnauthorized {
			if clear, ok := ctx.Value(sessionClearerContextKey).(func(context.Context)); ok {
				log.Info("Remote API rejected the session token, clearing session")
				clear(ctx)
			}
		}
		status := statusForKind(apiErr.Kind)
		msg := apiErr.Message
		if status >= http.StatusInternalServerError || msg == "" {
			log.Error("Remote API call failed", "kind", apiErr.Kind.String(), "status", apiErr.Status, "error", err)
			msg = fmt.Sprintf("Trading API %s error", apiErr.Kind)
		}
		utils.SendJSONErrorBody(w, utils.ErrorBody{Error: msg, Code: apiErr.Kind.String()}, status)
	default:
		log.Error("Unhandled error", "path", r.URL.Path, "error", err)
		utils.SendJSONErrorBody(w, utils.ErrorBody{Error: "Internal server error", Code: "unknown"}, http.StatusInternalServerError)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.FromContext(r.Context()).Warn("Invalid JSON request body", "path", r.URL.Path, "error", err)
		utils.SendJSONErrorBody(w, utils.ErrorBody{Error: "Invalid request body", Code: "validation"}, http.StatusBadRequest)
		return false
	}
	return true
}

// principalOrReject is the handler-side guard for routes behind RequireSession.
func principalOrReject(w http.ResponseWriter, r *http.Request) (*services.Principal, bool) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		utils.SendJSONErrorBody(w, utils.ErrorBody{Error: "Authentication required", Code: "unauthorized"}, http.StatusUnauthorized)
		return nil, false
	}
	return p, true
}
