package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/username/tradejournal/src/logger"
)

// ErrorBody is the JSON shape of every error response. Code is a stable
// machine-readable tag; Fields carries per-field form errors.
type ErrorBody struct {
	Error  string            `json:"error"`
	Code   string            `json:"code,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

func SendJSONError(w http.ResponseWriter, message string, statusCode int) {
	SendJSONErrorBody(w, ErrorBody{Error: message}, statusCode)
}

func SendJSONErrorBody(w http.ResponseWriter, body ErrorBody, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	logger.L.Warn("Sending JSON error to client", "message", body.Error, "code", body.Code, "statusCode", statusCode)
	json.NewEncoder(w).Encode(body)
}

func SendJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.L.Error("Error encoding JSON response", "error", err)
	}
}

// GenerateETag hashes the JSON encoding of v.
func GenerateETag(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal data for ETag: %w", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
