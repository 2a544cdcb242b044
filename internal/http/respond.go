package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"fleetledger/internal/ports"
)

// maxBodyBytes caps request bodies; records are small.
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeStorageError maps storage errors onto HTTP statuses.
func writeStorageError(w http.ResponseWriter, r *http.Request, err error, what string) {
	if errors.Is(err, ports.ErrNotFound) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("%s not found", what))
		return
	}
	slog.ErrorContext(r.Context(), "Storage operation failed", "what", what, "error", err)
	writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to access %s", what))
}

// decodeBody decodes a JSON request body into dst, rejecting oversized
// payloads and trailing garbage.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
