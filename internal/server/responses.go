package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"git.home.luguber.info/inful/opsadapter/internal/foundation/errors"
	"git.home.luguber.info/inful/opsadapter/internal/logfields"
)

// httpErrors formats the canonical JSON error payload; request logging
// stays with the middleware.
var httpErrors = errors.NewHTTPErrorAdapter()

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed writing JSON response", logfields.Error(err))
		return err
	}
	return nil
}

// writeJSONPretty honors ?pretty=1 for human consumption; the default wire
// format stays compact.
func writeJSONPretty(w http.ResponseWriter, r *http.Request, status int, v any) error {
	if r != nil {
		if p := r.URL.Query().Get("pretty"); p == "1" || p == "true" {
			b, err := json.MarshalIndent(v, "", "  ")
			if err == nil {
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(status)
				if _, werr := w.Write(append(b, '\n')); werr != nil { // newline parity with Encoder
					slog.Error("failed writing pretty JSON", logfields.Error(werr))
					return werr
				}
				return nil
			}
			slog.Warn("pretty JSON marshal failed, falling back to standard encode", logfields.Error(err))
		}
	}
	return writeJSON(w, status, v)
}

// writeError renders err as the canonical JSON error payload under the given
// status. Unclassified errors surface as internal errors.
func writeError(w http.ResponseWriter, status int, err error) {
	payload := httpErrors.FormatErrorResponse(err)
	if payload.Error == "" {
		payload.Error = "internal error"
	}
	if payload.Code == "" {
		payload.Code = string(errors.CategoryInternal)
		payload.Severity = string(errors.SeverityError)
	}
	_ = writeJSON(w, status, payload)
}

func invalidMethod(w http.ResponseWriter, r *http.Request) {
	err := errors.NewError(errors.CategoryConfig, "method not allowed").
		WithContext("method", r.Method).
		WithContext("allowed_method", http.MethodGet).
		Build()
	writeError(w, http.StatusMethodNotAllowed, err)
}
