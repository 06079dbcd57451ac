package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nrichard27/account-api/internal/apperror"
	"github.com/nrichard27/account-api/internal/logger"
	"github.com/nrichard27/account-api/internal/validator"
)

// envelope is the wire shape shared by every response: a numeric code, a
// human-readable message, and for successes the payload fields merged in at
// the top level.
type envelope map[string]any

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// writeSuccess writes a 200-class envelope with code 900 and the payload
// fields at the top level next to code and message.
func writeSuccess(w http.ResponseWriter, status int, payload map[string]any) {
	body := envelope{
		"code":    apperror.CodeSuccess,
		"message": "Success",
	}
	for k, v := range payload {
		body[k] = v
	}
	writeJSON(w, status, body)
}

// writeError maps a domain error onto the failure envelope. Anything that is
// not a known kind becomes a generic 500 with no internal detail leaked, but
// with the full error logged server-side.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		body := envelope{
			"code":    appErr.Code,
			"message": appErr.Message,
		}
		if len(appErr.Errors) > 0 {
			body["errors"] = appErr.Errors
		}
		writeJSON(w, appErr.Status, body)
		return
	}

	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		writeValidationError(w, valErr.Messages())
		return
	}

	logger.FromContext(r.Context()).ErrorContext(r.Context(), "request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)

	writeJSON(w, http.StatusInternalServerError, envelope{
		"code":    apperror.CodeNone,
		"message": "Internal server error",
	})
}

// writeValidationError writes the malformed-body envelope with the
// field-level messages attached.
func writeValidationError(w http.ResponseWriter, messages []string) {
	writeJSON(w, http.StatusBadRequest, envelope{
		"code":    apperror.CodeMalformedBody,
		"message": "Malformed body",
		"errors":  messages,
	})
}

// decodeJSON reads and decodes a JSON request body, rejecting bodies over
// 1MB and unknown or trailing content.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return apperror.Validation([]string{"body must be valid JSON"})
	}
	if dec.More() {
		return apperror.Validation([]string{"body must contain a single JSON object"})
	}
	return nil
}
