// Package respond writes the JSON bodies shared by every handler.
// Errors are {"error": "..."}; confirmations are {"message": "..."}.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

// JSON encodes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("Failed to encode response body")
	}
}

// Error writes an error body.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// Message writes a confirmation body.
func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"message": message})
}

// Internal logs err and answers with a generic 500 carrying message.
func Internal(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, message string, err error) {
	log.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}).WithError(err).Error(message)
	Error(w, http.StatusInternalServerError, message)
}

// DecodeJSON reads the request body into dst. Unknown fields are allowed so
// older clients sending extra keys keep working.
func DecodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
