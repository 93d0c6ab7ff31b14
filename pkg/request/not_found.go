package request

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Jacobbrewer1/broker/pkg/logging"
)

// NotFoundHandler returns a handler that returns a 404 response.
func NotFoundHandler(l *slog.Logger) http.HandlerFunc {
	return messageHandler(l, http.StatusNotFound, "Not found")
}

// MethodNotAllowedHandler returns a handler that returns a 405 response.
func MethodNotAllowedHandler(l *slog.Logger) http.HandlerFunc {
	return messageHandler(l, http.StatusMethodNotAllowed, "Method not allowed")
}

// Encode writes msg as JSON with the given status code.
func Encode(l *slog.Logger, w http.ResponseWriter, status int, msg any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		l.Error("Error encoding response", slog.String(logging.KeyError, err.Error()))
	}
}

func messageHandler(l *slog.Logger, status int, text string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		Encode(l, w, status, NewMessage(text))
	}
}
