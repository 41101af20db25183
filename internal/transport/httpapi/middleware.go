// internal/transport/httpapi/middleware.go
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"moodbrew/internal/common/errors"
	"moodbrew/internal/common/metrics"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

type ctxKey string

const ctxKeyRequestID ctxKey = "request_id"

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", reqID)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyRequestID, reqID)))
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyRequestID).(string)
	return id
}

func (h *Handler) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.logger.Error("handler panicked", map[string]interface{}{
					"panic":     fmt.Sprint(rec),
					"path":      r.URL.Path,
					"requestId": requestIDFrom(r.Context()),
				})
				writeError(w, http.StatusInternalServerError, &errors.StandardError{
					Code:    "INTERNAL_ERROR",
					Message: "internal server error",
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (h *Handler) observeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()

		h.logger.Debug("request served", map[string]interface{}{
			"method":     r.Method,
			"route":      route,
			"status":     rec.status,
			"durationMs": time.Since(start).Milliseconds(),
			"requestId":  requestIDFrom(r.Context()),
		})
	})
}

type envelope struct {
	Data  interface{}           `json:"data,omitempty"`
	Error *errors.StandardError `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeSuccess(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, envelope{Data: data})
}

func writeError(w http.ResponseWriter, status int, err *errors.StandardError) {
	writeJSON(w, status, envelope{Error: err})
}

// writeFailure maps err onto a status by its error category.
func (h *Handler) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := errors.Normalize(err)
	status := statusFor(stdErr.Code)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", map[string]interface{}{
			"path":      r.URL.Path,
			"code":      stdErr.Code,
			"error":     err.Error(),
			"requestId": requestIDFrom(r.Context()),
		})
	}
	writeError(w, status, stdErr)
}

func statusFor(code errors.ErrorCode) int {
	switch errors.GetErrorCategory(code) {
	case "VALIDATION":
		return http.StatusBadRequest
	case "CATALOG", "DATABASE":
		return http.StatusBadGateway
	case "CACHE":
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
