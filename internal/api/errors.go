package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/MJE43/fair-go/internal/engine"
	"github.com/MJE43/fair-go/internal/games"
	"github.com/MJE43/fair-go/internal/scan"
	"github.com/MJE43/fair-go/internal/store"
)

// errUnavailable marks endpoints whose backing service was not configured.
var errUnavailable = errors.New("service not configured")

// ErrorBuilder helps construct structured errors with context.
type ErrorBuilder struct {
	errType   string
	message   string
	context   map[string]any
	requestID string
}

func NewError(errType, message string) *ErrorBuilder {
	return &ErrorBuilder{
		errType: errType,
		message: message,
		context: make(map[string]any),
	}
}

func (eb *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	eb.context[key] = value
	return eb
}

func (eb *ErrorBuilder) WithRequestID(requestID string) *ErrorBuilder {
	eb.requestID = requestID
	return eb
}

// WithCause records err's message under "cause".
func (eb *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	if err != nil {
		eb.context["cause"] = err.Error()
	}
	return eb
}

func (eb *ErrorBuilder) Build() EngineError {
	e := EngineError{
		Type:      eb.errType,
		Message:   eb.message,
		RequestID: eb.requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if len(eb.context) > 0 {
		e.Context = eb.context
	}
	return e
}

// classify maps a domain error to its error type and HTTP status.
func classify(err error) (string, int) {
	switch {
	case errors.Is(err, games.ErrUnknownGame):
		return ErrTypeGameNotFound, http.StatusNotFound
	case errors.Is(err, games.ErrInvalidConfig),
		errors.Is(err, games.ErrWrongMode),
		errors.Is(err, games.ErrNoMultiplier):
		return ErrTypeInvalidParams, http.StatusBadRequest
	case errors.Is(err, engine.ErrInvalidSeedMaterial):
		return ErrTypeInvalidSeed, http.StatusBadRequest
	case errors.Is(err, engine.ErrInvalidGameHash):
		return ErrTypeInvalidGameHash, http.StatusBadRequest
	case errors.Is(err, scan.ErrInvalidRequest):
		return ErrTypeValidation, http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return ErrTypeNotFound, http.StatusNotFound
	case errors.Is(err, store.ErrRevealed):
		return ErrTypeRevealed, http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ErrTypeTimeout, http.StatusRequestTimeout
	case errors.Is(err, errUnavailable):
		return ErrTypeServiceUnavailable, http.StatusServiceUnavailable
	default:
		return ErrTypeInternal, http.StatusInternalServerError
	}
}

// ErrorHandler turns errors into logged JSON responses.
type ErrorHandler struct {
	log zerolog.Logger
}

func NewErrorHandler(log zerolog.Logger) *ErrorHandler {
	return &ErrorHandler{log: log}
}

// HandleError classifies err and writes the matching response. Internal
// errors are logged in full but only a generic message is returned.
func (eh *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	errType, status := classify(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Internal server error"
	}
	b := NewError(errType, message).
		WithRequestID(middleware.GetReqID(r.Context()))

	var cfgErr *games.ConfigError
	if errors.As(err, &cfgErr) {
		b.WithContext("game", string(cfgErr.Game))
		if cfgErr.Field != "" {
			b.WithContext("field", cfgErr.Field)
		}
	}
	if status == http.StatusInternalServerError {
		b.WithCause(err)
	}
	eh.respond(w, r, status, b.Build())
}

// HandleValidationError reports a malformed request field.
func (eh *ErrorHandler) HandleValidationError(w http.ResponseWriter, r *http.Request, field, message string) {
	engineErr := NewError(ErrTypeValidation, fmt.Sprintf("Validation failed: %s", message)).
		WithRequestID(middleware.GetReqID(r.Context())).
		WithContext("field", field).
		Build()
	eh.respond(w, r, http.StatusBadRequest, engineErr)
}

func (eh *ErrorHandler) respond(w http.ResponseWriter, r *http.Request, status int, engineErr EngineError) {
	eh.logError(r, engineErr, status)
	eh.writeErrorResponse(w, status, engineErr)
}

// logError logs at warn for client errors and error for server errors.
// Context keys that could carry seeds are never logged.
func (eh *ErrorHandler) logError(r *http.Request, engineErr EngineError, status int) {
	category := GetErrorCategory(engineErr.Type)
	ev := eh.log.Warn()
	if status >= http.StatusInternalServerError {
		ev = eh.log.Error()
	}
	fields := make(map[string]any, len(engineErr.Context))
	for k, v := range engineErr.Context {
		if k == "server_seed" || k == "client_seed" {
			continue
		}
		fields[k] = v
	}
	ev.Str("type", engineErr.Type).
		Str("category", string(category)).
		Int("status", status).
		Str("request_id", engineErr.RequestID).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Fields(fields).
		Msg(engineErr.Message)
}

func (eh *ErrorHandler) writeErrorResponse(w http.ResponseWriter, status int, engineErr EngineError) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", EngineVersion)
	w.Header().Set("X-Error-Type", engineErr.Type)
	w.Header().Set("X-Error-Category", string(GetErrorCategory(engineErr.Type)))
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(engineErr); err != nil {
		eh.log.Error().Err(err).Msg("write error response")
	}
}

// RecoveryHandler converts panics into 500 responses.
func (eh *ErrorHandler) RecoveryHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}
			requestID := middleware.GetReqID(r.Context())
			eh.log.Error().
				Str("request_id", requestID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Interface("panic", rvr).
				Msg("panic recovered")

			engineErr := NewError(ErrTypeInternal, "Internal server error").
				WithRequestID(requestID).
				Build()
			eh.writeErrorResponse(w, http.StatusInternalServerError, engineErr)
		}()
		next.ServeHTTP(w, r)
	})
}
