// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Context key types for storing values in context
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// OperatorIDKey is the context key for the authenticated operator ID
	OperatorIDKey contextKey = "operator_id"
	// SourceKey is the context key for the intake source name
	SourceKey contextKey = "source"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithContext returns a logger with context values extracted.
// Supports request_id, operator_id, and source from context.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	newLogger := l

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		newLogger = newLogger.WithRequestID(requestID)
	}

	if operatorID, ok := ctx.Value(OperatorIDKey).(string); ok && operatorID != "" {
		newLogger = newLogger.WithOperatorID(operatorID)
	}

	if source, ok := ctx.Value(SourceKey).(string); ok && source != "" {
		newLogger = &Logger{
			Logger: newLogger.With(slog.String("source", source)),
		}
	}

	return newLogger
}

// WithRequestID returns a logger with request ID
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("request_id", requestID)),
	}
}

// WithOperatorID returns a logger with operator ID
func (l *Logger) WithOperatorID(operatorID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("operator_id", operatorID)),
	}
}

// HTTPRequest logs an HTTP request
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// HTTPError logs an HTTP error
func (l *Logger) HTTPError(method, path string, status int, err error, clientIP string) {
	l.Error("http_error",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.String("error", err.Error()),
		slog.String("client_ip", clientIP),
	)
}

// IntakeOutcome logs the outcome of processing one submission
func (l *Logger) IntakeOutcome(source, outcome, leadID, agentID string) {
	attrs := []any{
		slog.String("source", source),
		slog.String("outcome", outcome),
	}
	if leadID != "" {
		attrs = append(attrs, slog.String("lead_id", leadID))
	}
	if agentID != "" {
		attrs = append(attrs, slog.String("agent_id", agentID))
	}
	l.Info("intake_outcome", attrs...)
}

// DatabaseError logs database errors
func (l *Logger) DatabaseError(operation string, err error) {
	l.Error("database_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// RateLimitExceeded logs rate limit events
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
