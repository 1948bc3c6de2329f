package logging

import (
	"context"
	"log/slog"
)

// Context keys for common log fields.
type contextKey string

const (
	// ExecutionIDKey is the context key for execution IDs.
	ExecutionIDKey contextKey = "execution_id"

	// RuleSetKey is the context key for the rule set being evaluated.
	RuleSetKey contextKey = "rule_set"

	// TemplateKey is the context key for the template being rendered.
	TemplateKey contextKey = "template"
)

var contextKeys = []contextKey{ExecutionIDKey, RuleSetKey, TemplateKey}

// WithExecutionID adds an execution ID to the context.
func WithExecutionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ExecutionIDKey, id)
}

// GetExecutionID retrieves the execution ID from the context.
func GetExecutionID(ctx context.Context) string {
	return stringValue(ctx, ExecutionIDKey)
}

// WithRuleSet adds a rule set name to the context.
func WithRuleSet(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, RuleSetKey, name)
}

// GetRuleSet retrieves the rule set name from the context.
func GetRuleSet(ctx context.Context) string {
	return stringValue(ctx, RuleSetKey)
}

// WithTemplate adds a template name to the context.
func WithTemplate(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, TemplateKey, name)
}

// GetTemplate retrieves the template name from the context.
func GetTemplate(ctx context.Context) string {
	return stringValue(ctx, TemplateKey)
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// contextAttrs returns the log fields stored in ctx.
func contextAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr
	for _, key := range contextKeys {
		if v := stringValue(ctx, key); v != "" {
			attrs = append(attrs, slog.String(string(key), v))
		}
	}
	return attrs
}

// contextHandler adds context fields to each record.
type contextHandler struct {
	slog.Handler
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs := contextAttrs(ctx); len(attrs) > 0 {
		r = r.Clone()
		r.AddAttrs(attrs...)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name)}
}
