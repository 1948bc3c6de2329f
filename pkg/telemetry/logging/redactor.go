package logging

import (
	"log/slog"
	"regexp"
	"strings"
)

// Redacted replaces masked values.
const Redacted = "***"

// bearerPattern catches credentials embedded in otherwise harmless values,
// such as an Authorization header echoed into an error message.
var bearerPattern = regexp.MustCompile(`(?i)(bearer\s+)[a-z0-9._~+/=-]+`)

// Redactor masks sensitive attributes before they reach the handler.
type Redactor struct {
	keys map[string]bool
}

// NewRedactor creates a Redactor masking the given attribute keys.
func NewRedactor(keys []string) *Redactor {
	r := &Redactor{keys: make(map[string]bool, len(keys))}
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			r.keys[strings.ToLower(k)] = true
		}
	}
	return r
}

// IsSensitive reports whether values under key are masked.
func (r *Redactor) IsSensitive(key string) bool {
	return r.keys[strings.ToLower(key)]
}

// RedactString masks bearer tokens inside s.
func (r *Redactor) RedactString(s string) string {
	return bearerPattern.ReplaceAllString(s, "${1}"+Redacted)
}

// ReplaceAttr is a slog.HandlerOptions.ReplaceAttr hook. Groups are
// descended by slog itself, so only leaf attributes are seen here.
func (r *Redactor) ReplaceAttr(_ []string, a slog.Attr) slog.Attr {
	if r.IsSensitive(a.Key) {
		return slog.String(a.Key, Redacted)
	}
	if a.Value.Kind() == slog.KindString {
		if s := a.Value.String(); bearerPattern.MatchString(s) {
			return slog.String(a.Key, r.RedactString(s))
		}
	}
	return a
}
