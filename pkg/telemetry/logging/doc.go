// Package logging builds the structured loggers used by the host
// components (runtime, catalog and CLI).
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:      "info",
//	    Format:     "json",
//	    RedactKeys: []string{"password", "token"},
//	})
//
//	logger.Info("catalog reloaded", "rule_sets", 4, "token", "abc") // token=***
//
//	ctx = logging.WithExecutionID(ctx, id)
//	logger.InfoContext(ctx, "rendered") // includes execution_id
//
// The result is a plain *slog.Logger. Components that accept a logger
// fall back to slog.Default() when given nil.
//
// # Redaction
//
// Attributes whose key is listed in RedactKeys are replaced by "***".
// Bearer tokens inside any string value are masked as well.
package logging
