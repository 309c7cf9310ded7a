package chat

import "log/slog"

// BestEffort runs an advisory write and discards its outcome. Failures are
// logged at Warn and never retried or surfaced: read flags and last-activity
// timestamps are tolerably stale, unlike the append-only message log which
// always goes through error-returning paths.
func BestEffort(logger *slog.Logger, action string, op func() error) {
	if err := op(); err != nil && logger != nil {
		logger.Warn("best-effort write failed", "action", action, "error", err)
	}
}
