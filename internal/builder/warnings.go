package builder

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"

	"git.home.luguber.info/inful/docindex/internal/logfields"
	"git.home.luguber.info/inful/docindex/internal/metrics"
)

// WarningSink emits category-tagged build warnings through slog, honoring the
// configured suppression patterns.
type WarningSink struct {
	patterns []string
	recorder metrics.Recorder
	emitted  atomic.Int64
}

// NewWarningSink creates a sink suppressing the given category patterns.
func NewWarningSink(patterns []string, recorder metrics.Recorder) *WarningSink {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &WarningSink{patterns: patterns, recorder: recorder}
}

// Warn logs a warning unless its category is suppressed.
func (w *WarningSink) Warn(category, msg string, attrs ...slog.Attr) {
	if Suppressed(category, w.patterns) {
		return
	}
	w.emitted.Add(1)
	w.recorder.IncWarning(category)
	all := append([]slog.Attr{logfields.Category(category)}, attrs...)
	slog.LogAttrs(context.Background(), slog.LevelWarn, msg, all...)
}

// Emitted returns how many warnings were actually logged.
func (w *WarningSink) Emitted() int64 {
	return w.emitted.Load()
}

// Suppressed reports whether a dotted warning category (e.g. "ref.internal")
// matches any of the suppression patterns. A pattern suppresses the category
// when it equals it, names a parent segment ("ref" covers "ref.internal"),
// or uses a trailing wildcard ("ref.*").
func Suppressed(category string, patterns []string) bool {
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		if pattern == category {
			return true
		}
		if base, ok := strings.CutSuffix(pattern, ".*"); ok {
			if category == base || strings.HasPrefix(category, base+".") {
				return true
			}
			continue
		}
		if strings.HasPrefix(category, pattern+".") {
			return true
		}
	}
	return false
}
