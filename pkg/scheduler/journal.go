package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/feedrewriter/pkg/domain"
)

// runLog is the logger of one pass. Every line goes to lgr, lines above debug level are
// also appended to the journal tagged with the run source.
type runLog struct {
	ctx    context.Context
	store  JournalStore
	state  *State
	source domain.RunSource
	window time.Duration
	now    func() time.Time
}

func (s *Scheduler) runLog(ctx context.Context, source domain.RunSource) *runLog {
	return &runLog{ctx: ctx, store: s.Store, state: s.state, source: source, window: s.cfg.JournalDedup, now: s.now}
}

// Logf implements lgr.L
func (l *runLog) Logf(format string, args ...any) {
	lgr.Printf(format, args...)

	msg := fmt.Sprintf(format, args...)
	level, text := splitLevel(msg)
	switch level {
	case "TRACE", "DEBUG":
		return
	case "INFO", "":
		msg = text
	}

	now := l.now()
	if !l.state.fresh(string(l.source)+msg, now, l.window) {
		return
	}
	entry := domain.LogEntry{Timestamp: now, Source: l.source, Message: msg}
	if err := l.store.AddLogEntry(context.WithoutCancel(l.ctx), entry); err != nil {
		lgr.Printf("[WARN] can't write journal entry: %v", err)
	}
}

// splitLevel separates "[LEVEL] text" into its parts
func splitLevel(msg string) (level, text string) {
	if !strings.HasPrefix(msg, "[") {
		return "", msg
	}
	end := strings.Index(msg, "]")
	if end < 0 {
		return "", msg
	}
	return msg[1:end], strings.TrimSpace(msg[end+1:])
}
