// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// AuditEvent records the outcome of one spoke call within a run.
type AuditEvent struct {
	RunID    string        `json:"runId"`
	Spoke    string        `json:"spoke"`
	Status   string        `json:"status"`
	Notes    string        `json:"notes"`
	Duration time.Duration `json:"duration"`
}

// AuditSink receives one event per spoke call. Implementations must be safe
// for concurrent use: spokes within a stage report in parallel.
type AuditSink interface {
	Record(ctx context.Context, ev AuditEvent)
}

// ZapAuditSink writes events through the context logger, falling back to
// its own. A context logger already carries the run scope, so run_id is only
// added on the fallback path.
type ZapAuditSink struct {
	logger *zap.Logger
}

func NewZapAuditSink(l *zap.Logger) *ZapAuditSink {
	if l == nil {
		l = zap.NewNop()
	}
	return &ZapAuditSink{logger: l.Named("audit")}
}

func (s *ZapAuditSink) Record(ctx context.Context, ev AuditEvent) {
	fields := []zap.Field{
		zap.String("spoke", ev.Spoke),
		zap.String("status", ev.Status),
		zap.Duration("duration", ev.Duration),
		zap.String("notes", ev.Notes),
	}
	logger, ok := carried(ctx)
	if ok {
		logger = logger.Named("audit")
	} else {
		logger = s.logger
		fields = append(fields, zap.String("run_id", ev.RunID))
	}
	if ev.Status == "ok" {
		logger.Debug("spoke completed", fields...)
		return
	}
	logger.Warn("spoke degraded", fields...)
}

// MemorySink keeps events in memory.
type MemorySink struct {
	mu     sync.Mutex
	events []AuditEvent
}

func NewMemorySink() *MemorySink { return &MemorySink{} }

func (s *MemorySink) Record(_ context.Context, ev AuditEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// Events returns a copy of everything recorded so far.
func (s *MemorySink) Events() []AuditEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]AuditEvent(nil), s.events...)
}

// ForRun filters events by run id.
func (s *MemorySink) ForRun(runID string) []AuditEvent {
	var out []AuditEvent
	for _, ev := range s.Events() {
		if ev.RunID == runID {
			out = append(out, ev)
		}
	}
	return out
}

// NopSink drops every event.
type NopSink struct{}

func (NopSink) Record(context.Context, AuditEvent) {}
