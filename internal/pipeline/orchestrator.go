// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/storagegate/underwrite/internal/logging"
	"github.com/storagegate/underwrite/internal/site"
	"github.com/storagegate/underwrite/internal/spoke"
	"github.com/storagegate/underwrite/internal/vault"
)

const blockedNote = "validation blocked"

// Orchestrator runs the gate and the spokes for one candidate at a time.
// It holds no per-run state and is safe for concurrent use.
type Orchestrator struct {
	set    *spoke.Set
	gate   *Gate
	mapper *vault.Mapper
	logger *zap.Logger
	audit  logging.AuditSink
	now    func() time.Time
	newID  func() string
}

type Option func(*Orchestrator)

// WithLogger sets the fallback logger used when the context carries none.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

func WithAuditSink(s logging.AuditSink) Option {
	return func(o *Orchestrator) {
		if s != nil {
			o.audit = s
		}
	}
}

// WithClock replaces time.Now for run timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithIDGenerator replaces the UUID run id generator.
func WithIDGenerator(f func() string) Option {
	return func(o *Orchestrator) { o.newID = f }
}

func New(set *spoke.Set, opts ...Option) (*Orchestrator, error) {
	if set == nil {
		return nil, errors.New("spoke set is required")
	}
	gate, err := NewGate()
	if err != nil {
		return nil, err
	}
	o := &Orchestrator{
		set:    set,
		gate:   gate,
		mapper: vault.NewMapper(),
		logger: zap.NewNop(),
		audit:  logging.NopSink{},
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Evaluate underwrites one candidate. It never returns an error: spoke
// failures are contained in their Result, and a gate refusal comes back as
// a result with Success false. The candidate is not modified.
func (o *Orchestrator) Evaluate(ctx context.Context, c site.CandidateSite, opts site.Options) EvaluationResult {
	start := time.Now()
	runID := opts.RunID
	if runID == "" {
		runID = o.newID()
	}

	logger := logging.FromContextOr(ctx, o.logger).With(zap.String("run_id", runID), zap.String("opportunity_id", c.OpportunityID))
	ctx = logging.WithLogger(ctx, logger)

	in := spoke.Resolve(c, opts, o.set.Doctrine)
	report := o.gate.Check(in, c)
	for _, w := range report.Warnings {
		logger.Warn("validation warning", zap.String("field", w.Field), zap.String("message", w.Message))
	}

	res := EvaluationResult{
		RunID:             runID,
		Timestamp:         o.now().UTC().Format(time.RFC3339),
		ValidationSkipped: opts.SkipValidation,
		Validation:        &report,
	}

	if !report.Valid && !opts.SkipValidation {
		o.block(&res, in)
		logger.Warn("evaluation blocked", zap.Strings("blockers", report.BlockerMessages()))
		return res
	}
	if !report.Valid {
		logger.Warn("validation skipped with blockers", zap.Strings("blockers", report.BlockerMessages()))
	}

	s := o.set

	// Stage 1: independent analyses.
	g := new(errgroup.Group)
	g.Go(func() error { res.Zoning = run(ctx, o, runID, s.Zoning, in); return nil })
	g.Go(func() error { res.Permits = run(ctx, o, runID, s.Permit, in); return nil })
	g.Go(func() error { res.Civil = run(ctx, o, runID, s.Civil, in); return nil })
	g.Go(func() error { res.Pricing = run(ctx, o, runID, s.Pricing, in); return nil })
	g.Go(func() error { res.Momentum = run(ctx, o, runID, s.Momentum, in); return nil })
	g.Go(func() error { res.Competitive = run(ctx, o, runID, s.Competitive, in); return nil })
	_ = g.Wait()

	// Stage 2: analyses that read stage 1.
	g = new(errgroup.Group)
	g.Go(func() error {
		res.FusionDemand = run(ctx, o, runID, s.Fusion, spoke.FusionInput{Inputs: in, Momentum: res.Momentum})
		return nil
	})
	g.Go(func() error {
		res.Feasibility = run(ctx, o, runID, s.Feasibility, spoke.FeasibilityInput{Inputs: in, Pricing: res.Pricing, Civil: res.Civil})
		return nil
	})
	_ = g.Wait()

	res.ReverseFeasibility = run(ctx, o, runID, s.Reverse, spoke.ReverseInput{Feasibility: res.Feasibility})
	res.Verdict = run(ctx, o, runID, s.Verdict, spoke.VerdictInput{
		Zoning:      res.Zoning,
		Permit:      res.Permits,
		Civil:       res.Civil,
		Pricing:     res.Pricing,
		Momentum:    res.Momentum,
		Fusion:      res.FusionDemand,
		Competitive: res.Competitive,
		Feasibility: res.Feasibility,
		Reverse:     res.ReverseFeasibility,
	})

	res.VaultPayload = o.mapper.Map(res.vaultSource(in))
	res.Success = true

	v := res.Verdict.Snapshot()
	logger.Info("evaluation completed",
		zap.String("decision", string(v.Decision)),
		zap.Float64("score", v.Score),
		zap.String("verdict_status", string(res.Verdict.Status())),
		zap.Duration("duration", time.Since(start)),
	)
	return res
}

// block fills every spoke with its stub default and records the blockers.
func (o *Orchestrator) block(res *EvaluationResult, in spoke.Inputs) {
	s := o.set
	res.Zoning = spoke.Stub(s.Zoning.Default(), blockedNote)
	res.Permits = spoke.Stub(s.Permit.Default(), blockedNote)
	res.Civil = spoke.Stub(s.Civil.Default(), blockedNote)
	res.Pricing = spoke.Stub(s.Pricing.Default(), blockedNote)
	res.Momentum = spoke.Stub(s.Momentum.Default(), blockedNote)
	res.FusionDemand = spoke.Stub(s.Fusion.Default(), blockedNote)
	res.Competitive = spoke.Stub(s.Competitive.Default(), blockedNote)
	res.Feasibility = spoke.Stub(s.Feasibility.Default(), blockedNote)
	res.ReverseFeasibility = spoke.Stub(s.Reverse.Default(), blockedNote)

	v := s.Verdict.Default()
	v.Decision = spoke.DecisionWalk
	v.Score = 0
	v.Confidence = 0
	res.Verdict = spoke.Stub(v, blockedNote)

	res.VaultPayload = o.mapper.Map(res.vaultSource(in))
	res.Success = false
	res.Error = fmt.Sprintf("%s: %s", blockedNote, strings.Join(res.Validation.BlockerMessages(), "; "))
}

// run calls one spoke and converts an error, a panic or an untagged result
// into a Failed result carrying the spoke's default. Every call is audited.
func run[In, Out any](ctx context.Context, o *Orchestrator, runID string, s spoke.Spoke[In, Out], in In) (res spoke.Result[Out]) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = spoke.Failed(s.Default(), fmt.Errorf("panic in %s: %v", s.Name(), r))
		}
		o.audit.Record(ctx, logging.AuditEvent{
			RunID:    runID,
			Spoke:    s.Name(),
			Status:   string(res.Status()),
			Notes:    res.Notes(),
			Duration: time.Since(start),
		})
	}()

	if err := ctx.Err(); err != nil {
		return spoke.Failed(s.Default(), err)
	}
	r, err := s.Run(ctx, in)
	if err != nil {
		return spoke.Failed(s.Default(), err)
	}
	if r.Status() == "" {
		return spoke.Failed(s.Default(), fmt.Errorf("%s returned an untagged result", s.Name()))
	}
	return r
}

// Persist records a successful run in store. Blocked runs are refused with
// ErrBlocked before the store is touched.
func Persist(ctx context.Context, store vault.Store, res EvaluationResult) error {
	if err := res.Err(); err != nil {
		return err
	}
	if err := store.Insert(ctx, res.VaultPayload); err != nil {
		return fmt.Errorf("persist run %s: %w", res.RunID, err)
	}
	logging.FromContext(ctx).Debug("run persisted", zap.String("run_id", res.RunID))
	return nil
}
