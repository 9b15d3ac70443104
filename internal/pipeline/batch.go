// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/storagegate/underwrite/internal/logging"
	"github.com/storagegate/underwrite/internal/site"
)

// BatchItem is one candidate with its run options.
type BatchItem struct {
	Candidate site.CandidateSite `json:"candidate" yaml:"candidate"`
	Options   site.Options       `json:"options,omitempty" yaml:"options"`
}

// BatchOptions bound a batch. Concurrency below 1 is treated as 1; a zero
// Timeout disables the per-item deadline.
type BatchOptions struct {
	Concurrency int
	Timeout     time.Duration
}

// BatchFailure records an item that produced no successful result. Result is
// set for blocked runs so their validation report is not lost.
type BatchFailure struct {
	Index         int               `json:"index"`
	OpportunityID string            `json:"opportunityId"`
	Error         string            `json:"error"`
	Result        *EvaluationResult `json:"result,omitempty"`
}

// BatchResult keeps input order in both slices.
type BatchResult struct {
	Results  []EvaluationResult `json:"results"`
	Failures []BatchFailure     `json:"failures"`
}

type batchSlot struct {
	result EvaluationResult
	err    error
}

// EvaluateBatch evaluates items with at most Concurrency in flight. An item
// that exceeds Timeout is reported as a failure; its evaluation is abandoned
// and its late result discarded.
func (o *Orchestrator) EvaluateBatch(ctx context.Context, items []BatchItem, opts BatchOptions) BatchResult {
	limit := opts.Concurrency
	if limit < 1 {
		limit = 1
	}
	logger := logging.FromContextOr(ctx, o.logger)
	logger.Info("batch started",
		zap.Int("items", len(items)),
		zap.Int("concurrency", limit),
		zap.Duration("timeout", opts.Timeout),
	)

	slots := make([]batchSlot, len(items))
	g := new(errgroup.Group)
	g.SetLimit(limit)
	for i, item := range items {
		g.Go(func() error {
			res, err := o.evaluateWithin(ctx, item, opts.Timeout)
			slots[i] = batchSlot{result: res, err: err}
			return nil
		})
	}
	_ = g.Wait()

	out := BatchResult{Results: []EvaluationResult{}, Failures: []BatchFailure{}}
	for i, slot := range slots {
		oppID := items[i].Candidate.OpportunityID
		switch {
		case slot.err != nil:
			out.Failures = append(out.Failures, BatchFailure{Index: i, OpportunityID: oppID, Error: slot.err.Error()})
		case !slot.result.Success:
			res := slot.result
			out.Failures = append(out.Failures, BatchFailure{Index: i, OpportunityID: oppID, Error: res.Error, Result: &res})
		default:
			out.Results = append(out.Results, slot.result)
		}
	}

	logger.Info("batch completed",
		zap.Int("succeeded", len(out.Results)),
		zap.Int("failed", len(out.Failures)),
	)
	return out
}

func (o *Orchestrator) evaluateWithin(ctx context.Context, item BatchItem, timeout time.Duration) (EvaluationResult, error) {
	if err := ctx.Err(); err != nil {
		return EvaluationResult{}, err
	}

	done := make(chan EvaluationResult, 1)
	go func() {
		done <- o.Evaluate(ctx, item.Candidate, item.Options)
	}()

	var deadline <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		deadline = t.C
	}

	select {
	case res := <-done:
		return res, nil
	case <-deadline:
		return EvaluationResult{}, fmt.Errorf("evaluation timed out after %s", timeout)
	case <-ctx.Done():
		return EvaluationResult{}, ctx.Err()
	}
}
