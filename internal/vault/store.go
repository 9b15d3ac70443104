// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPayload is returned by Insert for payloads Validate rejects.
var ErrInvalidPayload = errors.New("invalid vault payload")

// Filter narrows a Query. Zero fields match everything; Limit 0 means no
// limit. Results are newest first.
type Filter struct {
	OpportunityID string
	State         string
	Decision      string
	Limit         int
}

// Store persists run payloads.
type Store interface {
	Insert(ctx context.Context, p Payload) error
	Query(ctx context.Context, f Filter) ([]Payload, error)
	Close() error
}

func checkInsert(p Payload) error {
	if v := Validate(p); !v.Valid {
		return fmt.Errorf("%w: %s", ErrInvalidPayload, strings.Join(v.Errors, "; "))
	}
	if p.RunID == "" {
		return fmt.Errorf("%w: runId is required", ErrInvalidPayload)
	}
	return nil
}

func (f Filter) matches(p Payload) bool {
	if f.OpportunityID != "" && p.OpportunityID != f.OpportunityID {
		return false
	}
	if f.State != "" && !strings.EqualFold(p.State, f.State) {
		return false
	}
	if f.Decision != "" && !strings.EqualFold(string(p.Decision), f.Decision) {
		return false
	}
	return true
}
