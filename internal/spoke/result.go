// SPDX-License-Identifier: Apache-2.0

package spoke

import (
	"encoding/json"
	"fmt"
)

// Status tags every spoke result.
type Status string

const (
	StatusOK    Status = "ok"
	StatusStub  Status = "stub"
	StatusError Status = "error"
)

// Result is the tagged union every spoke returns: Ok(T) | Stub(T) | Error(message).
//
// The value is unexported so callers cannot read it without going through
// Switch or Resolve, both of which force the non-ok branches to be handled.
// A Stub or Error result always carries the spoke's documented default, never
// a zero value pretending to be data.
type Result[T any] struct {
	status Status
	notes  string
	value  T
}

// Ok wraps a computed value.
func Ok[T any](v T, notes string) Result[T] {
	return Result[T]{status: StatusOK, notes: notes, value: v}
}

// Stub wraps a documented default used because inputs were missing or the
// analysis was switched off.
func Stub[T any](def T, notes string) Result[T] {
	return Result[T]{status: StatusStub, notes: notes, value: def}
}

// Failed records an execution error. def is the spoke's stub default.
func Failed[T any](def T, err error) Result[T] {
	msg := "unknown error"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return Result[T]{status: StatusError, notes: msg, value: def}
}

func (r Result[T]) Status() Status { return r.status }
func (r Result[T]) Notes() string  { return r.notes }
func (r Result[T]) IsOK() bool     { return r.status == StatusOK }

// Switch dispatches on the tag. All three branches are mandatory.
func Switch[T, R any](r Result[T], ok func(T) R, stub func(T, string) R, failed func(T, string) R) R {
	switch r.status {
	case StatusOK:
		return ok(r.value)
	case StatusStub:
		return stub(r.value, r.notes)
	default:
		return failed(r.value, r.notes)
	}
}

// Resolve returns the computed value when ok, otherwise def. The boolean
// reports whether the value came from a real computation.
func (r Result[T]) Resolve(def T) (T, bool) {
	if r.status == StatusOK {
		return r.value, true
	}
	return def, false
}

// Snapshot exposes the carried value regardless of tag. It exists for the
// flattening stages (vault, report) that record stub defaults verbatim
// alongside the status; analysis code must use Switch or Resolve.
func (r Result[T]) Snapshot() T { return r.value }

type resultJSON[T any] struct {
	Status Status `json:"status"`
	Notes  string `json:"notes"`
	Data   T      `json:"data"`
}

func (r Result[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON[T]{Status: r.status, Notes: r.notes, Data: r.value})
}

func (r *Result[T]) UnmarshalJSON(b []byte) error {
	var raw resultJSON[T]
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch raw.Status {
	case StatusOK, StatusStub, StatusError:
	default:
		return fmt.Errorf("unknown result status %q", raw.Status)
	}
	r.status, r.notes, r.value = raw.Status, raw.Notes, raw.Data
	return nil
}
