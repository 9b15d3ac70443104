// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemStore implements Store in memory.
type MemStore struct {
	mu       sync.RWMutex
	payloads map[string]Payload
}

func NewMemStore() *MemStore {
	return &MemStore{payloads: make(map[string]Payload)}
}

func (s *MemStore) Insert(_ context.Context, p Payload) error {
	if err := checkInsert(p); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.payloads[p.RunID]; dup {
		return fmt.Errorf("insert payload %s: run id already recorded", p.RunID)
	}
	s.payloads[p.RunID] = p
	return nil
}

func (s *MemStore) Query(_ context.Context, f Filter) ([]Payload, error) {
	s.mu.RLock()
	out := []Payload{}
	for _, p := range s.payloads {
		if f.matches(p) {
			out = append(out, p)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp > out[j].Timestamp
		}
		return out[i].RunID > out[j].RunID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *MemStore) Close() error { return nil }
