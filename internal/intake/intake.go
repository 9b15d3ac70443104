// SPDX-License-Identifier: Apache-2.0

package intake

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/storagegate/underwrite/internal/pipeline"
	"github.com/storagegate/underwrite/internal/site"
)

// Source describes raw candidate input.
type Source struct {
	// Content is the raw file content.
	Content []byte
	Format  string
	ID      string
}

// Decoder turns one kind of input file into batch items.
type Decoder interface {
	CanHandle(source Source) bool
	Decode(ctx context.Context, source Source) ([]pipeline.BatchItem, error)
	Name() string
}

// envelope is the wrapped document form that carries run options next to
// the candidate.
type envelope struct {
	Candidate *site.CandidateSite `yaml:"candidate"`
	Options   site.Options        `yaml:"options"`
}

// DecodeDocument reads one YAML or JSON document holding either a bare
// candidate or a {candidate, options} envelope.
func DecodeDocument(content []byte) (pipeline.BatchItem, error) {
	if strings.TrimSpace(string(content)) == "" {
		return pipeline.BatchItem{}, errors.New("document is empty")
	}

	var env envelope
	if err := yaml.Unmarshal(content, &env); err != nil {
		return pipeline.BatchItem{}, fmt.Errorf("failed to unmarshal candidate: %w", err)
	}
	if env.Candidate != nil {
		return pipeline.BatchItem{Candidate: *env.Candidate, Options: env.Options}, nil
	}

	var c site.CandidateSite
	if err := yaml.Unmarshal(content, &c); err != nil {
		return pipeline.BatchItem{}, fmt.Errorf("failed to unmarshal candidate: %w", err)
	}
	return pipeline.BatchItem{Candidate: c}, nil
}

// DecodeList reads a top-level YAML or JSON sequence of documents.
func DecodeList(content []byte) ([]pipeline.BatchItem, error) {
	var raw []any
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal candidate list: %w", err)
	}
	items := make([]pipeline.BatchItem, 0, len(raw))
	for i, entry := range raw {
		b, err := yaml.Marshal(entry)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
		item, err := DecodeDocument(b)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
		items = append(items, item)
	}
	return items, nil
}
