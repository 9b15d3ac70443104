// SPDX-License-Identifier: Apache-2.0

package decoders

import (
	"context"
	"fmt"
	"strings"

	"github.com/storagegate/underwrite/internal/intake"
	"github.com/storagegate/underwrite/internal/pipeline"
)

// MultiDocDecoder reads a batch file of YAML documents separated by '---',
// one candidate per document.
type MultiDocDecoder struct{}

func NewMultiDocDecoder() *MultiDocDecoder {
	return &MultiDocDecoder{}
}

func (d *MultiDocDecoder) Name() string {
	return "multidoc"
}

// CanHandle returns true for the "batch" format hint or for content holding
// more than one YAML document.
func (d *MultiDocDecoder) CanHandle(source intake.Source) bool {
	if strings.EqualFold(source.Format, "batch") {
		return true
	}
	return len(splitDocuments(string(source.Content))) > 1
}

// Decode fails on the first malformed document so a batch is never run with
// silently missing candidates.
func (d *MultiDocDecoder) Decode(_ context.Context, source intake.Source) ([]pipeline.BatchItem, error) {
	docs := splitDocuments(string(source.Content))
	items := make([]pipeline.BatchItem, 0, len(docs))
	for i, doc := range docs {
		item, err := intake.DecodeDocument([]byte(doc))
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i+1, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// splitDocuments splits on document separators and drops empty documents.
func splitDocuments(content string) []string {
	content = strings.TrimPrefix(strings.TrimSpace(content), "---")
	var docs []string
	for _, doc := range strings.Split(content, "\n---") {
		doc = strings.TrimSpace(doc)
		if doc == "" {
			continue
		}
		docs = append(docs, doc)
	}
	return docs
}
