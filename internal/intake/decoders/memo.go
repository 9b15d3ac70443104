// SPDX-License-Identifier: Apache-2.0

package decoders

import (
	"context"
	"errors"
	"strings"

	"github.com/storagegate/underwrite/internal/intake"
	"github.com/storagegate/underwrite/internal/pipeline"
)

// MemoDecoder reads a site memo: Markdown with the candidate in a YAML front
// matter block. When the front matter has no opportunityId, the first
// heading of the memo is used.
type MemoDecoder struct{}

func NewMemoDecoder() *MemoDecoder {
	return &MemoDecoder{}
}

func (d *MemoDecoder) Name() string {
	return "memo"
}

// CanHandle returns true for the "markdown" format hint, or for content that
// opens with front matter followed by Markdown headings.
func (d *MemoDecoder) CanHandle(source intake.Source) bool {
	switch strings.ToLower(source.Format) {
	case "markdown", "md":
		return true
	case "yaml", "yml", "json", "batch":
		// YAML comments look like headings.
		return false
	}
	_, body, ok := splitFrontMatter(string(source.Content))
	if !ok {
		return false
	}
	body = strings.TrimSpace(body)
	return strings.HasPrefix(body, "#") || strings.Contains(body, "\n#")
}

func (d *MemoDecoder) Decode(_ context.Context, source intake.Source) ([]pipeline.BatchItem, error) {
	front, body, ok := splitFrontMatter(string(source.Content))
	if !ok {
		return nil, errors.New("memo has no front matter block")
	}
	item, err := intake.DecodeDocument([]byte(front))
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(item.Candidate.OpportunityID) == "" {
		item.Candidate.OpportunityID = firstHeading(body)
	}
	return []pipeline.BatchItem{item}, nil
}

// splitFrontMatter separates a leading '---' delimited block from the rest.
func splitFrontMatter(content string) (front, body string, ok bool) {
	content = strings.TrimLeft(content, " \t\r\n")
	if !strings.HasPrefix(content, "---") {
		return "", "", false
	}
	rest := strings.TrimPrefix(content, "---")
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return "", "", false
	}
	front = rest[:end]
	body = rest[end+len("\n---"):]
	if nl := strings.Index(body, "\n"); nl >= 0 {
		body = body[nl+1:]
	} else {
		body = ""
	}
	return front, body, true
}

func firstHeading(body string) string {
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, "#") {
			return strings.TrimSpace(strings.TrimLeft(line, "#"))
		}
	}
	return ""
}
