// SPDX-License-Identifier: Apache-2.0

package decoders

import (
	"context"
	"strings"

	"github.com/storagegate/underwrite/internal/intake"
	"github.com/storagegate/underwrite/internal/pipeline"
)

// DocumentDecoder reads a single YAML or JSON candidate file. A top-level
// sequence is read as a list of candidates.
type DocumentDecoder struct{}

func NewDocumentDecoder() *DocumentDecoder {
	return &DocumentDecoder{}
}

func (d *DocumentDecoder) Name() string {
	return "document"
}

func (d *DocumentDecoder) CanHandle(source intake.Source) bool {
	switch strings.ToLower(source.Format) {
	case "yaml", "yml", "json":
		return true
	}
	content := trimDocumentMarker(string(source.Content))
	if strings.HasPrefix(content, "{") || strings.HasPrefix(content, "[") || strings.HasPrefix(content, "- ") {
		return true
	}
	// Plain YAML: key: value at the start
	if len(content) > 0 && strings.Contains(strings.SplitN(content, "\n", 2)[0], ":") {
		return !strings.HasPrefix(content, "#")
	}
	return false
}

func (d *DocumentDecoder) Decode(_ context.Context, source intake.Source) ([]pipeline.BatchItem, error) {
	content := trimDocumentMarker(string(source.Content))
	if strings.HasPrefix(content, "[") || strings.HasPrefix(content, "- ") {
		return intake.DecodeList([]byte(content))
	}
	item, err := intake.DecodeDocument([]byte(content))
	if err != nil {
		return nil, err
	}
	return []pipeline.BatchItem{item}, nil
}

// trimDocumentMarker drops a lone leading "---" line so a single document
// written with an explicit start marker is still recognised.
func trimDocumentMarker(content string) string {
	content = strings.TrimSpace(content)
	first, rest, found := strings.Cut(content, "\n")
	if strings.TrimSpace(first) != "---" {
		return content
	}
	if !found {
		return ""
	}
	return strings.TrimSpace(rest)
}
