// SPDX-License-Identifier: Apache-2.0

package intake

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/storagegate/underwrite/internal/pipeline"
)

type Registry struct {
	decoders []Decoder
}

// NewRegistry creates a Registry that tries decoders in the given order.
func NewRegistry(decoders ...Decoder) *Registry {
	return &Registry{decoders: decoders}
}

// Decoded is the output of a successful decode.
type Decoded struct {
	Items       []pipeline.BatchItem
	DecoderUsed string
}

func (r *Registry) Decode(ctx context.Context, source Source) ([]pipeline.BatchItem, error) {
	result, err := r.DecodeWithMeta(ctx, source)
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}

func (r *Registry) DecodeWithMeta(ctx context.Context, source Source) (Decoded, error) {
	decoder, err := r.selectDecoder(source)
	if err != nil {
		return Decoded{}, err
	}

	items, err := decoder.Decode(ctx, source)
	if err != nil {
		return Decoded{}, fmt.Errorf("decoder %q failed: %w", decoder.Name(), err)
	}
	if len(items) == 0 {
		return Decoded{}, fmt.Errorf("decoder %q found no candidates in %q", decoder.Name(), source.ID)
	}
	return Decoded{Items: items, DecoderUsed: decoder.Name()}, nil
}

// ReadFile decodes the file at path, using its extension as the format hint.
func (r *Registry) ReadFile(ctx context.Context, path string) (Decoded, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Decoded{}, fmt.Errorf("failed to read candidate file: %w", err)
	}
	return r.DecodeWithMeta(ctx, Source{
		Content: content,
		Format:  strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
		ID:      path,
	})
}

// selectDecoder returns the first registered decoder that can handle the given source.
func (r *Registry) selectDecoder(source Source) (Decoder, error) {
	for _, decoder := range r.decoders {
		if decoder.CanHandle(source) {
			return decoder, nil
		}
	}
	return nil, fmt.Errorf("unsupported intake format: no decoder found for source %q (format hint: %q)", source.ID, source.Format)
}

// RegisteredDecoders returns the names of all currently registered decoders.
func (r *Registry) RegisteredDecoders() []string {
	names := make([]string, len(r.decoders))
	for i, decoder := range r.decoders {
		names[i] = decoder.Name()
	}
	return names
}
