// SPDX-License-Identifier: Apache-2.0

package decoders

import "github.com/storagegate/underwrite/internal/intake"

// NewDefaultRegistry builds a Registry with every decoder registered.
// Order matters: memos and multi-document files also look like plain YAML,
// so they are tried before the single-document decoder.
func NewDefaultRegistry() *intake.Registry {
	return intake.NewRegistry(
		NewMemoDecoder(),
		NewMultiDocDecoder(),
		NewDocumentDecoder(),
	)
}
