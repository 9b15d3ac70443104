// SPDX-License-Identifier: Apache-2.0

package report

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Mode controls the output format.
type Mode int

const (
	ASCII    Mode = iota // Fixed-width terminal tables
	Markdown             // GitHub-flavoured Markdown tables
	JSON
)

// ParseMode maps a --format value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "table", "ascii", "text":
		return ASCII, nil
	case "markdown", "md":
		return Markdown, nil
	case "json":
		return JSON, nil
	}
	return ASCII, fmt.Errorf("unsupported report format %q (want table, markdown or json)", s)
}

func (m Mode) String() string {
	switch m {
	case Markdown:
		return "markdown"
	case JSON:
		return "json"
	default:
		return "table"
	}
}

type column struct {
	number   int
	align    text.Align
	maxWidth int
}

// tableBuilder wraps a go-pretty writer. Build it once and render in the
// mode chosen at creation.
type tableBuilder struct {
	writer table.Writer
	mode   Mode
}

func newTable(m Mode, title string) *tableBuilder {
	w := table.NewWriter()
	if m == ASCII {
		w.SetStyle(table.StyleLight)
	}
	// Footers carry counts and verdict text; keep their case.
	w.Style().Format.Footer = text.FormatDefault
	if title != "" {
		w.SetTitle(title)
	}
	return &tableBuilder{writer: w, mode: m}
}

func (b *tableBuilder) header(cols ...string) {
	row := make(table.Row, len(cols))
	for i, c := range cols {
		row[i] = c
	}
	b.writer.AppendHeader(row)
}

func (b *tableBuilder) row(vals ...any) {
	row := make(table.Row, len(vals))
	copy(row, vals)
	b.writer.AppendRow(row)
}

func (b *tableBuilder) footer(vals ...any) {
	row := make(table.Row, len(vals))
	copy(row, vals)
	b.writer.AppendFooter(row)
}

func (b *tableBuilder) columns(cols ...column) {
	cfgs := make([]table.ColumnConfig, len(cols))
	for i, c := range cols {
		cfgs[i] = table.ColumnConfig{Number: c.number, Align: c.align, WidthMax: c.maxWidth}
	}
	b.writer.SetColumnConfigs(cfgs)
}

func (b *tableBuilder) String() string {
	if b.mode == Markdown {
		return b.writer.RenderMarkdown()
	}
	return b.writer.Render()
}
