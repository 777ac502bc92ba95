// Package sink implements the two output-record formats named in the
// external interfaces: a newline-delimited JSON record stream and a
// columnar Arrow file.
package sink

import (
	"bufio"
	"fmt"
	"io"

	gojson "github.com/goccy/go-json"

	"github.com/mythos-bio/vmyth/internal/effect"
	"github.com/mythos-bio/vmyth/internal/myth"
)

// Record is one flattened (variant, sub-annotation) row, matching the
// field names shared by both output formats. A variant with no
// sub-annotations (the spanning-deletion short circuit) still emits
// one Record with every annotation-level field empty.
type Record struct {
	Chr          string  `json:"chr"`
	Pos          uint64  `json:"pos"`
	Ref          string  `json:"ref"`
	Alt          string  `json:"alt"`
	Source       *string `json:"source,omitempty"`
	TranscriptID *string `json:"transcript_id,omitempty"`
	GeneName     *string `json:"gene_name,omitempty"`
	Feature      *string `json:"feature,omitempty"`
	Effects      *string `json:"effects,omitempty"`
	Impact       *uint8  `json:"impact,omitempty"`
}

// Flatten expands a Myth into one Record per sub-annotation, or a
// single bare Record if it has none.
func Flatten(m myth.Myth) []Record {
	base := Record{
		Chr: m.Variant.Chrom,
		Pos: uint64(m.Variant.Pos0Based + 1),
		Ref: m.Variant.Ref,
		Alt: m.Variant.Alt,
	}
	if len(m.Annotations) == 0 {
		return []Record{base}
	}

	out := make([]Record, 0, len(m.Annotations))
	for _, a := range m.Annotations {
		r := base
		r.Source = strPtr(a.Source)
		r.TranscriptID = strPtr(a.TranscriptID)
		r.GeneName = strPtr(a.GeneName)
		r.Effects = strPtr(joinEffects(a.Effects))
		impact := uint8(a.Impact)
		r.Impact = &impact
		out = append(out, r)
	}
	return out
}

func joinEffects(effects []effect.Effect) string {
	if len(effects) == 0 {
		return ""
	}
	out := make([]byte, 0, 32)
	for i, e := range effects {
		if i > 0 {
			out = append(out, ';')
		}
		out = append(out, e.String()...)
	}
	return string(out)
}

func strPtr(s string) *string { return &s }

// NDJSONWriter writes one JSON object per Record, per line.
type NDJSONWriter struct {
	w *bufio.Writer
}

// NewNDJSONWriter wraps w for record-stream output.
func NewNDJSONWriter(w io.Writer) *NDJSONWriter {
	return &NDJSONWriter{w: bufio.NewWriter(w)}
}

// Write implements runner.Sink, writing every sub-annotation of every
// myth in batch as its own line.
func (n *NDJSONWriter) Write(batch []myth.Myth) error {
	enc := gojson.NewEncoder(n.w)
	for _, m := range batch {
		for _, r := range Flatten(m) {
			if err := enc.Encode(r); err != nil {
				return fmt.Errorf("encode record: %w", err)
			}
		}
	}
	return nil
}

// Flush drains the buffered writer.
func (n *NDJSONWriter) Flush() error {
	return n.w.Flush()
}
