// Package refseq stores the reference sequence (FASTA-like) keyed by
// chromosome name and offers substring, splice and coding-view
// operations used by the annotator chain through the memoizer.
package refseq

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/mythos-bio/vmyth/internal/feature"
	"github.com/mythos-bio/vmyth/internal/ivtree"
	"github.com/mythos-bio/vmyth/internal/variant"
)

// Store maps chromosome name to its byte sequence. Bases are stored in
// the case presented by the source; callers that need comparison must
// upper-case explicitly.
type Store struct {
	sequences map[string][]byte
	log       *zap.Logger
}

// Load parses a FASTA-like `>name\nSEQUENCE` record stream.
func Load(r io.Reader, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{sequences: make(map[string][]byte), log: log}

	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 64*1024*1024)

	var name string
	var seq strings.Builder
	flush := func() {
		if name != "" {
			s.sequences[name] = []byte(seq.String())
		}
		seq.Reset()
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, ">") {
			flush()
			name = headerName(line)
			continue
		}
		seq.WriteString(strings.TrimSpace(line))
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan reference: %w", err)
	}
	return s, nil
}

func headerName(line string) string {
	line = strings.TrimPrefix(line, ">")
	if idx := strings.IndexByte(line, ' '); idx != -1 {
		line = line[:idx]
	}
	return line
}

// Slice returns the direct substring of chrom covered by iv, or nil if
// chrom is unknown or iv falls outside the stored sequence. Missing
// chromosomes and out-of-range intervals are recovered locally: the
// caller gets an empty result and annotation continues with a
// (possibly empty) downstream effect list rather than aborting.
func (s *Store) Slice(chrom string, iv ivtree.Interval) []byte {
	seq, ok := s.sequences[chrom]
	if !ok {
		s.log.Warn("refseq: unknown chromosome", zap.String("chrom", chrom))
		return nil
	}
	start, end := iv.Start, iv.End
	if start < 0 || end > int64(len(seq)) || start >= end {
		s.log.Warn("refseq: interval out of range", zap.String("chrom", chrom), zap.Int64("start", start), zap.Int64("end", end))
		return nil
	}
	return seq[start:end]
}

// Strand helpers operate on feature.Strand so callers never have to
// juggle a second boolean for orientation.

// Splice concatenates per-exon substrings in biological 5'->3' order.
// For Forward strand this is simply the intervals in the order given;
// for Reverse strand it reverses the interval order and
// reverse-complements each slice. Intervals must already be sorted in
// genomic order by the caller (ascending start).
func (s *Store) Splice(chrom string, exons []ivtree.Interval, strand feature.Strand) []byte {
	ordered := exons
	if strand == feature.Reverse {
		ordered = reverseIntervals(exons)
	}

	out := make([]byte, 0, totalLen(ordered))
	for _, iv := range ordered {
		piece := s.Slice(chrom, iv)
		if strand == feature.Reverse {
			piece = revcomp(piece)
		}
		out = append(out, piece...)
	}
	return out
}

// SpliceEdited is like Splice but with v's Ref substring replaced by
// Alt at the offset the genomic position maps to inside the spliced
// sequence. For Reverse strand the substitution happens in genomic
// coordinates first, then the whole result is reverse-complemented.
func (s *Store) SpliceEdited(chrom string, exons []ivtree.Interval, strand feature.Strand, v variant.Variant) []byte {
	if strand == feature.Reverse {
		return s.spliceEditedReverse(chrom, exons, v)
	}

	offset, ok := genomicOffsetInExons(exons, v.Pos0Based)
	if !ok {
		s.log.Warn("refseq: variant position not within any supplied exon", zap.Int64("pos", v.Pos0Based))
		return s.Splice(chrom, exons, strand)
	}

	base := s.Splice(chrom, exons, strand)
	return substitute(base, offset, int64(len(v.Ref)), v.Alt)
}

func (s *Store) spliceEditedReverse(chrom string, exons []ivtree.Interval, v variant.Variant) []byte {
	offset, ok := genomicOffsetInExons(exons, v.Pos0Based)
	if !ok {
		s.log.Warn("refseq: variant position not within any supplied exon", zap.Int64("pos", v.Pos0Based))
		return s.Splice(chrom, exons, feature.Reverse)
	}
	forward := s.Splice(chrom, exons, feature.Forward)
	edited := substitute(forward, offset, int64(len(v.Ref)), v.Alt)
	return revcomp(edited)
}

// Coding and CodingEdited are the same operations as Splice and
// SpliceEdited, constrained to [startCodonPos, stopCodonPos). If
// either boundary is absent, no coding view is emitted (nil). The
// exon list is clipped to the coding window before splicing, so the
// edit offset math in SpliceEdited stays correct regardless of where
// the coding window starts inside the first exon.
func (s *Store) Coding(chrom string, exons []ivtree.Interval, strand feature.Strand, startCodonPos, stopCodonPos *int64) []byte {
	if startCodonPos == nil || stopCodonPos == nil {
		return nil
	}
	clipped := clipExonsToCoding(exons, *startCodonPos, *stopCodonPos)
	if len(clipped) == 0 {
		return nil
	}
	return s.Splice(chrom, clipped, strand)
}

func (s *Store) CodingEdited(chrom string, exons []ivtree.Interval, strand feature.Strand, v variant.Variant, startCodonPos, stopCodonPos *int64) []byte {
	if startCodonPos == nil || stopCodonPos == nil {
		return nil
	}
	clipped := clipExonsToCoding(exons, *startCodonPos, *stopCodonPos)
	if len(clipped) == 0 {
		return nil
	}
	if _, ok := genomicOffsetInExons(clipped, v.Pos0Based); !ok {
		// Variant falls outside the coding window (e.g. a splice-site
		// edit); return the unedited coding view.
		return s.Splice(chrom, clipped, strand)
	}
	return s.SpliceEdited(chrom, clipped, strand, v)
}

func clipExonsToCoding(exons []ivtree.Interval, startCodonPos, stopCodonPos int64) []ivtree.Interval {
	lo, hi := startCodonPos, stopCodonPos
	if lo > hi {
		lo, hi = hi, lo
	}
	var out []ivtree.Interval
	for _, iv := range exons {
		s, e := iv.Start, iv.End
		if s < lo {
			s = lo
		}
		if e > hi {
			e = hi
		}
		if s < e {
			out = append(out, ivtree.Interval{Start: s, End: e})
		}
	}
	return out
}

func totalLen(ivs []ivtree.Interval) int64 {
	var n int64
	for _, iv := range ivs {
		n += iv.End - iv.Start
	}
	return n
}

func reverseIntervals(ivs []ivtree.Interval) []ivtree.Interval {
	out := make([]ivtree.Interval, len(ivs))
	for i, iv := range ivs {
		out[len(ivs)-1-i] = iv
	}
	return out
}

var complement = map[byte]byte{
	'A': 'T', 'T': 'A', 'C': 'G', 'G': 'C',
	'a': 't', 't': 'a', 'c': 'g', 'g': 'c',
	'N': 'N', 'n': 'n',
}

func revcomp(seq []byte) []byte {
	out := make([]byte, len(seq))
	for i, b := range seq {
		c, ok := complement[b]
		if !ok {
			c = 'N'
		}
		out[len(seq)-1-i] = c
	}
	return out
}

// genomicOffsetInExons maps a genomic 0-based position to its offset
// in the concatenation of exons taken in the order supplied (i.e.
// ascending genomic order, biological order for Forward strand).
func genomicOffsetInExons(exons []ivtree.Interval, pos int64) (int64, bool) {
	var offset int64
	for _, iv := range exons {
		if pos >= iv.Start && pos < iv.End {
			return offset + (pos - iv.Start), true
		}
		offset += iv.End - iv.Start
	}
	return 0, false
}

// BiologicalOffset maps a genomic 0-based position to its offset in
// the Splice-produced biological 5'->3' byte sequence for exons (in
// ascending genomic order) and strand. Forward strand biological
// order is ascending order, so this is genomicOffsetInExons directly;
// Reverse strand's biological sequence is the reverse-complement of
// the ascending concatenation, so the offset mirrors around the total
// exonic length. Used by callers that need to locate a fixed-width
// window (e.g. a codon) inside Spliced()/SplicedEdited() rather than
// assume it starts at offset 0.
func BiologicalOffset(exons []ivtree.Interval, strand feature.Strand, pos int64) (int64, bool) {
	fwd, ok := genomicOffsetInExons(exons, pos)
	if !ok {
		return 0, false
	}
	if strand == feature.Reverse {
		return totalLen(exons) - fwd - 3, true
	}
	return fwd, true
}

func substitute(seq []byte, offset, refLen int64, alt string) []byte {
	if offset < 0 || offset > int64(len(seq)) {
		return seq
	}
	end := offset + refLen
	if end > int64(len(seq)) {
		end = int64(len(seq))
	}
	out := make([]byte, 0, len(seq)-int(end-offset)+len(alt))
	out = append(out, seq[:offset]...)
	out = append(out, []byte(alt)...)
	out = append(out, seq[end:]...)
	return out
}

