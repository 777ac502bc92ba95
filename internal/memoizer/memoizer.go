// Package memoizer provides a per-(variant, transcript) scratch cache
// of derived sequences and child-feature lookups shared by the
// annotator chain, avoiding repeated splicing and database queries
// for one variant-transcript pair.
package memoizer

import (
	"sort"

	"github.com/mythos-bio/vmyth/internal/annotationdb"
	"github.com/mythos-bio/vmyth/internal/feature"
	"github.com/mythos-bio/vmyth/internal/ivtree"
	"github.com/mythos-bio/vmyth/internal/refseq"
	"github.com/mythos-bio/vmyth/internal/variant"
)

// Memoizer is single-threaded by construction: one is built per
// affected-transcript group while processing one variant.
type Memoizer struct {
	transcriptID string
	notCoding    []feature.Feature // the feature group as queried from the annotation database
	db           *annotationdb.Database
	seqs         *refseq.Store
	v            variant.Variant

	codingAnnotation *[]feature.Feature
	exonsAnnotation  *[]feature.Feature
	transcript       *feature.Feature
	spliced          *[]byte
	splicedEdited    *[]byte
	coding           *[]byte
	codingEdited     *[]byte
}

// New builds a Memoizer bound to one (variant, transcript) pair. group
// is the slice of overlapping features sharing this transcript's
// (source, parent) key, as already resolved by the myth assembler.
func New(transcriptID string, group []feature.Feature, db *annotationdb.Database, seqs *refseq.Store, v variant.Variant) *Memoizer {
	return &Memoizer{transcriptID: transcriptID, notCoding: group, db: db, seqs: seqs, v: v}
}

// NotCoding returns the feature group this memoizer was built from.
func (m *Memoizer) NotCoding() []feature.Feature { return m.notCoding }

// CodingAnnotation returns every child feature of the transcript
// (not just the ones in the queried group), computed and cached on
// first call.
func (m *Memoizer) CodingAnnotation() []feature.Feature {
	if m.codingAnnotation == nil {
		children := m.db.ChildrenOf(m.transcriptID)
		m.codingAnnotation = &children
	}
	return *m.codingAnnotation
}

// ExonsAnnotation returns the exon features among CodingAnnotation,
// sorted by genomic start.
func (m *Memoizer) ExonsAnnotation() []feature.Feature {
	if m.exonsAnnotation == nil {
		var exons []feature.Feature
		for _, f := range m.CodingAnnotation() {
			if f.Kind == feature.KindExon {
				exons = append(exons, f)
			}
		}
		sort.Slice(exons, func(i, j int) bool { return exons[i].Start < exons[j].Start })
		m.exonsAnnotation = &exons
	}
	return *m.exonsAnnotation
}

// Transcript returns the transcript feature, if the annotation
// database has one for this transcript ID.
func (m *Memoizer) Transcript() (feature.Feature, bool) {
	if m.transcript != nil {
		return *m.transcript, true
	}
	f, ok := m.db.Transcript(m.transcriptID)
	if !ok {
		return feature.Feature{}, false
	}
	m.transcript = &f
	return f, true
}

// exonIntervals returns the exon intervals in ascending genomic order
// (the order Splice and BiologicalOffset expect, whatever the strand),
// together with the transcript's chromosome and strand.
func (m *Memoizer) exonIntervals() (chrom string, ivs []ivtree.Interval, strand feature.Strand, ok bool) {
	tx, found := m.Transcript()
	if !found {
		return "", nil, feature.Forward, false
	}
	exons := m.ExonsAnnotation()
	if len(exons) == 0 {
		return "", nil, feature.Forward, false
	}
	out := make([]ivtree.Interval, len(exons))
	for i, e := range exons {
		out[i] = e.Interval()
	}
	return tx.Chrom, out, tx.Strand, true
}

// Spliced returns the unedited spliced transcript sequence.
func (m *Memoizer) Spliced() []byte {
	if m.spliced == nil {
		chrom, exons, strand, ok := m.exonIntervals()
		var seq []byte
		if ok {
			seq = m.seqs.Splice(chrom, exons, strand)
		}
		m.spliced = &seq
	}
	return *m.spliced
}

// SplicedEdited returns the spliced sequence with this memoizer's
// variant applied.
func (m *Memoizer) SplicedEdited() []byte {
	if m.splicedEdited == nil {
		chrom, exons, strand, ok := m.exonIntervals()
		var seq []byte
		if ok {
			seq = m.seqs.SpliceEdited(chrom, exons, strand, m.v)
		}
		m.splicedEdited = &seq
	}
	return *m.splicedEdited
}

// FirstCodingPosition returns the genomic position of the transcript's
// first exon in biological order, used as a start-codon fallback when
// no explicit start_codon feature exists. exonIntervals returns exons
// in ascending genomic order regardless of strand, so the biological
// first exon is the lowest-coordinate one for Forward strand but the
// highest-coordinate one for Reverse strand; for Reverse the codon
// also sits at that exon's last 3 bases, not its first 3.
func (m *Memoizer) FirstCodingPosition() (int64, bool) {
	_, exons, strand, ok := m.exonIntervals()
	if !ok {
		return 0, false
	}
	if strand == feature.Reverse {
		last := exons[len(exons)-1]
		return last.End - 3, true
	}
	return exons[0].Start, true
}

// CodonWindow returns the 3 reference and edited bases of the codon
// whose lowest genomic coordinate is codonPos, located inside the
// spliced sequence via the exon list so transcripts with a non-empty
// 5'UTR (or either strand) are handled correctly, rather than
// assuming the codon sits at cDNA offset 0.
func (m *Memoizer) CodonWindow(codonPos int64) (ref, edited []byte) {
	_, exons, strand, ok := m.exonIntervals()
	if !ok {
		return nil, nil
	}
	offset, ok := refseq.BiologicalOffset(exons, strand, codonPos)
	if !ok {
		return nil, nil
	}
	return windowAt(m.Spliced(), offset), windowAt(m.SplicedEdited(), offset)
}

func windowAt(seq []byte, offset int64) []byte {
	if offset < 0 || offset >= int64(len(seq)) {
		return nil
	}
	end := offset + 3
	if end > int64(len(seq)) {
		end = int64(len(seq))
	}
	return seq[offset:end]
}

// codonBounds locates the start_codon and stop_codon features among
// CodingAnnotation and returns their genomic 0-based start offsets.
func (m *Memoizer) codonBounds() (startPos, stopPos *int64) {
	for _, f := range m.CodingAnnotation() {
		switch f.Kind {
		case feature.KindStartCodon:
			p := f.Interval().Start
			startPos = &p
		case feature.KindStopCodon:
			p := f.Interval().Start
			stopPos = &p
		}
	}
	return
}

// Coding returns the unedited coding-sequence view, or nil if the
// transcript has no resolvable start/stop codon.
func (m *Memoizer) Coding() []byte {
	if m.coding == nil {
		chrom, exons, strand, ok := m.exonIntervals()
		var seq []byte
		if ok {
			start, stop := m.codonBounds()
			seq = m.seqs.Coding(chrom, exons, strand, start, stop)
		}
		m.coding = &seq
	}
	return *m.coding
}

// CodingEdited returns the edited coding-sequence view.
func (m *Memoizer) CodingEdited() []byte {
	if m.codingEdited == nil {
		chrom, exons, strand, ok := m.exonIntervals()
		var seq []byte
		if ok {
			start, stop := m.codonBounds()
			seq = m.seqs.CodingEdited(chrom, exons, strand, m.v, start, stop)
		}
		m.codingEdited = &seq
	}
	return *m.codingEdited
}
