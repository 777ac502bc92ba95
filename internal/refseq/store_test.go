package refseq

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mythos-bio/vmyth/internal/feature"
	"github.com/mythos-bio/vmyth/internal/ivtree"
	"github.com/mythos-bio/vmyth/internal/variant"
)

// sampleSeq is a 400-base repeating pattern so every position's base
// is predictable from pos%4, letting tests assert exact substrings
// instead of just lengths.
func sampleSeq() string { return strings.Repeat("ACGT", 100) }

func loadStore(t *testing.T, chrom, seq string) *Store {
	t.Helper()
	s, err := Load(strings.NewReader(">"+chrom+"\n"+seq+"\n"), zap.NewNop())
	require.NoError(t, err)
	return s
}

// exonPair is a two-exon layout (a 100bp 5'UTR-bearing first exon and
// a second exon starting after a 100bp intron) shared by every test
// below, so codon positions can be reasoned about consistently.
func exonPair() []ivtree.Interval {
	return []ivtree.Interval{{Start: 0, End: 100}, {Start: 200, End: 300}}
}

func TestLoad_ParsesMultipleRecords(t *testing.T) {
	s, err := Load(strings.NewReader(">chrA\nACGT\n>chrB\nTTTT\n"), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []byte("ACGT"), s.Slice("chrA", ivtree.Interval{Start: 0, End: 4}))
	assert.Equal(t, []byte("TTTT"), s.Slice("chrB", ivtree.Interval{Start: 0, End: 4}))
}

func TestSlice_UnknownChromReturnsNil(t *testing.T) {
	s := loadStore(t, "chrA", sampleSeq())
	assert.Nil(t, s.Slice("chrZ", ivtree.Interval{Start: 0, End: 3}))
}

func TestSlice_OutOfRangeReturnsNil(t *testing.T) {
	s := loadStore(t, "chrA", sampleSeq())
	assert.Nil(t, s.Slice("chrA", ivtree.Interval{Start: 0, End: 10000}))
}

func TestSplice_ForwardConcatenatesExons(t *testing.T) {
	s := loadStore(t, "chrA", sampleSeq())
	seq := sampleSeq()
	got := s.Splice("chrA", exonPair(), feature.Forward)
	assert.Equal(t, seq[0:100]+seq[200:300], string(got))
}

func TestSplice_ReverseReverseComplements(t *testing.T) {
	s := loadStore(t, "chrA", sampleSeq())
	seq := sampleSeq()
	got := s.Splice("chrA", exonPair(), feature.Reverse)

	want := make([]byte, 0, 200)
	want = append(want, revcomp([]byte(seq[200:300]))...)
	want = append(want, revcomp([]byte(seq[0:100]))...)
	assert.Equal(t, want, got)
}

func TestSpliceEdited_ForwardEditLocality(t *testing.T) {
	s := loadStore(t, "chrA", sampleSeq())
	exons := exonPair()
	base := s.Splice("chrA", exons, feature.Forward)

	v := variant.Variant{Chrom: "chrA", Pos0Based: 50, Ref: "G", Alt: "TT", Kind: variant.KindSmall}
	edited := s.SpliceEdited("chrA", exons, feature.Forward, v)

	offset, ok := genomicOffsetInExons(exons, v.Pos0Based)
	require.True(t, ok)

	assert.Equal(t, base[:offset], edited[:offset])
	assert.Equal(t, []byte(v.Alt), edited[offset:offset+int64(len(v.Alt))])
	assert.Equal(t, base[offset+int64(len(v.Ref)):], edited[offset+int64(len(v.Alt)):])
	assert.Equal(t, len(v.Alt)-len(v.Ref), len(edited)-len(base))
}

func TestSpliceEdited_ReverseMatchesManualComputation(t *testing.T) {
	s := loadStore(t, "chrA", sampleSeq())
	exons := exonPair()
	v := variant.Variant{Chrom: "chrA", Pos0Based: 250, Ref: "G", Alt: "CC", Kind: variant.KindSmall}

	forward := s.Splice("chrA", exons, feature.Forward)
	offset, ok := genomicOffsetInExons(exons, v.Pos0Based)
	require.True(t, ok)
	want := revcomp(substitute(forward, offset, int64(len(v.Ref)), v.Alt))

	got := s.SpliceEdited("chrA", exons, feature.Reverse, v)
	assert.Equal(t, want, got)
}

func TestCoding_ClipsToStartStopWindow(t *testing.T) {
	s := loadStore(t, "chrA", sampleSeq())
	seq := sampleSeq()
	exons := exonPair()
	start, stop := int64(20), int64(296)

	got := s.Coding("chrA", exons, feature.Forward, &start, &stop)
	assert.Equal(t, seq[20:100]+seq[200:296], string(got))
}

func TestCoding_NilBoundsReturnsNil(t *testing.T) {
	s := loadStore(t, "chrA", sampleSeq())
	assert.Nil(t, s.Coding("chrA", exonPair(), feature.Forward, nil, nil))
}

func TestCodingEdited_VariantInsideCodingWindow(t *testing.T) {
	s := loadStore(t, "chrA", sampleSeq())
	exons := exonPair()
	start, stop := int64(20), int64(296)

	unedited := s.Coding("chrA", exons, feature.Forward, &start, &stop)
	v := variant.Variant{Chrom: "chrA", Pos0Based: 50, Ref: "G", Alt: "T", Kind: variant.KindSmall}
	got := s.CodingEdited("chrA", exons, feature.Forward, v, &start, &stop)

	assert.NotEqual(t, unedited, got)
	assert.Len(t, got, len(unedited))
}

func TestCodingEdited_VariantOutsideCodingWindowReturnsUnedited(t *testing.T) {
	s := loadStore(t, "chrA", sampleSeq())
	exons := exonPair()
	start, stop := int64(20), int64(296)

	unedited := s.Coding("chrA", exons, feature.Forward, &start, &stop)
	v := variant.Variant{Chrom: "chrA", Pos0Based: 5, Ref: "C", Alt: "T", Kind: variant.KindSmall}
	got := s.CodingEdited("chrA", exons, feature.Forward, v, &start, &stop)

	assert.Equal(t, unedited, got)
}

func TestBiologicalOffset_ForwardMatchesAscendingOffset(t *testing.T) {
	off, ok := BiologicalOffset(exonPair(), feature.Forward, 20)
	require.True(t, ok)
	assert.Equal(t, int64(20), off)

	off, ok = BiologicalOffset(exonPair(), feature.Forward, 296)
	require.True(t, ok)
	assert.Equal(t, int64(196), off)
}

func TestBiologicalOffset_ReverseMirrorsAroundTotalLength(t *testing.T) {
	off, ok := BiologicalOffset(exonPair(), feature.Reverse, 296)
	require.True(t, ok)
	assert.Equal(t, int64(1), off)
}

func TestBiologicalOffset_PositionOutsideExonsFails(t *testing.T) {
	_, ok := BiologicalOffset(exonPair(), feature.Forward, 150)
	assert.False(t, ok)
}

func TestBiologicalOffset_LocatesCodonInSplicedForward(t *testing.T) {
	s := loadStore(t, "chrA", sampleSeq())
	exons := exonPair()
	spliced := s.Splice("chrA", exons, feature.Forward)

	off, ok := BiologicalOffset(exons, feature.Forward, 20)
	require.True(t, ok)
	assert.Equal(t, "ACG", string(spliced[off:off+3]))
}

func TestBiologicalOffset_LocatesCodonInSplicedReverse(t *testing.T) {
	s := loadStore(t, "chrA", sampleSeq())
	exons := exonPair()
	spliced := s.Splice("chrA", exons, feature.Reverse)

	off, ok := BiologicalOffset(exons, feature.Reverse, 296)
	require.True(t, ok)
	assert.Equal(t, "CGT", string(spliced[off:off+3]))
}
