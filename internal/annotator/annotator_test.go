package annotator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mythos-bio/vmyth/internal/annotationdb"
	"github.com/mythos-bio/vmyth/internal/effect"
	"github.com/mythos-bio/vmyth/internal/feature"
	"github.com/mythos-bio/vmyth/internal/ivtree"
	"github.com/mythos-bio/vmyth/internal/memoizer"
	"github.com/mythos-bio/vmyth/internal/refseq"
	"github.com/mythos-bio/vmyth/internal/variant"
)

// codonGFF declares a transcript with a 20bp 5'UTR ahead of its
// start_codon, so a codon-offset bug that assumed the codon sits at
// cDNA offset 0 would read the wrong bytes.
const codonGFF = `chrA	test	gene	1	300	.	+	.	ID=gene1
chrA	test	transcript	1	300	.	+	.	ID=tx1;Parent=gene1
chrA	test	exon	1	100	.	+	0	ID=exon1;Parent=tx1
chrA	test	exon	201	300	.	+	0	ID=exon2;Parent=tx1
chrA	test	start_codon	21	23	.	+	0	ID=start1;Parent=tx1
chrA	test	stop_codon	297	299	.	+	0	ID=stop1;Parent=tx1
`

func codonRefSeq() string {
	b := []byte(strings.Repeat("N", 300))
	copy(b[20:23], "ATG")
	copy(b[210:213], "AAA")
	copy(b[296:299], "TAA")
	return string(b)
}

func buildCodonMemoizer(t *testing.T, v variant.Variant) *memoizer.Memoizer {
	t.Helper()
	db, err := annotationdb.Build(feature.NewReader(strings.NewReader(codonGFF)), 5000)
	require.NoError(t, err)
	seqs, err := refseq.Load(strings.NewReader(">chrA\n"+codonRefSeq()+"\n"), zap.NewNop())
	require.NoError(t, err)
	return memoizer.New("tx1", db.ChildrenOf("tx1"), db, seqs, v)
}

func TestStartStopLost_StartLostBehindNonEmptyUTR(t *testing.T) {
	v := variant.Variant{Chrom: "chrA", Pos0Based: 21, Ref: "T", Alt: "C", Kind: variant.KindSmall}
	m := buildCodonMemoizer(t, v)

	a := StartStopLost{Target: StartCodonTarget}
	got := a.Annotate(nil, v, m)
	assert.Equal(t, []effect.Effect{effect.StartLost}, got)
}

func TestStartStopLost_StopLostOnNonSynonymousEdit(t *testing.T) {
	// Third base of the stop codon TAA: A->C turns it into TAC (Tyr),
	// so the stop is lost. This also checks that the window holds the
	// true stop codon bytes, 196 bases into the spliced sequence.
	v := variant.Variant{Chrom: "chrA", Pos0Based: 298, Ref: "A", Alt: "C", Kind: variant.KindSmall}
	m := buildCodonMemoizer(t, v)

	a := StartStopLost{Target: StopCodonTarget}
	got := a.Annotate(nil, v, m)
	assert.Equal(t, []effect.Effect{effect.StopLost}, got)
}

func TestSequenceAnalysis_MissenseVariant(t *testing.T) {
	v := variant.Variant{Chrom: "chrA", Pos0Based: 211, Ref: "A", Alt: "G", Kind: variant.KindSmall}
	m := buildCodonMemoizer(t, v)

	a := SequenceAnalysis{}
	got := a.Annotate(nil, v, m)
	assert.Contains(t, got, effect.MissenseVariant)
}

func TestFeaturePresence_EmitsOnMatch(t *testing.T) {
	f, _ := feature.New("chrA", 1, 100, feature.KindUpstream, "test", feature.Forward, feature.FrameUnknown, feature.Attributes{}, 0)
	a := FeaturePresence{Kind: feature.KindUpstream, Effect: effect.UpstreamGeneVariant}
	got := a.Annotate([]feature.Feature{f}, variant.Variant{}, nil)
	assert.Equal(t, []effect.Effect{effect.UpstreamGeneVariant}, got)
}

func TestFeaturePresence_NoMatch(t *testing.T) {
	f, _ := feature.New("chrA", 1, 100, feature.KindExon, "test", feature.Forward, feature.FrameUnknown, feature.Attributes{}, 0)
	a := FeaturePresence{Kind: feature.KindUpstream, Effect: effect.UpstreamGeneVariant}
	got := a.Annotate([]feature.Feature{f}, variant.Variant{}, nil)
	assert.Nil(t, got)
}

func TestDefaultChain_HasAllEightSteps(t *testing.T) {
	chain := DefaultChain(nil)
	assert.Len(t, chain, 8)
}

func TestVariantOverlaps(t *testing.T) {
	v := variant.Variant{Pos0Based: 10, Ref: "A", Alt: "T", Kind: variant.KindSmall}
	assert.True(t, variantOverlaps(v, ivtree.Interval{Start: 9, End: 12}))
	assert.False(t, variantOverlaps(v, ivtree.Interval{Start: 20, End: 25}))
}
