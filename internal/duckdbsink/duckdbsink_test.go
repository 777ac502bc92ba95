package duckdbsink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mythos-bio/vmyth/internal/effect"
	"github.com/mythos-bio/vmyth/internal/myth"
	"github.com/mythos-bio/vmyth/internal/variant"
)

func openInMemory(t *testing.T) *Sink {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Flush() })
	return s
}

func TestOpen_CreatesSchema(t *testing.T) {
	s := openInMemory(t)
	row := s.db.QueryRow("SELECT count(*) FROM myth_annotations")
	var n int
	require.NoError(t, row.Scan(&n))
	assert.Equal(t, 0, n)
}

func TestWrite_AppendsOneRowPerAnnotation(t *testing.T) {
	s := openInMemory(t)

	batch := []myth.Myth{{
		Variant: variant.Variant{Chrom: "chrA", Pos0Based: 9, Ref: "A", Alt: "T", Kind: variant.KindSmall},
		Annotations: []myth.AnnotationMyth{
			{Source: "test", TranscriptID: "tx1", GeneName: "GENE1", Effects: []effect.Effect{effect.MissenseVariant}, Impact: effect.Moderate},
			{Source: "test", TranscriptID: "tx2", GeneName: "GENE1", Effects: []effect.Effect{effect.SynonymousVariant}, Impact: effect.Low},
		},
	}}

	require.NoError(t, s.Write(batch))

	row := s.db.QueryRow("SELECT count(*) FROM myth_annotations WHERE chr = 'chrA' AND pos = 10")
	var n int
	require.NoError(t, row.Scan(&n))
	assert.Equal(t, 2, n)
}

func TestWrite_EmptyBatchIsNoop(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.Write(nil))
}
