package runner

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mythos-bio/vmyth/internal/annotationdb"
	"github.com/mythos-bio/vmyth/internal/annotator"
	"github.com/mythos-bio/vmyth/internal/feature"
	"github.com/mythos-bio/vmyth/internal/myth"
	"github.com/mythos-bio/vmyth/internal/refseq"
	"github.com/mythos-bio/vmyth/internal/variant"
)

type sliceSource struct {
	items []variant.Variant
	i     int
}

func (s *sliceSource) Next() (variant.Variant, error) {
	if s.i >= len(s.items) {
		return variant.Variant{}, io.EOF
	}
	v := s.items[s.i]
	s.i++
	return v, nil
}

type memSink struct {
	mu      sync.Mutex
	batches [][]myth.Myth
	flushed bool
}

func (s *memSink) Write(ms []myth.Myth) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]myth.Myth, len(ms))
	copy(cp, ms)
	s.batches = append(s.batches, cp)
	return nil
}

func (s *memSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushed = true
	return nil
}

func (s *memSink) all() []myth.Myth {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []myth.Myth
	for _, b := range s.batches {
		out = append(out, b...)
	}
	return out
}

func buildAssembler(t *testing.T) *myth.Assembler {
	t.Helper()
	gff := "chrA\ttest\tgene\t1\t300\t.\t+\t.\tID=gene1\n" +
		"chrA\ttest\ttranscript\t1\t300\t.\t+\t.\tID=tx1;Parent=gene1\n" +
		"chrA\ttest\texon\t1\t300\t.\t+\t0\tID=exon1;Parent=tx1\n"
	db, err := annotationdb.Build(feature.NewReader(strings.NewReader(gff)), 5000)
	require.NoError(t, err)
	seqs, err := refseq.Load(strings.NewReader(">chrA\n"+strings.Repeat("A", 500)+"\n"), zap.NewNop())
	require.NoError(t, err)
	return myth.NewAssembler(db, seqs, annotator.DefaultChain(nil))
}

func TestRunSerial_PreservesInputOrder(t *testing.T) {
	src := &sliceSource{items: []variant.Variant{
		{Chrom: "chrA", Pos0Based: 10, Ref: "A", Alt: "T", Kind: variant.KindSmall},
		{Chrom: "chrA", Pos0Based: 20, Ref: "A", Alt: "T", Kind: variant.KindSmall},
		{Chrom: "chrA", Pos0Based: 30, Ref: "A", Alt: "T", Kind: variant.KindSmall},
	}}
	sink := &memSink{}
	r := New(src, buildAssembler(t), sink, zap.NewNop(), 2)

	require.NoError(t, r.RunSerial(context.Background()))
	got := sink.all()
	require.Len(t, got, 3)
	assert.Equal(t, int64(10), got[0].Variant.Pos0Based)
	assert.Equal(t, int64(20), got[1].Variant.Pos0Based)
	assert.Equal(t, int64(30), got[2].Variant.Pos0Based)
	assert.True(t, sink.flushed)
}

func TestRunParallel_EmitsEveryVariant(t *testing.T) {
	var items []variant.Variant
	for i := int64(0); i < 50; i++ {
		items = append(items, variant.Variant{Chrom: "chrA", Pos0Based: i, Ref: "A", Alt: "T", Kind: variant.KindSmall})
	}
	src := &sliceSource{items: items}
	sink := &memSink{}
	r := New(src, buildAssembler(t), sink, zap.NewNop(), 8)

	require.NoError(t, r.RunParallel(context.Background(), 4))
	assert.Len(t, sink.all(), 50)
	assert.True(t, sink.flushed)
}
