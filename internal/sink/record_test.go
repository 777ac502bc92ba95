package sink

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mythos-bio/vmyth/internal/effect"
	"github.com/mythos-bio/vmyth/internal/myth"
	"github.com/mythos-bio/vmyth/internal/variant"
)

func sampleMyth() myth.Myth {
	return myth.Myth{
		Variant: variant.Variant{Chrom: "chrA", Pos0Based: 99, Ref: "A", Alt: "T", Kind: variant.KindSmall},
		Annotations: []myth.AnnotationMyth{{
			Source:       "test",
			TranscriptID: "tx1",
			GeneName:     "GENE1",
			Effects:      []effect.Effect{effect.MissenseVariant},
			Impact:       effect.Moderate,
		}},
	}
}

func TestFlatten_OneRecordPerAnnotation(t *testing.T) {
	recs := Flatten(sampleMyth())
	require.Len(t, recs, 1)
	assert.Equal(t, "chrA", recs[0].Chr)
	assert.Equal(t, uint64(100), recs[0].Pos)
	assert.Equal(t, "tx1", *recs[0].TranscriptID)
	assert.Equal(t, "missense_variant", *recs[0].Effects)
}

func TestFlatten_NoAnnotationsEmitsBareRecord(t *testing.T) {
	m := myth.Myth{Variant: variant.Variant{Chrom: "chrA", Pos0Based: 5, Ref: "A", Alt: "*"}}
	recs := Flatten(m)
	require.Len(t, recs, 1)
	assert.Nil(t, recs[0].Source)
}

func TestNDJSONWriter_WritesOneLinePerRecord(t *testing.T) {
	var buf bytes.Buffer
	w := NewNDJSONWriter(&buf)
	require.NoError(t, w.Write([]myth.Myth{sampleMyth()}))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "\"chr\":\"chrA\"")
}

func TestSchema_HasTenColumns(t *testing.T) {
	s := Schema()
	assert.Equal(t, 10, len(s.Fields()))
}
