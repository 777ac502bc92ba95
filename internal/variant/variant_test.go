package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mythos-bio/vmyth/internal/ivtree"
)

func TestKindFromAlt_SmallVariant(t *testing.T) {
	k, err := KindFromAlt("T", map[string]string{})
	assert.NoError(t, err)
	assert.Equal(t, KindSmall, k)
	assert.False(t, k.IsStructural())
}

func TestKindFromAlt_StructuralRequiresSVLEN(t *testing.T) {
	_, err := KindFromAlt("<DEL>", map[string]string{})
	assert.Error(t, err)
}

func TestKindFromAlt_StructuralWithSVLEN(t *testing.T) {
	k, err := KindFromAlt("<DUP>", map[string]string{"SVLEN": "100"})
	assert.NoError(t, err)
	assert.True(t, k.IsStructural())
	assert.Equal(t, int64(100), k.Len())
}

func TestKindFromAlt_InvalidSVLEN(t *testing.T) {
	_, err := KindFromAlt("<INS>", map[string]string{"SVLEN": "not-a-number"})
	assert.Error(t, err)
}

func TestInterval_SmallVariant(t *testing.T) {
	v := Variant{Pos0Based: 100, Ref: "AC", Alt: "G", Kind: KindSmall}
	assert.Equal(t, ivtree.Interval{Start: 100, End: 102}, v.Interval())
}

func TestInterval_Insertion(t *testing.T) {
	v := Variant{Pos0Based: 100, Ref: "A", Alt: "<INS>", Kind: Ins(50)}
	assert.Equal(t, ivtree.Interval{Start: 100, End: 101}, v.Interval())
}

func TestInterval_Deletion(t *testing.T) {
	v := Variant{Pos0Based: 100, Ref: "A", Alt: "<DEL>", Kind: Del(30)}
	assert.Equal(t, ivtree.Interval{Start: 100, End: 130}, v.Interval())
}

func TestInterval_DuplicationDoublesLength(t *testing.T) {
	v := Variant{Pos0Based: 100, Ref: "A", Alt: "<DUP>", Kind: Dup(30)}
	assert.Equal(t, ivtree.Interval{Start: 100, End: 160}, v.Interval())
}

func TestValid_RejectsEmptyAlleles(t *testing.T) {
	v := Variant{Ref: "", Alt: "A", Kind: KindSmall}
	assert.False(t, v.Valid())
}

func TestValid_RejectsNonACGT(t *testing.T) {
	v := Variant{Ref: "N", Alt: "A", Kind: KindSmall}
	assert.False(t, v.Valid())
}

func TestValid_StructuralSkipsBaseCheck(t *testing.T) {
	v := Variant{Ref: "A", Alt: "<DEL>", Kind: Del(10)}
	assert.True(t, v.Valid())
}

func TestIsSpanningDeletion(t *testing.T) {
	v := Variant{Ref: "A", Alt: "*"}
	assert.True(t, v.IsSpanningDeletion())
	v2 := Variant{Ref: "A", Alt: "G"}
	assert.False(t, v2.IsSpanningDeletion())
}
