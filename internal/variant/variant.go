// Package variant models a genomic variant record: its locus, alleles
// and structural-variant classification, plus the tab-separated
// parser that reads them from a VCF-like stream.
package variant

import (
	"fmt"
	"strings"

	"github.com/mythos-bio/vmyth/internal/ivtree"
)

// Kind classifies a variant as a small substitution/indel or one of
// the structural-variant categories, each carrying its declared
// SVLEN.
type Kind struct {
	tag string
	len int64
}

var (
	// KindSmall is any non-structural variant (SNV or small indel).
	KindSmall = Kind{tag: "Small"}
)

// Ins, Del, Dup, Inv and Cnv construct the corresponding structural
// kind with its declared length.
func Ins(n int64) Kind { return Kind{tag: "Ins", len: n} }
func Del(n int64) Kind { return Kind{tag: "Del", len: n} }
func Dup(n int64) Kind { return Kind{tag: "Dup", len: n} }
func Inv(n int64) Kind { return Kind{tag: "Inv", len: n} }
func Cnv(n int64) Kind { return Kind{tag: "Cnv", len: n} }

// IsStructural reports whether k is anything other than KindSmall.
func (k Kind) IsStructural() bool { return k.tag != "Small" }

// Len returns the declared SVLEN for a structural kind, or 0 for Small.
func (k Kind) Len() int64 { return k.len }

func (k Kind) String() string {
	if !k.IsStructural() {
		return "Small"
	}
	return fmt.Sprintf("<%s:%d>", strings.ToUpper(k.tag), k.len)
}

// structuralTags maps the bracketed ALT tag to its Kind constructor.
var structuralTags = map[string]func(int64) Kind{
	"<INS>": Ins,
	"<DEL>": Del,
	"<DUP>": Dup,
	"<INV>": Inv,
	"<CNV>": Cnv,
}

// KindFromAlt classifies alt using the optional SVLEN found in the
// INFO field. A structural ALT tag with no SVLEN is a hard parse
// error; SVLEN must be a non-negative integer.
func KindFromAlt(alt string, info map[string]string) (Kind, error) {
	ctor, ok := structuralTags[alt]
	if !ok {
		return KindSmall, nil
	}
	raw, ok := info["SVLEN"]
	if !ok {
		return Kind{}, fmt.Errorf("structural variant %s is missing required SVLEN", alt)
	}
	n, err := parseNonNegativeInt(raw)
	if err != nil {
		return Kind{}, fmt.Errorf("structural variant %s has invalid SVLEN %q: %w", alt, raw, err)
	}
	return ctor(n), nil
}

func parseNonNegativeInt(s string) (int64, error) {
	var n int64
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("not a non-negative integer")
		}
		n = n*10 + int64(c-'0')
	}
	return n, nil
}

// Variant is an immutable description of a difference from the
// reference sequence at a specific locus.
type Variant struct {
	Chrom string
	// Pos0Based is the 0-based genomic position (VCF POS - 1).
	Pos0Based int64
	Ref       string
	Alt       string
	Kind      Kind
}

// Interval returns the half-open overlap interval used to query the
// annotation database. For Small variants this spans the reference
// allele. Structural variants are derived from SVLEN; Dup doubles the
// declared length, an unusual but deliberately preserved quirk of the
// source this was distilled from (see the Dup design note).
func (v Variant) Interval() ivtree.Interval {
	switch {
	case !v.Kind.IsStructural():
		return ivtree.Interval{Start: v.Pos0Based, End: v.Pos0Based + int64(len(v.Ref))}
	case v.Kind.tag == "Ins":
		return ivtree.Interval{Start: v.Pos0Based, End: v.Pos0Based + 1}
	case v.Kind.tag == "Dup":
		return ivtree.Interval{Start: v.Pos0Based, End: v.Pos0Based + 2*v.Kind.Len()}
	default: // Del, Inv, Cnv
		return ivtree.Interval{Start: v.Pos0Based, End: v.Pos0Based + v.Kind.Len()}
	}
}

// Valid reports the variant's basic structural validity: non-empty
// Ref and Alt, and, for non-structural variants, every base in
// Ref+Alt is one of A/C/G/T (case-insensitive).
func (v Variant) Valid() bool {
	if v.Ref == "" || v.Alt == "" {
		return false
	}
	if v.Kind.IsStructural() {
		return true
	}
	return isACGT(v.Ref) && isACGT(v.Alt)
}

func isACGT(s string) bool {
	for _, c := range s {
		switch c {
		case 'A', 'C', 'G', 'T', 'a', 'c', 'g', 't':
		default:
			return false
		}
	}
	return true
}

// IsSpanningDeletion reports whether Alt is the VCF `*` spanning
// deletion marker, which short-circuits the annotation pipeline.
func (v Variant) IsSpanningDeletion() bool {
	return strings.Contains(v.Alt, "*")
}
