// Package feature defines the immutable genomic feature record and the
// handful of small value types (strand, frame, attributes) that travel
// with it.
package feature

import (
	"fmt"
	"math"
	"strings"

	"github.com/mythos-bio/vmyth/internal/ivtree"
)

// Strand is the orientation of a feature relative to the reference.
type Strand int8

const (
	// Forward is the + strand. It is also the strand assigned to the
	// "." input, a documented quirk carried over for compatibility:
	// annotations on strand-agnostic features silently become Forward.
	Forward Strand = iota
	Reverse
)

// ParseStrand decodes a GFF-style strand column.
func ParseStrand(s string) Strand {
	if s == "-" {
		return Reverse
	}
	return Forward
}

func (s Strand) String() string {
	if s == Reverse {
		return "-"
	}
	return "+"
}

// Frame is the reading-frame offset of a CDS feature.
type Frame int8

const (
	FrameUnknown Frame = -1
	Frame0       Frame = 0
	Frame1       Frame = 1
	Frame2       Frame = 2
)

// ParseFrame decodes a GFF-style frame/phase column.
func ParseFrame(s string) (Frame, error) {
	switch s {
	case ".", "":
		return FrameUnknown, nil
	case "0":
		return Frame0, nil
	case "1":
		return Frame1, nil
	case "2":
		return Frame2, nil
	default:
		return FrameUnknown, fmt.Errorf("unknown frame %q", s)
	}
}

// Attributes is the decoded `key=value;...` column of an annotation
// record. Unknown keys are retained verbatim but not semantically
// consulted.
type Attributes struct {
	raw map[string]string
}

// ParseAttributes splits a `;`-separated list of `key=value` pairs.
func ParseAttributes(s string) Attributes {
	raw := make(map[string]string)
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idx := strings.IndexByte(part, '=')
		if idx == -1 {
			continue
		}
		key := strings.TrimSpace(part[:idx])
		value := strings.TrimSpace(part[idx+1:])
		raw[key] = value
	}
	return Attributes{raw: raw}
}

// ID returns the `ID` attribute, if present.
func (a Attributes) ID() string { return a.raw["ID"] }

// Name returns the `Name` attribute, if present.
func (a Attributes) Name() string { return a.raw["Name"] }

// Parent returns the `Parent` attribute, if present.
func (a Attributes) Parent() string { return a.raw["Parent"] }

// Get returns an arbitrary attribute by key.
func (a Attributes) Get(key string) (string, bool) {
	v, ok := a.raw[key]
	return v, ok
}

// WithName returns a copy of a with Name overridden.
func (a Attributes) WithName(name string) Attributes {
	cp := make(map[string]string, len(a.raw))
	for k, v := range a.raw {
		cp[k] = v
	}
	cp["Name"] = name
	return Attributes{raw: cp}
}

// WithParent returns a copy of a with Parent overridden. Synthesised
// upstream/downstream flank features use this to point Parent at the
// transcript itself rather than inheriting the transcript's own
// Parent (its gene), so flank overlaps still group under the
// transcript's ID.
func (a Attributes) WithParent(parent string) Attributes {
	cp := make(map[string]string, len(a.raw))
	for k, v := range a.raw {
		cp[k] = v
	}
	cp["Parent"] = parent
	return Attributes{raw: cp}
}

// Feature kinds recognised by the annotator chain. Any other byte tag
// passes through untouched (e.g. a caller's custom regulatory kinds).
const (
	KindGene       = "gene"
	KindTranscript = "transcript"
	KindExon       = "exon"
	KindCDS        = "CDS"
	KindFivePrimeUTR  = "five_prime_UTR"
	KindThreePrimeUTR = "three_prime_UTR"
	KindStartCodon = "start_codon"
	KindStopCodon  = "stop_codon"
	KindUpstream   = "upstream"
	KindDownstream = "downstream"
)

// Feature is an immutable genomic feature record.
type Feature struct {
	Chrom  string
	// Start and Stop are 1-based inclusive, as stored in the source record.
	Start      int64
	Stop       int64
	Kind       string
	Source     string
	Strand     Strand
	Frame      Frame
	Attributes Attributes
	// Score is the optional real-valued score column; "." maps to +Inf.
	Score float64
}

// New validates and constructs a Feature. Start must be >= 1 and <= Stop.
func New(chrom string, start, stop int64, kind, source string, strand Strand, frame Frame, attrs Attributes, score float64) (Feature, error) {
	if start < 1 {
		return Feature{}, fmt.Errorf("feature start %d is less than 1", start)
	}
	if start > stop {
		return Feature{}, fmt.Errorf("feature start %d is greater than stop %d", start, stop)
	}
	return Feature{
		Chrom:      chrom,
		Start:      start,
		Stop:       stop,
		Kind:       kind,
		Source:     source,
		Strand:     strand,
		Frame:      frame,
		Attributes: attrs,
		Score:      score,
	}, nil
}

// Interval returns the half-open, 0-based interval [Start-1, Stop)
// used for all indexing and overlap arithmetic. This resolves an open
// question in the original design: the unambiguous convention is
// stored-start-1, stored-stop, not stored-stop-1 (which produces an
// off-by-one on zero-length features).
func (f Feature) Interval() ivtree.Interval {
	return ivtree.Interval{Start: f.Start - 1, End: f.Stop}
}

// IsGeneLike reports whether the feature's kind contains the substring
// "gene" (used to pick out gene_name contributors in a myth group).
func (f Feature) IsGeneLike() bool {
	return strings.Contains(f.Kind, "gene")
}

// ScoreEqual compares two scores with +Inf treated as equal to +Inf
// and all other values compared within a small epsilon.
func ScoreEqual(a, b float64) bool {
	if math.IsInf(a, 1) && math.IsInf(b, 1) {
		return true
	}
	const eps = 1e-9
	d := a - b
	return d > -eps && d < eps
}

// WithKindAndAttributes returns a shallow copy of f with a different
// kind and attributes, used to build synthetic upstream/downstream
// flank features that share their parent transcript's identity.
func (f Feature) WithKindAndAttributes(kind string, attrs Attributes) Feature {
	cp := f
	cp.Kind = kind
	cp.Attributes = attrs
	return cp
}
