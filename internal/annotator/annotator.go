// Package annotator implements the ordered chain of pure
// (group, variant, memoizer) -> []effect.Effect functions that
// produce the per-transcript effect list for a variant.
package annotator

import (
	"github.com/mythos-bio/vmyth/internal/cdna"
	"github.com/mythos-bio/vmyth/internal/codon"
	"github.com/mythos-bio/vmyth/internal/effect"
	"github.com/mythos-bio/vmyth/internal/feature"
	"github.com/mythos-bio/vmyth/internal/ivtree"
	"github.com/mythos-bio/vmyth/internal/memoizer"
	"github.com/mythos-bio/vmyth/internal/variant"
)

// Annotator maps one affected-transcript group, the variant under
// consideration and its memoizer to the effects it produces. Later
// annotators in a chain never observe earlier annotators' output —
// only the same three inputs.
type Annotator interface {
	Annotate(group []feature.Feature, v variant.Variant, m *memoizer.Memoizer) []effect.Effect
}

// FeaturePresence emits Effect whenever some feature in the group has
// the given Kind.
type FeaturePresence struct {
	Kind   string
	Effect effect.Effect
}

func (a FeaturePresence) Annotate(group []feature.Feature, _ variant.Variant, _ *memoizer.Memoizer) []effect.Effect {
	for _, f := range group {
		if f.Kind == a.Kind {
			return []effect.Effect{a.Effect}
		}
	}
	return nil
}

// DefaultFeaturePresenceAnnotators instantiates the four
// FeaturePresence annotators named in the component design.
func DefaultFeaturePresenceAnnotators() []Annotator {
	return []Annotator{
		FeaturePresence{Kind: feature.KindUpstream, Effect: effect.UpstreamGeneVariant},
		FeaturePresence{Kind: feature.KindDownstream, Effect: effect.DownstreamGeneVariant},
		FeaturePresence{Kind: feature.KindFivePrimeUTR, Effect: effect.P5PrimeUtrVariant},
		FeaturePresence{Kind: feature.KindThreePrimeUTR, Effect: effect.P3PrimeUtrVariant},
	}
}

// spliceRegionWindow is the distance (bp) from an exon boundary within
// which an intronic position is classified as a splice donor/acceptor
// site rather than plain intronic.
const spliceRegionWindow = 2

// SpliceVariant maps the variant's genomic position into the
// transcript's cDNA coordinate system and flags splice donor/acceptor
// proximity.
type SpliceVariant struct{}

func (SpliceVariant) Annotate(_ []feature.Feature, v variant.Variant, m *memoizer.Memoizer) []effect.Effect {
	exons := m.ExonsAnnotation()
	if len(exons) == 0 {
		return nil
	}
	intervals := exonIntervals(exons)
	pos, ok := cdna.Map(v.Pos0Based, intervals, nil, nil)
	if !ok || !pos.IsIntronic() {
		return nil
	}

	// Map measures along ascending genomic coordinates; on the Reverse
	// strand the lower-coordinate side of an intron is its 3' end.
	donorSide := pos.Kind == cdna.FivePrimeIntronic
	if tx, found := m.Transcript(); found && tx.Strand == feature.Reverse {
		donorSide = !donorSide
	}

	effects := []effect.Effect{effect.IntronVariant}
	if pos.DistanceToNearestExonBoundary() <= spliceRegionWindow {
		if donorSide {
			effects = append(effects, effect.SpliceDonorVariant)
		} else {
			effects = append(effects, effect.SpliceAcceptorVariant)
		}
	}
	return effects
}

func exonIntervals(exons []feature.Feature) []ivtree.Interval {
	out := make([]ivtree.Interval, len(exons))
	for i, e := range exons {
		out[i] = e.Interval()
	}
	return out
}

// CodonTarget distinguishes which terminal codon StartStopLost checks.
type CodonTarget uint8

const (
	StartCodonTarget CodonTarget = iota
	StopCodonTarget
)

// StartStopLost locates the start_codon or stop_codon feature (or,
// failing that for Start, the first three bases of the first exon);
// if the variant overlaps the codon window, it applies the edit and
// compares translations.
type StartStopLost struct {
	Target CodonTarget
	Table  *codon.Table
}

func (a StartStopLost) Annotate(group []feature.Feature, v variant.Variant, m *memoizer.Memoizer) []effect.Effect {
	table := a.Table
	if table == nil {
		table = codon.Standard
	}

	var codonPos int64
	found := false
	kind := feature.KindStartCodon
	if a.Target == StopCodonTarget {
		kind = feature.KindStopCodon
	}
	for _, f := range m.CodingAnnotation() {
		if f.Kind == kind {
			codonPos = f.Interval().Start
			found = true
			break
		}
	}
	if !found && a.Target == StartCodonTarget {
		if pos, ok := m.FirstCodingPosition(); ok {
			codonPos = pos
			found = true
		}
	}
	if !found {
		return nil
	}

	window := ivtree.Interval{Start: codonPos, End: codonPos + 3}
	if !variantOverlaps(v, window) {
		return nil
	}

	refCodon, editedCodon := m.CodonWindow(codonPos)
	if len(refCodon) == 0 || len(editedCodon) == 0 {
		return nil
	}
	refAA := table.Translate(string(refCodon))
	editedAA := table.Translate(string(editedCodon))

	if refAA == editedAA {
		if a.Target == StartCodonTarget {
			return []effect.Effect{effect.StartRetainedVariant}
		}
		return []effect.Effect{effect.StopRetainedVariant}
	}

	if a.Target == StartCodonTarget {
		return []effect.Effect{effect.StartLost}
	}
	return []effect.Effect{effect.StopLost}
}

func variantOverlaps(v variant.Variant, window ivtree.Interval) bool {
	iv := v.Interval()
	return iv.Start < window.End && window.Start < iv.End
}

// SequenceAnalysis produces coding-region effects by translating the
// reference and edited coding sequences and comparing aligned codons.
type SequenceAnalysis struct {
	Table *codon.Table
}

func (a SequenceAnalysis) Annotate(_ []feature.Feature, v variant.Variant, m *memoizer.Memoizer) []effect.Effect {
	table := a.Table
	if table == nil {
		table = codon.Standard
	}

	ref := m.Coding()
	edited := m.CodingEdited()
	if len(ref) == 0 || len(edited) == 0 {
		return nil
	}

	lengthDelta := len(v.Alt) - len(v.Ref)
	if lengthDelta%3 != 0 {
		return []effect.Effect{effect.FrameshiftVariant}
	}

	if lengthDelta != 0 {
		// Every in-frame indel is reported as conservative: where the
		// edit starts relative to a codon boundary is not examined, so
		// DisruptiveInframeInsertion/Deletion are never emitted here.
		if lengthDelta > 0 {
			return []effect.Effect{effect.ConservativeInframeInsertion}
		}
		return []effect.Effect{effect.ConservativeInframeDeletion}
	}

	refAA := table.TranslateSequence(ref)
	editedAA := table.TranslateSequence(edited)

	n := len(refAA)
	if len(editedAA) < n {
		n = len(editedAA)
	}
	var effects []effect.Effect
	for i := 0; i < n; i++ {
		if refAA[i] == editedAA[i] {
			continue
		}
		if editedAA[i] == '*' {
			effects = append(effects, effect.StopGained)
			break
		}
		if i == 0 {
			effects = append(effects, effect.InitiatorCodonVariant)
			continue
		}
		effects = append(effects, effect.MissenseVariant)
	}
	if len(effects) == 0 {
		effects = append(effects, effect.SynonymousVariant)
	}
	return effects
}

// DefaultChain is the full ordered annotator chain: the four
// FeaturePresence variants, splice-site analysis, start/stop-codon
// loss, then coding-sequence comparison. Every step listed in the
// component design is present, including SpliceVariant and
// StartStopLost.
func DefaultChain(table *codon.Table) []Annotator {
	chain := DefaultFeaturePresenceAnnotators()
	chain = append(chain,
		SpliceVariant{},
		StartStopLost{Target: StartCodonTarget, Table: table},
		StartStopLost{Target: StopCodonTarget, Table: table},
		SequenceAnalysis{Table: table},
	)
	return chain
}
