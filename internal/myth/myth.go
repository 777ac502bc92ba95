// Package myth assembles the per-variant output record by running
// the annotator chain over every transcript a variant overlaps.
package myth

import (
	"sort"
	"strings"

	"github.com/mythos-bio/vmyth/internal/annotationdb"
	"github.com/mythos-bio/vmyth/internal/annotator"
	"github.com/mythos-bio/vmyth/internal/effect"
	"github.com/mythos-bio/vmyth/internal/feature"
	"github.com/mythos-bio/vmyth/internal/memoizer"
	"github.com/mythos-bio/vmyth/internal/refseq"
	"github.com/mythos-bio/vmyth/internal/variant"
)

// AnnotationMyth is one transcript-as-seen-by-source sub-annotation
// within a Myth.
type AnnotationMyth struct {
	Source       string
	TranscriptID string
	GeneName     string
	Effects      []effect.Effect
	Impact       effect.Impact
}

// Myth is the output record for one variant: the variant itself plus
// every sub-annotation produced for the transcripts it overlaps.
type Myth struct {
	Variant     variant.Variant
	Annotations []AnnotationMyth
}

// variantMythSource is the sentinel source name used for the
// intergenic fallback sub-annotation.
const variantMythSource = "variant_myth"

// groupKey identifies one affected-transcript group.
type groupKey struct {
	source string
	parent string
}

// Assembler builds Myth records for variants, given the databases
// they are annotated against and the annotator chain to run.
type Assembler struct {
	db    *annotationdb.Database
	seqs  *refseq.Store
	chain []annotator.Annotator
}

// NewAssembler binds an Assembler to its databases and annotator
// chain.
func NewAssembler(db *annotationdb.Database, seqs *refseq.Store, chain []annotator.Annotator) *Assembler {
	return &Assembler{db: db, seqs: seqs, chain: chain}
}

// Myth computes the full output record for one variant, following
// the six-step pipeline from the component design.
func (a *Assembler) Myth(v variant.Variant) Myth {
	if v.IsSpanningDeletion() {
		return Myth{Variant: v}
	}

	overlapping := a.db.Overlapping(v.Chrom, v.Interval())
	if len(overlapping) == 0 {
		return Myth{
			Variant: v,
			Annotations: []AnnotationMyth{{
				Source:  variantMythSource,
				Effects: []effect.Effect{effect.IntergenicRegion},
				Impact:  effect.Of(effect.IntergenicRegion),
			}},
		}
	}

	groups := groupByTranscript(overlapping)
	annotations := make([]AnnotationMyth, 0, len(groups))
	for key, group := range groups {
		annotations = append(annotations, a.annotateGroup(key, group, v))
	}
	return Myth{Variant: v, Annotations: annotations}
}

func groupByTranscript(features []feature.Feature) map[groupKey][]feature.Feature {
	groups := make(map[groupKey][]feature.Feature)
	for _, f := range features {
		groups[transcriptGroupKey(f)] = append(groups[transcriptGroupKey(f)], f)
	}
	return groups
}

// transcriptGroupKey returns the (source, parent) pair a feature
// groups under. Exon/UTR/CDS/flank features carry their owning
// transcript's ID as Parent, so that is used directly. The transcript
// feature itself has no such attribute pointing at itself (its Parent
// names the gene) — an intron-spanning variant that only overlaps the
// bare transcript feature (no exon/UTR at that exact position) is
// attributed to the transcript's own ID instead of its gene, so it
// still resolves to a usable transcript_id in the myth.
func transcriptGroupKey(f feature.Feature) groupKey {
	if f.Kind == feature.KindTranscript {
		return groupKey{source: f.Source, parent: f.Attributes.ID()}
	}
	return groupKey{source: f.Source, parent: f.Attributes.Parent()}
}

func (a *Assembler) annotateGroup(key groupKey, group []feature.Feature, v variant.Variant) AnnotationMyth {
	geneName := geneNameOf(group)
	m := memoizer.New(key.parent, group, a.db, a.seqs, v)

	var effects []effect.Effect
	for _, ann := range a.chain {
		effects = append(effects, ann.Annotate(group, v, m)...)
	}

	return AnnotationMyth{
		Source:       key.source,
		TranscriptID: key.parent,
		GeneName:     geneName,
		Effects:      effects,
		Impact:       effect.Max(effects),
	}
}

// geneNameOf joins, with ';', the Name attribute of every feature in
// group whose Kind contains "gene".
func geneNameOf(group []feature.Feature) string {
	var names []string
	for _, f := range group {
		if f.IsGeneLike() {
			if name := f.Attributes.Name(); name != "" {
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return strings.Join(names, ";")
}
