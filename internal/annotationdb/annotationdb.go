// Package annotationdb builds and queries the per-chromosome interval
// index of genomic features, including the synthesised upstream and
// downstream flank pseudo-features that let near-gene variants
// resolve back to their owning transcript.
package annotationdb

import (
	"fmt"
	"io"
	"sort"

	"github.com/mythos-bio/vmyth/internal/feature"
	"github.com/mythos-bio/vmyth/internal/ivtree"
)

// DefaultFlankDistance is the default upstream/downstream window (D)
// used when synthesising flank pseudo-features around a transcript.
const DefaultFlankDistance = 5000

// Database is an immutable, chromosome-keyed collection of interval
// indices over Feature records. Once built, all lookups are pure and
// safe for concurrent use.
type Database struct {
	trees       map[string]*ivtree.Tree[feature.Feature]
	children    map[string][]feature.Feature // parent ID -> child features
	transcripts map[string]feature.Feature   // transcript ID -> transcript feature
}

// Build consumes every record in r (a *feature.Reader-compatible
// source) and returns an indexed Database. A malformed record aborts
// the whole build: a truncated or ambiguous annotations file would
// invalidate every downstream decision.
func Build(r *feature.Reader, flankDistance int64) (*Database, error) {
	db := &Database{
		trees:       make(map[string]*ivtree.Tree[feature.Feature]),
		children:    make(map[string][]feature.Feature),
		transcripts: make(map[string]feature.Feature),
	}

	for {
		f, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("build annotation database: %w", err)
		}
		db.add(f, flankDistance)
	}

	for _, tree := range db.trees {
		tree.Index()
	}
	return db, nil
}

func (db *Database) add(f feature.Feature, flankDistance int64) {
	tree := db.trees[f.Chrom]
	if tree == nil {
		tree = ivtree.New[feature.Feature]()
		db.trees[f.Chrom] = tree
	}

	if f.Kind == feature.KindTranscript {
		txID := f.Attributes.ID()
		flankAttrs := f.Attributes.WithParent(txID)

		upstreamStart := f.Interval().Start - flankDistance
		if upstreamStart < 0 {
			upstreamStart = 0
		}
		upstream := f.WithKindAndAttributes(feature.KindUpstream, flankAttrs)
		tree.Insert(ivtree.Interval{Start: upstreamStart, End: f.Interval().Start}, upstream)

		downstream := f.WithKindAndAttributes(feature.KindDownstream, flankAttrs)
		tree.Insert(ivtree.Interval{Start: f.Interval().End, End: f.Interval().End + flankDistance}, downstream)

		if txID != "" {
			db.transcripts[txID] = f
		}
	}

	tree.Insert(f.Interval(), f)

	if parent := f.Attributes.Parent(); parent != "" {
		db.children[parent] = append(db.children[parent], f)
	}
}

// Overlapping returns every feature on chrom whose interval overlaps
// the half-open query interval. Result order is unspecified.
func (db *Database) Overlapping(chrom string, q ivtree.Interval) []feature.Feature {
	tree := db.trees[chrom]
	if tree == nil {
		return nil
	}
	return tree.Find(q)
}

// ChildrenOf returns the features whose Parent attribute equals
// transcriptID, in the order they were added during Build.
func (db *Database) ChildrenOf(transcriptID string) []feature.Feature {
	return db.children[transcriptID]
}

// Transcript returns the transcript feature with the given ID. The
// lookup is materialised at build time, giving O(1) access as
// preferred by the design (one map entry per transcript).
func (db *Database) Transcript(transcriptID string) (feature.Feature, bool) {
	f, ok := db.transcripts[transcriptID]
	return f, ok
}

// Chromosomes returns the sorted list of chromosome names present in
// the database.
func (db *Database) Chromosomes() []string {
	out := make([]string, 0, len(db.trees))
	for chrom := range db.trees {
		out = append(out, chrom)
	}
	sort.Strings(out)
	return out
}
