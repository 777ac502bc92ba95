// Package cdna maps a genomic position into a transcript's cDNA
// coordinate system, used by the splice-site annotator.
package cdna

import (
	"fmt"

	"github.com/mythos-bio/vmyth/internal/ivtree"
)

// Kind discriminates the five cDNA position shapes.
type Kind uint8

const (
	ExonicFivePrimeUTR Kind = iota
	ExonicCoding
	ExonicThreePrimeUTR
	FivePrimeIntronic
	ThreePrimeIntronic
)

// Position is a genomic position expressed relative to a transcript's
// exon/coding structure. Only the fields relevant to Kind are
// meaningful; see the Kind constants for which.
type Position struct {
	Kind Kind

	DistanceToStartCodon int64 // ExonicFivePrimeUTR (<0), ExonicCoding (!=0)
	DistanceToStopCodon  int64 // ExonicThreePrimeUTR (>0)

	LastExonPosition  int64 // FivePrimeIntronic: cDNA position of the last exonic base before the intron
	DistanceToPrevExon int64 // FivePrimeIntronic (>0)

	NextExonPosition   int64 // ThreePrimeIntronic: cDNA position of the next exonic base after the intron
	DistanceToNextExon int64 // ThreePrimeIntronic (<0)
}

// Format renders Position using the n / n+k / n-k / *n convention
// named in the component design.
func (p Position) Format() string {
	switch p.Kind {
	case ExonicFivePrimeUTR, ExonicCoding:
		return fmt.Sprintf("%d", p.DistanceToStartCodon)
	case ExonicThreePrimeUTR:
		return fmt.Sprintf("*%d", p.DistanceToStopCodon)
	case FivePrimeIntronic:
		return fmt.Sprintf("%d+%d", p.LastExonPosition, p.DistanceToPrevExon)
	case ThreePrimeIntronic:
		return fmt.Sprintf("%d-%d", p.NextExonPosition, -p.DistanceToNextExon)
	default:
		return "?"
	}
}

// IsIntronic reports whether p falls between exons.
func (p Position) IsIntronic() bool {
	return p.Kind == FivePrimeIntronic || p.Kind == ThreePrimeIntronic
}

// Map locates genomic position pos (0-based) within exons, a list of
// exon intervals in ascending genomic order. Offsets and the
// five-prime/three-prime intronic sides are measured along ascending
// genomic coordinates; Map does not account for strand, so for a
// Reverse-strand transcript they are mirrored relative to the
// transcript's 5'->3' direction. startCodonPos and
// stopCodonPos are genomic 0-based coordinates of the first base of
// the start and stop codon, or nil if the transcript has no CDS.
//
// ok is false if pos lies outside the exon set entirely (neither
// exonic nor within a bounded intron — e.g. upstream of the first
// exon or downstream of the last).
func Map(pos int64, exons []ivtree.Interval, startCodonPos, stopCodonPos *int64) (Position, bool) {
	if len(exons) == 0 {
		return Position{}, false
	}

	var cdnaOffset int64 // cumulative exonic length before the current exon
	for i, exon := range exons {
		if pos >= exon.Start && pos < exon.End {
			offsetInExon := pos - exon.Start
			cdnaPos := cdnaOffset + offsetInExon
			return exonicPosition(cdnaPos, startCodonPos, stopCodonPos, cdnaOffset, exon, pos), true
		}
		cdnaOffset += exon.End - exon.Start

		if i+1 < len(exons) {
			next := exons[i+1]
			if pos >= exon.End && pos < next.Start {
				return intronicPosition(pos, exon, next, cdnaOffset), true
			}
		}
	}
	return Position{}, false
}

func exonicPosition(cdnaPos int64, startCodonPos, stopCodonPos *int64, exonCdnaStart int64, exon ivtree.Interval, genomicPos int64) Position {
	if startCodonPos != nil {
		startOffset := genomicOffsetIfWithin(*startCodonPos, exon, exonCdnaStart)
		if startOffset != nil {
			dist := cdnaPos - *startOffset
			if dist < 0 {
				return Position{Kind: ExonicFivePrimeUTR, DistanceToStartCodon: dist}
			}
		}
	}
	if stopCodonPos != nil {
		stopOffset := genomicOffsetIfWithin(*stopCodonPos, exon, exonCdnaStart)
		if stopOffset != nil && cdnaPos > *stopOffset {
			return Position{Kind: ExonicThreePrimeUTR, DistanceToStopCodon: cdnaPos - *stopOffset}
		}
	}
	if startCodonPos != nil {
		startOffset := genomicOffsetIfWithin(*startCodonPos, exon, exonCdnaStart)
		if startOffset != nil {
			dist := cdnaPos - *startOffset
			if dist == 0 {
				dist = 1
			}
			return Position{Kind: ExonicCoding, DistanceToStartCodon: dist}
		}
	}
	return Position{Kind: ExonicCoding, DistanceToStartCodon: cdnaPos + 1}
}

// genomicOffsetIfWithin returns the cDNA offset of codonPos if it
// falls within exon, else nil. This only resolves the codon when it
// lies in the same exon as the position being mapped; callers that
// need cross-exon start/stop lookup should resolve the codon's cDNA
// offset once via a full Map call instead.
func genomicOffsetIfWithin(codonPos int64, exon ivtree.Interval, exonCdnaStart int64) *int64 {
	if codonPos < exon.Start || codonPos >= exon.End {
		return nil
	}
	off := exonCdnaStart + (codonPos - exon.Start)
	return &off
}

func intronicPosition(pos int64, prevExon, nextExon ivtree.Interval, cdnaAtIntronStart int64) Position {
	distFromPrev := pos - prevExon.End + 1  // 1-based distance past prevExon.End
	distFromNext := pos - nextExon.Start    // negative, distance before nextExon.Start

	if distFromPrev <= -distFromNext {
		return Position{
			Kind:                FivePrimeIntronic,
			LastExonPosition:    cdnaAtIntronStart,
			DistanceToPrevExon:  distFromPrev,
		}
	}
	return Position{
		Kind:                ThreePrimeIntronic,
		NextExonPosition:     cdnaAtIntronStart + 1,
		DistanceToNextExon:   distFromNext,
	}
}

// DistanceToNearestExonBoundary returns the smaller of the two
// intron-boundary distances for an intronic Position, used by the
// splice-site annotator to test the 2bp donor/acceptor window.
func (p Position) DistanceToNearestExonBoundary() int64 {
	switch p.Kind {
	case FivePrimeIntronic:
		return p.DistanceToPrevExon
	case ThreePrimeIntronic:
		return -p.DistanceToNextExon
	default:
		return -1
	}
}
