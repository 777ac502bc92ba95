// Package effect defines the closed Sequence-Ontology-derived effect
// taxonomy and the total effect-to-impact classification.
package effect

import "fmt"

// Effect is a closed enumeration of predicted variant consequences.
type Effect uint8

const (
	BidirectionalGeneFusion Effect = iota
	ChromosomeNumberVariation
	ExonLossVariant
	FeatureAblation
	FrameshiftVariant
	GeneFusion
	ProteinProteinContact
	RareAminoAcidVariant
	RearrangedAtDnaLevel
	SpliceAcceptorVariant
	SpliceDonorVariant
	StartLost
	StopGained
	StopLost
	StructuralInteractionVariant
	TranscriptAblation

	ConservativeInframeDeletion
	ConservativeInframeInsertion
	DisruptiveInframeDeletion
	DisruptiveInframeInsertion
	MissenseVariant
	P3PrimeUtrTruncation
	P5PrimeUtrTruncation

	InitiatorCodonVariant
	P5PrimeUtrPrematureStartCodonGainVariant
	SpliceRegionVariant
	SynonymousVariant
	TfBindingSiteVariant
	TfbsAblation
	FeatureFusion

	Chromosome
	CodingSequenceVariant
	ConservedIntergenicVariant
	ConservedIntronVariant
	DownstreamGeneVariant
	ExonRegion
	FeatureElongation
	GeneVariant
	IntergenicRegion
	IntragenicVariant
	IntronVariant
	NonCodingTranscriptExonVariant
	NonCodingTranscriptVariant
	P3PrimeUtrVariant
	P5PrimeUtrVariant
	RegulatoryRegionVariant
	SequenceFeature
	UpstreamGeneVariant

	Inversion
	MiRna
	StartRetainedVariant
	StopRetainedVariant
	Duplication
)

// Impact is the coarse severity classification derived from an
// Effect, totally ordered Other < Modifier < Low < Moderate < High.
type Impact uint8

const (
	Other Impact = iota
	Modifier
	Low
	Moderate
	High
)

func (i Impact) String() string {
	switch i {
	case Other:
		return "Other"
	case Modifier:
		return "Modifier"
	case Low:
		return "Low"
	case Moderate:
		return "Moderate"
	case High:
		return "High"
	default:
		return "Other"
	}
}

// impactOf is the total effect -> impact table. Every Effect variant
// must appear exactly once; entries absent default to Other via the
// zero value, but every Effect is listed explicitly so the totality
// test can detect drift.
var impactOf = map[Effect]Impact{
	BidirectionalGeneFusion:     High,
	ChromosomeNumberVariation:   High,
	ExonLossVariant:             High,
	FeatureAblation:             High,
	FrameshiftVariant:           High,
	GeneFusion:                  High,
	ProteinProteinContact:       High,
	RareAminoAcidVariant:        High,
	RearrangedAtDnaLevel:        High,
	SpliceAcceptorVariant:       High,
	SpliceDonorVariant:          High,
	StartLost:                   High,
	StopGained:                  High,
	StopLost:                    High,
	StructuralInteractionVariant: High,
	TranscriptAblation:          High,

	ConservativeInframeDeletion:  Moderate,
	ConservativeInframeInsertion: Moderate,
	DisruptiveInframeDeletion:    Moderate,
	DisruptiveInframeInsertion:   Moderate,
	MissenseVariant:              Moderate,
	P3PrimeUtrTruncation:         Moderate,
	P5PrimeUtrTruncation:         Moderate,

	InitiatorCodonVariant:                    Low,
	P5PrimeUtrPrematureStartCodonGainVariant:  Low,
	SpliceRegionVariant:                       Low,
	SynonymousVariant:                         Low,
	TfBindingSiteVariant:                      Low,
	TfbsAblation:                              Low,
	FeatureFusion:                             Low,

	Chromosome:                      Modifier,
	CodingSequenceVariant:            Modifier,
	ConservedIntergenicVariant:       Modifier,
	ConservedIntronVariant:           Modifier,
	DownstreamGeneVariant:            Modifier,
	ExonRegion:                       Modifier,
	FeatureElongation:                Modifier,
	GeneVariant:                      Modifier,
	IntergenicRegion:                 Modifier,
	IntragenicVariant:                Modifier,
	IntronVariant:                    Modifier,
	NonCodingTranscriptExonVariant:   Modifier,
	NonCodingTranscriptVariant:       Modifier,
	P3PrimeUtrVariant:                Modifier,
	P5PrimeUtrVariant:                Modifier,
	RegulatoryRegionVariant:          Modifier,
	SequenceFeature:                  Modifier,
	UpstreamGeneVariant:              Modifier,

	Inversion:            Other,
	MiRna:                Other,
	StartRetainedVariant: Other,
	StopRetainedVariant:  Other,
	Duplication:          Other,
}

// Of returns the impact classification for e. Unknown effects (should
// never occur for a value produced through this package) default to
// Other.
func Of(e Effect) Impact {
	if imp, ok := impactOf[e]; ok {
		return imp
	}
	return Other
}

// Max returns the highest impact among effects, Other if empty.
func Max(effects []Effect) Impact {
	max := Other
	for _, e := range effects {
		if imp := Of(e); imp > max {
			max = imp
		}
	}
	return max
}

var soStrings = map[Effect]string{
	BidirectionalGeneFusion:     "bidirectional_gene_fusion",
	ChromosomeNumberVariation:   "chromosome_number_variation",
	ExonLossVariant:             "exon_loss_variant",
	FeatureAblation:             "feature_ablation",
	FrameshiftVariant:           "frameshift_variant",
	GeneFusion:                  "gene_fusion",
	ProteinProteinContact:       "protein_protein_contact",
	RareAminoAcidVariant:        "rare_amino_acid_variant",
	RearrangedAtDnaLevel:        "rearranged_at_DNA_level",
	SpliceAcceptorVariant:       "splice_acceptor_variant",
	SpliceDonorVariant:          "splice_donor_variant",
	StartLost:                   "start_lost",
	StopGained:                  "stop_gained",
	StopLost:                    "stop_lost",
	StructuralInteractionVariant: "structural_interaction_variant",
	TranscriptAblation:          "transcript_ablation",

	ConservativeInframeDeletion:  "conservative_inframe_deletion",
	ConservativeInframeInsertion: "conservative_inframe_insertion",
	DisruptiveInframeDeletion:    "disruptive_inframe_deletion",
	DisruptiveInframeInsertion:   "disruptive_inframe_insertion",
	MissenseVariant:              "missense_variant",
	P3PrimeUtrTruncation:         "3_prime_UTR_truncation",
	P5PrimeUtrTruncation:         "5_prime_UTR_truncation",

	InitiatorCodonVariant:                    "initiator_codon_variant",
	P5PrimeUtrPrematureStartCodonGainVariant:  "5_prime_UTR_premature_start_codon_gain_variant",
	SpliceRegionVariant:                       "splice_region_variant",
	SynonymousVariant:                         "synonymous_variant",
	TfBindingSiteVariant:                      "TF_binding_site_variant",
	TfbsAblation:                              "TFBS_ablation",
	FeatureFusion:                             "feature_fusion",

	Chromosome:                      "chromosome",
	CodingSequenceVariant:            "coding_sequence_variant",
	ConservedIntergenicVariant:       "conserved_intergenic_variant",
	ConservedIntronVariant:           "conserved_intron_variant",
	DownstreamGeneVariant:            "downstream_gene_variant",
	ExonRegion:                       "exon_region",
	FeatureElongation:                "feature_elongation",
	GeneVariant:                      "gene_variant",
	IntergenicRegion:                 "intergenic_region",
	IntragenicVariant:                "intragenic_variant",
	IntronVariant:                    "intron_variant",
	NonCodingTranscriptExonVariant:   "non_coding_transcript_exon_variant",
	NonCodingTranscriptVariant:       "non_coding_transcript_variant",
	P3PrimeUtrVariant:                "3_prime_UTR_variant",
	P5PrimeUtrVariant:                "5_prime_UTR_variant",
	RegulatoryRegionVariant:          "regulatory_region_variant",
	SequenceFeature:                  "sequence_feature",
	UpstreamGeneVariant:              "upstream_gene_variant",

	Inversion:            "inversion",
	MiRna:                "miRNA",
	StartRetainedVariant: "start_retained_variant",
	StopRetainedVariant:  "stop_retained_variant",
	Duplication:          "duplication",
}

var fromSOString = func() map[string]Effect {
	out := make(map[string]Effect, len(soStrings))
	for e, s := range soStrings {
		out[s] = e
	}
	return out
}()

// String returns the Sequence Ontology term for e.
func (e Effect) String() string {
	if s, ok := soStrings[e]; ok {
		return s
	}
	return fmt.Sprintf("effect(%d)", uint8(e))
}

// Parse looks up the Effect for a Sequence Ontology term.
func Parse(so string) (Effect, bool) {
	e, ok := fromSOString[so]
	return e, ok
}

// All returns every defined Effect value, for exhaustive testing.
func All() []Effect {
	out := make([]Effect, 0, len(soStrings))
	for e := range soStrings {
		out = append(out, e)
	}
	return out
}
