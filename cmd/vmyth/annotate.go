package main

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mythos-bio/vmyth/internal/annotationdb"
	"github.com/mythos-bio/vmyth/internal/annotator"
	"github.com/mythos-bio/vmyth/internal/codon"
	"github.com/mythos-bio/vmyth/internal/duckdbsink"
	"github.com/mythos-bio/vmyth/internal/feature"
	"github.com/mythos-bio/vmyth/internal/myth"
	"github.com/mythos-bio/vmyth/internal/refseq"
	"github.com/mythos-bio/vmyth/internal/runner"
	"github.com/mythos-bio/vmyth/internal/sink"
	"github.com/mythos-bio/vmyth/internal/variant"
)

func newAnnotateCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "annotate",
		Short: "Annotate variants against a feature model and reference sequence",
		Example: `  vmyth annotate --input variants.vcf --reference genome.fa --annotations genes.gtf
  vmyth annotate --input - --reference genome.fa --annotations genes.gtf --output-format arrow --output out.arrow --threads 8`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnnotate(v)
		},
	}

	fs := cmd.Flags()
	fs.String("input", "-", "Variant input file (VCF-like; '-' for stdin; .gz auto-detected)")
	fs.String("reference", "", "FASTA reference sequence file")
	fs.String("annotations", "", "GTF/GFF3 feature annotation file")
	fs.String("output", "-", "Output file ('-' for stdout)")
	fs.String("output-format", "ndjson", "Output format: ndjson, arrow, duckdb")
	fs.String("cache", "", "Optional DuckDB file to additionally persist every myth into")
	fs.String("translate", "", "Optional codon table file overriding the built-in standard table")
	fs.Int64("updown-distance", annotationdb.DefaultFlankDistance, "Upstream/downstream flank window in base pairs")
	fs.String("annotators-choices", "all", "Comma-separated annotator stages to run: flanks,splice,codon,coding,all")
	fs.Int("threads", 0, "Worker count for parallel annotation (0 runs serially, preserving input order)")
	fs.Bool("quiet", false, "Suppress all logging")
	fs.Int("verbosity", 0, "Logging verbosity: 0=info, 1=debug")
	fs.Bool("timestamp", false, "Prefix log lines with RFC3339 timestamps")

	if err := v.BindPFlags(fs); err != nil {
		panic(fmt.Sprintf("bind annotate flags: %v", err))
	}
	v.SetEnvPrefix("VMYTH")
	v.AutomaticEnv()

	return cmd
}

func buildLogger(v *viper.Viper) *zap.Logger {
	if v.GetBool("quiet") {
		return zap.NewNop()
	}

	cfg := zap.NewProductionConfig()
	if v.GetInt("verbosity") > 0 {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if !v.GetBool("timestamp") {
		cfg.EncoderConfig.TimeKey = ""
	} else {
		cfg.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	}
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func runAnnotate(v *viper.Viper) error {
	log := buildLogger(v)
	defer log.Sync()

	annotationsPath := v.GetString("annotations")
	if annotationsPath == "" {
		return fmt.Errorf("--annotations is required")
	}
	referencePath := v.GetString("reference")
	if referencePath == "" {
		return fmt.Errorf("--reference is required")
	}

	annotationsFile, err := os.Open(annotationsPath)
	if err != nil {
		return fmt.Errorf("open annotations: %w", err)
	}
	defer annotationsFile.Close()

	db, err := annotationdb.Build(feature.NewReader(annotationsFile), v.GetInt64("updown-distance"))
	if err != nil {
		return fmt.Errorf("build annotation database: %w", err)
	}
	log.Info("loaded annotation database", zap.Strings("chromosomes", db.Chromosomes()))

	referenceFile, err := os.Open(referencePath)
	if err != nil {
		return fmt.Errorf("open reference: %w", err)
	}
	defer referenceFile.Close()

	seqs, err := refseq.Load(referenceFile, log)
	if err != nil {
		return fmt.Errorf("load reference: %w", err)
	}

	table := codon.Standard
	if p := v.GetString("translate"); p != "" {
		block, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read codon table: %w", err)
		}
		table, err = codon.Parse(string(block))
		if err != nil {
			return fmt.Errorf("parse codon table: %w", err)
		}
	}

	chain, err := selectAnnotators(v.GetString("annotators-choices"), table)
	if err != nil {
		return err
	}
	assembler := myth.NewAssembler(db, seqs, chain)

	inputPath := v.GetString("input")
	var input *os.File
	if inputPath == "-" || inputPath == "" {
		input = os.Stdin
	} else {
		input, err = os.Open(inputPath)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer input.Close()
	}

	parser, err := variant.NewParser(input)
	if err != nil {
		return fmt.Errorf("open variant parser: %w", err)
	}
	defer parser.Close()

	out, closeOut, err := openOutput(v.GetString("output"))
	if err != nil {
		return err
	}
	defer closeOut()

	primary, err := buildSink(v.GetString("output-format"), out, v.GetString("output"))
	if err != nil {
		return err
	}
	// guardSink makes Flush idempotent so both the runner's own
	// successful-path call and this error-path defer are safe.
	primary = guardSink(primary)
	defer primary.Flush()

	outSink := primary
	if cachePath := v.GetString("cache"); cachePath != "" {
		cacheSink, err := duckdbsink.Open(cachePath)
		if err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
		cache := guardSink(cacheSink)
		defer cache.Flush()
		outSink = fanoutSink{primary, cache}
	}

	r := runner.New(parser, assembler, outSink, log, runner.DefaultBatchSize)
	ctx := cmdContext()

	threads := v.GetInt("threads")
	if threads <= 0 {
		return r.RunSerial(ctx)
	}
	return r.RunParallel(ctx, threads)
}

// selectAnnotators builds a chain from a comma-separated list of
// stage names, or the full DefaultChain for "all".
func selectAnnotators(choices string, table *codon.Table) ([]annotator.Annotator, error) {
	choices = strings.TrimSpace(choices)
	if choices == "" || choices == "all" {
		return annotator.DefaultChain(table), nil
	}

	var chain []annotator.Annotator
	for _, name := range strings.Split(choices, ",") {
		switch strings.TrimSpace(name) {
		case "flanks":
			chain = append(chain, annotator.DefaultFeaturePresenceAnnotators()...)
		case "splice":
			chain = append(chain, annotator.SpliceVariant{})
		case "codon":
			chain = append(chain,
				annotator.StartStopLost{Target: annotator.StartCodonTarget, Table: table},
				annotator.StartStopLost{Target: annotator.StopCodonTarget, Table: table},
			)
		case "coding":
			chain = append(chain, annotator.SequenceAnalysis{Table: table})
		default:
			return nil, fmt.Errorf("unknown annotator choice %q", name)
		}
	}
	return chain, nil
}

func openOutput(path string) (*os.File, func(), error) {
	if path == "-" || path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func buildSink(format string, out *os.File, outputPath string) (runner.Sink, error) {
	switch format {
	case "ndjson":
		return sink.NewNDJSONWriter(out), nil
	case "arrow":
		w, err := sink.NewArrowWriter(out)
		if err != nil {
			return nil, fmt.Errorf("open arrow writer: %w", err)
		}
		return w, nil
	case "duckdb":
		if outputPath == "-" || outputPath == "" {
			return nil, fmt.Errorf("--output-format duckdb requires a file path in --output")
		}
		w, err := duckdbsink.Open(outputPath)
		if err != nil {
			return nil, fmt.Errorf("open duckdb sink: %w", err)
		}
		return w, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// guardSink wraps a Sink so its Flush runs at most once, regardless of
// how many callers (the runner's successful-path call, a cleanup
// defer) invoke it.
func guardSink(s runner.Sink) runner.Sink {
	return &onceFlushSink{inner: s}
}

type onceFlushSink struct {
	inner runner.Sink
	once  sync.Once
	err   error
}

func (s *onceFlushSink) Write(ms []myth.Myth) error { return s.inner.Write(ms) }

func (s *onceFlushSink) Flush() error {
	s.once.Do(func() { s.err = s.inner.Flush() })
	return s.err
}

// fanoutSink writes every batch to both a primary output sink and a
// secondary persisted cache sink.
type fanoutSink struct {
	primary runner.Sink
	cache   runner.Sink
}

func (f fanoutSink) Write(ms []myth.Myth) error {
	if err := f.primary.Write(ms); err != nil {
		return err
	}
	return f.cache.Write(ms)
}

func (f fanoutSink) Flush() error {
	if err := f.primary.Flush(); err != nil {
		return err
	}
	return f.cache.Flush()
}
