package sink

import (
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/mythos-bio/vmyth/internal/myth"
)

// columnDocs carries the documentation string for each column as
// field-level metadata, matching the "file-level key/value metadata"
// requirement from the external interfaces.
var columnDocs = []struct {
	name string
	doc  string
	typ  arrow.DataType
}{
	{"chr", "chromosome name, byte-exact (no chr-prefix normalisation)", arrow.BinaryTypes.String},
	{"pos", "1-based genomic position of the variant", arrow.PrimitiveTypes.Uint64},
	{"ref", "reference allele", arrow.BinaryTypes.String},
	{"alt", "alternate allele", arrow.BinaryTypes.String},
	{"source", "provenance column of the overlapping feature group", arrow.BinaryTypes.String},
	{"transcript_id", "transcript this sub-annotation was resolved against", arrow.BinaryTypes.String},
	{"gene_name", "semicolon-joined gene names contributing to this group", arrow.BinaryTypes.String},
	{"feature", "feature kind, reserved for future use", arrow.BinaryTypes.String},
	{"effects", "semicolon-joined Sequence Ontology effect terms", arrow.BinaryTypes.String},
	{"impact", "integer impact code, 0=Other .. 4=High", arrow.PrimitiveTypes.Uint8},
}

// Schema builds the Arrow schema named in the external interfaces.
func Schema() *arrow.Schema {
	fields := make([]arrow.Field, len(columnDocs))
	for i, c := range columnDocs {
		fields[i] = arrow.Field{
			Name:     c.name,
			Type:     c.typ,
			Nullable: true,
			Metadata: arrow.NewMetadata([]string{"doc"}, []string{c.doc}),
		}
	}
	return arrow.NewSchema(fields, nil)
}

// ArrowWriter batches Records into Arrow record batches and streams
// them through the Arrow IPC file format.
type ArrowWriter struct {
	w      *ipc.FileWriter
	pool   memory.Allocator
	schema *arrow.Schema
}

// NewArrowWriter opens an IPC file writer against w using Schema().
func NewArrowWriter(w io.Writer) (*ArrowWriter, error) {
	schema := Schema()
	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(schema))
	if err != nil {
		return nil, fmt.Errorf("open arrow file writer: %w", err)
	}
	return &ArrowWriter{w: fw, pool: memory.NewGoAllocator(), schema: schema}, nil
}

// Write implements runner.Sink.
func (a *ArrowWriter) Write(batch []myth.Myth) error {
	builder := array.NewRecordBuilder(a.pool, a.schema)
	defer builder.Release()

	for _, m := range batch {
		for _, r := range Flatten(m) {
			appendRecord(builder, r)
		}
	}

	rec := builder.NewRecord()
	defer rec.Release()
	if err := a.w.Write(rec); err != nil {
		return fmt.Errorf("write arrow record batch: %w", err)
	}
	return nil
}

func appendRecord(b *array.RecordBuilder, r Record) {
	b.Field(0).(*array.StringBuilder).Append(r.Chr)
	b.Field(1).(*array.Uint64Builder).Append(r.Pos)
	b.Field(2).(*array.StringBuilder).Append(r.Ref)
	b.Field(3).(*array.StringBuilder).Append(r.Alt)
	appendOptionalString(b.Field(4).(*array.StringBuilder), r.Source)
	appendOptionalString(b.Field(5).(*array.StringBuilder), r.TranscriptID)
	appendOptionalString(b.Field(6).(*array.StringBuilder), r.GeneName)
	appendOptionalString(b.Field(7).(*array.StringBuilder), r.Feature)
	appendOptionalString(b.Field(8).(*array.StringBuilder), r.Effects)

	ib := b.Field(9).(*array.Uint8Builder)
	if r.Impact == nil {
		ib.AppendNull()
	} else {
		ib.Append(*r.Impact)
	}
}

func appendOptionalString(b *array.StringBuilder, s *string) {
	if s == nil {
		b.AppendNull()
		return
	}
	b.Append(*s)
}

// Flush closes the IPC writer, finalising the file's footer.
func (a *ArrowWriter) Flush() error {
	return a.w.Close()
}
