// Package duckdbsink persists myths into a DuckDB table via the
// Appender API, giving repeated runs over the same variant set a
// queryable cache alongside the record-stream and columnar sinks.
package duckdbsink

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/mythos-bio/vmyth/internal/myth"
	"github.com/mythos-bio/vmyth/internal/sink"
)

// Sink writes myth records into a DuckDB table, implementing
// runner.Sink.
type Sink struct {
	db *sql.DB
}

// Open opens or creates a DuckDB database at path and ensures the
// myth_annotations table exists. An empty path opens an in-memory
// database.
func Open(path string) (*Sink, error) {
	if path != "" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("create cache directory: %w", err)
			}
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Sink{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

func (s *Sink) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS myth_annotations (
		chr VARCHAR,
		pos UBIGINT,
		ref VARCHAR,
		alt VARCHAR,
		source VARCHAR,
		transcript_id VARCHAR,
		gene_name VARCHAR,
		feature VARCHAR,
		effects VARCHAR,
		impact UTINYINT
	)`)
	return err
}

// Write implements runner.Sink by appending every flattened record of
// every myth in batch through DuckDB's Appender API.
func (s *Sink) Write(batch []myth.Myth) error {
	if len(batch) == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "myth_annotations")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, m := range batch {
		for _, r := range sink.Flatten(m) {
			if err := appender.AppendRow(
				r.Chr, r.Pos, r.Ref, r.Alt,
				optionalString(r.Source), optionalString(r.TranscriptID),
				optionalString(r.GeneName), optionalString(r.Feature),
				optionalString(r.Effects), optionalImpact(r.Impact),
			); err != nil {
				return fmt.Errorf("append myth record: %w", err)
			}
		}
	}
	return appender.Flush()
}

// Flush closes the underlying connection pool; DuckDB has already
// persisted every appended batch at that point.
func (s *Sink) Flush() error {
	return s.db.Close()
}

func optionalString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func optionalImpact(v *uint8) any {
	if v == nil {
		return nil
	}
	return *v
}
