package feature

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ParseError reports a malformed annotation record, carrying the
// 1-based input line number for diagnostics.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("annotations line %d: %s", e.Line, e.Message)
}

// Reader parses the tab-separated annotation record format: seqname,
// source, feature, start, stop, score, strand, frame, attributes.
// Lines starting with "#" and blank lines are skipped.
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

// NewReader wraps r. Callers are responsible for any transparent
// decompression before the stream reaches here.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 16*1024*1024)
	return &Reader{scanner: scanner}
}

// Next returns the next Feature, or io.EOF when the stream is
// exhausted. A malformed record returns a *ParseError.
func (r *Reader) Next() (Feature, error) {
	for r.scanner.Scan() {
		r.line++
		line := r.scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		f, err := parseLine(line)
		if err != nil {
			return Feature{}, &ParseError{Line: r.line, Message: err.Error()}
		}
		return f, nil
	}
	if err := r.scanner.Err(); err != nil {
		return Feature{}, fmt.Errorf("scan annotations: %w", err)
	}
	return Feature{}, io.EOF
}

func parseLine(line string) (Feature, error) {
	cols := strings.Split(line, "\t")
	if len(cols) < 9 {
		return Feature{}, fmt.Errorf("expected 9 columns, got %d", len(cols))
	}

	start, err := strconv.ParseInt(cols[3], 10, 64)
	if err != nil {
		return Feature{}, fmt.Errorf("parse start: %w", err)
	}
	stop, err := strconv.ParseInt(cols[4], 10, 64)
	if err != nil {
		return Feature{}, fmt.Errorf("parse stop: %w", err)
	}

	score := ParseScore(cols[5])
	frame, err := ParseFrame(cols[7])
	if err != nil {
		return Feature{}, fmt.Errorf("parse frame: %w", err)
	}

	return New(
		cols[0],
		start, stop,
		cols[2],
		cols[1],
		ParseStrand(cols[6]),
		frame,
		ParseAttributes(cols[8]),
		score,
	)
}

// ParseScore decodes the score column; "." maps to +Inf per the
// documented sentinel convention.
func ParseScore(s string) float64 {
	if s == "." || s == "" {
		return math.Inf(1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.Inf(1)
	}
	return v
}
