package variant

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseError reports a malformed input line together with its 1-based
// line number, matching the error shape used across the other loaders
// in this module.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Parser reads variant records from a tab-separated stream with
// columns chr, pos (1-based), id, ref, alt, qual, filter, info.
// Gzip-compressed input is detected automatically from its magic
// bytes. Lines that are blank or start with '#' are skipped.
type Parser struct {
	scanner *bufio.Scanner
	gz      *gzip.Reader
	line    int
}

// NewParser wraps r, auto-detecting gzip compression by peeking at the
// stream's magic bytes.
func NewParser(r io.Reader) (*Parser, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("peek input: %w", err)
	}

	p := &Parser{}
	var source io.Reader = br
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		p.gz = gz
		source = gz
	}

	scanner := bufio.NewScanner(source)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 16*1024*1024)
	p.scanner = scanner
	return p, nil
}

// Close releases the underlying gzip reader, if one was opened.
func (p *Parser) Close() error {
	if p.gz != nil {
		return p.gz.Close()
	}
	return nil
}

// LineNumber returns the 1-based line number of the most recently
// returned record.
func (p *Parser) LineNumber() int { return p.line }

// Next returns the next variant record, or io.EOF once the stream is
// exhausted.
func (p *Parser) Next() (Variant, error) {
	for p.scanner.Scan() {
		p.line++
		line := p.scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		v, err := p.parseLine(line)
		if err != nil {
			return Variant{}, &ParseError{Line: p.line, Message: err.Error()}
		}
		return v, nil
	}
	if err := p.scanner.Err(); err != nil {
		return Variant{}, fmt.Errorf("scan variants: %w", err)
	}
	return Variant{}, io.EOF
}

func (p *Parser) parseLine(line string) (Variant, error) {
	cols := strings.Split(line, "\t")
	if len(cols) < 8 {
		return Variant{}, fmt.Errorf("expected at least 8 tab-separated columns, got %d", len(cols))
	}

	chrom := cols[0]
	pos1, err := strconv.ParseInt(cols[1], 10, 64)
	if err != nil {
		return Variant{}, fmt.Errorf("invalid pos %q: %w", cols[1], err)
	}
	ref := cols[3]
	alt := cols[4]
	info := parseInfo(cols[7])

	kind, err := KindFromAlt(alt, info)
	if err != nil {
		return Variant{}, err
	}

	return Variant{
		Chrom:     chrom,
		Pos0Based: pos1 - 1,
		Ref:       ref,
		Alt:       alt,
		Kind:      kind,
	}, nil
}

// parseInfo splits a `;`-delimited key=value list, keeping flag-only
// entries (no `=`) as an empty string value so their presence is still
// observable via a map lookup.
func parseInfo(s string) map[string]string {
	out := make(map[string]string)
	if s == "" || s == "." {
		return out
	}
	for _, field := range strings.Split(s, ";") {
		if field == "" {
			continue
		}
		if idx := strings.IndexByte(field, '='); idx != -1 {
			out[field[:idx]] = field[idx+1:]
		} else {
			out[field] = ""
		}
	}
	return out
}
