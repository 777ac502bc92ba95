// Package codon parses genetic-code translation tables in the NCBI
// six-line block format and translates DNA codons to amino acids.
package codon

import (
	"fmt"
	"strings"
)

const (
	prefixWidth = 10
	rowWidth    = 64
)

var bases = [4]byte{'T', 'C', 'A', 'G'}

// codonOrder lists the 64 codons in the order the NCBI block format
// enumerates them: base1 varies slowest, base3 fastest.
var codonOrder = func() [64]string {
	var out [64]string
	i := 0
	for _, b1 := range bases {
		for _, b2 := range bases {
			for _, b3 := range bases {
				out[i] = string([]byte{b1, b2, b3})
				i++
			}
		}
	}
	return out
}()

// Table is a genetic code: codon -> amino acid, plus which codons are
// valid start codons.
type Table struct {
	aminoAcid map[string]byte
	isStart   map[string]bool
}

// Parse reads a 6-line block: a name/header line followed by five
// rows (AAs, Starts, Base1, Base2, Base3), each carrying a fixed
// 10-character prefix ahead of a 64-character row. Rows are
// upper-cased before indexing.
func Parse(block string) (*Table, error) {
	lines := strings.Split(strings.TrimRight(block, "\n"), "\n")
	if len(lines) != 6 {
		return nil, fmt.Errorf("codon table block must have exactly 6 lines, got %d", len(lines))
	}

	rows := make([]string, 5)
	for i, line := range lines[1:] {
		if len(line) < prefixWidth+rowWidth {
			return nil, fmt.Errorf("codon table line %d too short: got %d chars, want at least %d", i+2, len(line), prefixWidth+rowWidth)
		}
		row := strings.ToUpper(line[prefixWidth : prefixWidth+rowWidth])
		if len(row) != rowWidth {
			return nil, fmt.Errorf("codon table line %d has row width %d, want %d", i+2, len(row), rowWidth)
		}
		rows[i] = row
	}
	aas, starts := rows[0], rows[1]

	t := &Table{
		aminoAcid: make(map[string]byte, 64),
		isStart:   make(map[string]bool, 64),
	}
	for i, codon := range codonOrder {
		t.aminoAcid[codon] = aas[i]
		t.isStart[codon] = starts[i] == 'M'
	}
	return t, nil
}

// Standard is the default vertebrate/standard genetic code (NCBI
// translation table 1), used when no codon table is supplied.
var Standard = mustParse(standardBlock)

func mustParse(block string) *Table {
	t, err := Parse(block)
	if err != nil {
		panic(err)
	}
	return t
}

const standardBlock = `Standard
   AAs  = FFLLSSSSYY**CC*WLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG
 Starts = ---M---------------M------------MMMM---------------M------------
 Base1  = TTTTTTTTTTTTTTTTCCCCCCCCCCCCCCCCAAAAAAAAAAAAAAAAGGGGGGGGGGGGGGGG
 Base2  = TTTTCCCCAAAAGGGGTTTTCCCCAAAAGGGGTTTTCCCCAAAAGGGGTTTTCCCCAAAAGGGG
 Base3  = TCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAG
`

// Translate returns the amino acid for codon, 'X' if codon is not
// exactly 3 letters or contains unrecognised bases.
func (t *Table) Translate(codon string) byte {
	if len(codon) != 3 {
		return 'X'
	}
	aa, ok := t.aminoAcid[strings.ToUpper(codon)]
	if !ok {
		return 'X'
	}
	return aa
}

// IsStop reports whether codon translates to a stop.
func (t *Table) IsStop(codon string) bool {
	return t.Translate(codon) == '*'
}

// IsStart reports whether codon is a valid start codon in this table.
func (t *Table) IsStart(codon string) bool {
	return t.isStart[strings.ToUpper(codon)]
}

// TranslateSequence translates seq codon by codon, truncating any
// trailing partial codon.
func (t *Table) TranslateSequence(seq []byte) []byte {
	n := (len(seq) / 3) * 3
	out := make([]byte, 0, n/3)
	for i := 0; i < n; i += 3 {
		out = append(out, t.Translate(string(seq[i:i+3])))
	}
	return out
}

