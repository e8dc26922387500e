// Package genome provides the gene annotation model used for region matching.
package genome

import "fmt"

// Strand is the orientation of a genomic feature.
type Strand int8

const (
	// StrandPositive is the forward strand ("+").
	StrandPositive Strand = 1
	// StrandNegative is the reverse strand ("-").
	StrandNegative Strand = -1
)

// ParseStrand parses "+" or "-" into a Strand.
func ParseStrand(s string) (Strand, error) {
	switch s {
	case "+":
		return StrandPositive, nil
	case "-":
		return StrandNegative, nil
	}
	return 0, fmt.Errorf("invalid strand %q: expected '+' or '-'", s)
}

// String returns the GTF representation of the strand.
func (s Strand) String() string {
	if s == StrandNegative {
		return "-"
	}
	return "+"
}
