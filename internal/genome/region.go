package genome

import "fmt"

// Region is an input genomic interval (e.g. a peak) to be annotated.
type Region struct {
	Chrom string
	Start int64
	End   int64
	// Metadata holds the extra BED columns, in file order.
	Metadata []string
}

// Length returns the region length in bp (end - start + 1).
func (r *Region) Length() int64 {
	return r.End - r.Start + 1
}

// Midpoint returns the region midpoint using truncating integer division.
func (r *Region) Midpoint() int64 {
	return (r.Start + r.End) / 2
}

// ID returns the region identifier "chrom_start_end".
func (r *Region) ID() string {
	return fmt.Sprintf("%s_%d_%d", r.Chrom, r.Start, r.End)
}
