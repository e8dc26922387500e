package match

import "github.com/inodb/rgmatch/internal/genome"

// Candidate is one possible association between a region and a gene
// feature. A region usually produces several candidates before the report
// level reduces them.
type Candidate struct {
	// Start and End are the coordinates of the exon the association was
	// derived from.
	Start int64
	End   int64

	Strand genome.Strand

	// Label is the exon or intron number, comma-joined after merging.
	Label string

	Area       genome.Area
	Transcript string
	Gene       string

	// Distance from the region midpoint, zero for overlapping candidates.
	Distance int64

	// PctRegion and PctArea are overlap percentages. PctArea is -1 when
	// the concept does not apply (upstream/downstream associations).
	PctRegion float64
	PctArea   float64

	// TSSDistance is the signed distance from the region midpoint to the
	// transcription start site of the transcript.
	TSSDistance int64
}
