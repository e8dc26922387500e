package genome

import (
	"math"
	"sort"
	"strconv"
)

// Exon is a single exon within a transcript.
type Exon struct {
	Start int64 // Genomic start (1-based)
	End   int64 // Genomic end (1-based, inclusive)
	// Number is the strand-aware exon number, assigned by
	// Transcript.RenumberExons. Empty until renumbering runs.
	Number string
}

// Length returns the exon length in bp.
func (e *Exon) Length() int64 {
	return e.End - e.Start + 1
}

// Transcript is one isoform of a gene.
type Transcript struct {
	ID    string
	Exons []Exon
	Start int64 // Minimum start; math.MaxInt64 until set
	End   int64 // Maximum end; 0 until set
}

// NewTranscript creates an empty transcript with unset bounds.
func NewTranscript(id string) *Transcript {
	return &Transcript{ID: id, Start: math.MaxInt64, End: 0}
}

// AddExon appends an exon. Ordering is fixed up later by RenumberExons.
func (t *Transcript) AddExon(e Exon) {
	t.Exons = append(t.Exons, e)
}

// SetBounds sets the transcript boundaries from an explicit transcript record.
func (t *Transcript) SetBounds(start, end int64) {
	t.Start = start
	t.End = end
}

// ComputeBounds derives the boundaries from exon coordinates. Used when the
// annotation source has no transcript records.
func (t *Transcript) ComputeBounds() {
	for i := range t.Exons {
		if t.Exons[i].Start < t.Start {
			t.Start = t.Exons[i].Start
		}
		if t.Exons[i].End > t.End {
			t.End = t.Exons[i].End
		}
	}
}

// RenumberExons sorts exons ascending by start and assigns exon numbers.
// Positive strand numbers run 1..N left to right; negative strand runs
// N..1, so exon "1" is always the transcription start.
func (t *Transcript) RenumberExons(strand Strand) {
	sort.Slice(t.Exons, func(i, j int) bool {
		return t.Exons[i].Start < t.Exons[j].Start
	})

	n := len(t.Exons)
	for i := range t.Exons {
		if strand == StrandPositive {
			t.Exons[i].Number = strconv.Itoa(i + 1)
		} else {
			t.Exons[i].Number = strconv.Itoa(n - i)
		}
	}
}

// Gene groups the transcripts sharing a gene ID.
type Gene struct {
	ID          string
	Strand      Strand
	Transcripts []*Transcript
	Start       int64 // Minimum start; math.MaxInt64 until set
	End         int64 // Maximum end; 0 until set
}

// NewGene creates an empty gene with unset bounds.
func NewGene(id string, strand Strand) *Gene {
	return &Gene{ID: id, Strand: strand, Start: math.MaxInt64, End: 0}
}

// AddTranscript appends a transcript, preserving first-seen order.
func (g *Gene) AddTranscript(t *Transcript) {
	g.Transcripts = append(g.Transcripts, t)
}

// SetBounds sets the gene boundaries from an explicit gene record.
func (g *Gene) SetBounds(start, end int64) {
	g.Start = start
	g.End = end
}

// ComputeBounds derives the boundaries from transcript coordinates.
func (g *Gene) ComputeBounds() {
	for _, t := range g.Transcripts {
		if t.Start < g.Start {
			g.Start = t.Start
		}
		if t.End > g.End {
			g.End = t.End
		}
	}
}
