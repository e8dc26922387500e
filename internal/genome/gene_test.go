package genome

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenumberExons_PositiveStrand(t *testing.T) {
	tr := NewTranscript("T1")
	// Exons arrive out of order, like an unsorted GTF.
	tr.AddExon(Exon{Start: 3000, End: 4000})
	tr.AddExon(Exon{Start: 1000, End: 2000})
	tr.AddExon(Exon{Start: 5000, End: 6000})

	tr.RenumberExons(StrandPositive)

	require.Len(t, tr.Exons, 3)
	assert.Equal(t, int64(1000), tr.Exons[0].Start)
	assert.Equal(t, "1", tr.Exons[0].Number)
	assert.Equal(t, "2", tr.Exons[1].Number)
	assert.Equal(t, "3", tr.Exons[2].Number)
}

func TestRenumberExons_NegativeStrand(t *testing.T) {
	tr := NewTranscript("T1")
	tr.AddExon(Exon{Start: 1000, End: 2000})
	tr.AddExon(Exon{Start: 3000, End: 4000})

	tr.RenumberExons(StrandNegative)

	// Transcription runs right to left: the highest exon is number 1.
	assert.Equal(t, "2", tr.Exons[0].Number)
	assert.Equal(t, "1", tr.Exons[1].Number)
}

func TestComputeBounds(t *testing.T) {
	tr := NewTranscript("T1")
	tr.AddExon(Exon{Start: 300, End: 400})
	tr.AddExon(Exon{Start: 100, End: 200})
	tr.ComputeBounds()

	assert.Equal(t, int64(100), tr.Start)
	assert.Equal(t, int64(400), tr.End)

	g := NewGene("G1", StrandPositive)
	g.AddTranscript(tr)
	g.ComputeBounds()

	assert.Equal(t, int64(100), g.Start)
	assert.Equal(t, int64(400), g.End)
}

func TestSetBoundsOverridesComputed(t *testing.T) {
	g := NewGene("G1", StrandPositive)
	g.SetBounds(50, 500)

	assert.Equal(t, int64(50), g.Start)
	assert.Equal(t, int64(500), g.End)
}

func TestExonLength(t *testing.T) {
	e := Exon{Start: 100, End: 100}
	assert.Equal(t, int64(1), e.Length())

	e = Exon{Start: 100, End: 200}
	assert.Equal(t, int64(101), e.Length())
}
