package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/rgmatch/internal/genome"
)

// makeGene builds a gene whose transcripts get bounds and exon numbers
// computed the way the GTF loader would.
func makeGene(id string, strand genome.Strand, transcripts ...*genome.Transcript) *genome.Gene {
	g := genome.NewGene(id, strand)
	for _, t := range transcripts {
		t.ComputeBounds()
		t.RenumberExons(strand)
		g.AddTranscript(t)
	}
	g.ComputeBounds()
	return g
}

func makeTranscript(id string, exons ...genome.Exon) *genome.Transcript {
	t := genome.NewTranscript(id)
	for _, e := range exons {
		t.AddExon(e)
	}
	return t
}

// threeExonGene is a positive-strand gene with exons [1000,2000],
// [3000,4000], [5000,6000].
func threeExonGene() *genome.Gene {
	return makeGene("G1", genome.StrandPositive,
		makeTranscript("T1",
			genome.Exon{Start: 1000, End: 2000},
			genome.Exon{Start: 3000, End: 4000},
			genome.Exon{Start: 5000, End: 6000},
		))
}

func region(start, end int64) genome.Region {
	return genome.Region{Chrom: "chr1", Start: start, End: end}
}

func TestMatchRegion_InsideFirstExon(t *testing.T) {
	genes := []*genome.Gene{threeExonGene()}
	cfg := DefaultConfig()

	cands := MatchRegion(region(1200, 1400), genes, cfg, 0)

	require.Len(t, cands, 1)
	c := cands[0]
	assert.Equal(t, genome.AreaFirstExon, c.Area)
	assert.Equal(t, "1", c.Label)
	assert.Equal(t, "T1", c.Transcript)
	assert.Equal(t, "G1", c.Gene)
	assert.Equal(t, 100.0, c.PctRegion)
	assert.InDelta(t, 201.0/1001.0*100.0, c.PctArea, 1e-9)
	assert.Equal(t, int64(300), c.TSSDistance) // midpoint 1300, TSS 1000
}

func TestMatchRegion_InsideIntron(t *testing.T) {
	genes := []*genome.Gene{threeExonGene()}
	cfg := DefaultConfig()

	cands := MatchRegion(region(2200, 2400), genes, cfg, 0)

	require.Len(t, cands, 1)
	c := cands[0]
	assert.Equal(t, genome.AreaIntron, c.Area)
	assert.Equal(t, "1", c.Label)
	assert.Equal(t, 100.0, c.PctRegion)
	assert.InDelta(t, 201.0/999.0*100.0, c.PctArea, 1e-9)
	assert.Equal(t, int64(0), c.Distance)
}

func TestMatchRegion_SpansExonIntronExon(t *testing.T) {
	genes := []*genome.Gene{threeExonGene()}
	cfg := DefaultConfig()

	// [1800, 3200] covers the tail of exon 1, all of intron 1, and the
	// head of exon 2.
	cands := MatchRegion(region(1800, 3200), genes, cfg, 0)

	require.Len(t, cands, 3)

	first := cands[0]
	assert.Equal(t, genome.AreaFirstExon, first.Area)
	assert.Equal(t, "1", first.Label)
	assert.InDelta(t, 201.0/1401.0*100.0, first.PctRegion, 1e-9)

	body := cands[1]
	assert.Equal(t, genome.AreaGeneBody, body.Area)
	assert.Equal(t, "2", body.Label)
	assert.InDelta(t, 201.0/1401.0*100.0, body.PctRegion, 1e-9)

	intron := cands[2]
	assert.Equal(t, genome.AreaIntron, intron.Area)
	assert.Equal(t, "1", intron.Label)
	assert.InDelta(t, 999.0/1401.0*100.0, intron.PctRegion, 1e-9)
	assert.Equal(t, 100.0, intron.PctArea)
}

func TestMatchRegion_UpstreamSplitsIntoZones(t *testing.T) {
	genes := []*genome.Gene{threeExonGene()}
	cfg := DefaultConfig()

	// Midpoint 600 is 400 bp before the TSS at 1000: inside the promoter
	// zone but past the TSS zone.
	cands := MatchRegion(region(500, 700), genes, cfg, 0)

	require.Len(t, cands, 1)
	c := cands[0]
	assert.Equal(t, genome.AreaPromoter, c.Area)
	assert.Equal(t, int64(400), c.Distance)
	assert.Equal(t, 100.0, c.PctRegion)
	assert.InDelta(t, 201.0/1300.0*100.0, c.PctArea, 1e-9)
}

func TestMatchRegion_DownstreamOfLastExon(t *testing.T) {
	genes := []*genome.Gene{threeExonGene()}
	cfg := DefaultConfig()

	cands := MatchRegion(region(6500, 6700), genes, cfg, 0)

	require.Len(t, cands, 1)
	c := cands[0]
	assert.Equal(t, genome.AreaDownstream, c.Area)
	assert.Equal(t, int64(600), c.Distance) // midpoint 6600, exon end 6000
	assert.Equal(t, 100.0, c.PctRegion)
	assert.Equal(t, -1.0, c.PctArea)
}

func TestMatchRegion_DownstreamSplitWhenTTSEnabled(t *testing.T) {
	genes := []*genome.Gene{threeExonGene()}
	cfg := DefaultConfig()
	cfg.TTS = 1000

	cands := MatchRegion(region(6500, 6700), genes, cfg, 0)

	require.Len(t, cands, 1)
	assert.Equal(t, genome.AreaTTS, cands[0].Area)
}

func TestMatchRegion_BeyondMaxDistance(t *testing.T) {
	genes := []*genome.Gene{threeExonGene()}
	cfg := DefaultConfig()

	// Midpoint 50100 is 44100 bp past the last exon, beyond the 10 kb
	// reporting distance.
	cands := MatchRegion(region(50000, 50200), genes, cfg, 0)
	assert.Empty(t, cands)
}

func TestMatchRegion_NegativeStrandFirstExon(t *testing.T) {
	g := makeGene("G2", genome.StrandNegative,
		makeTranscript("T2",
			genome.Exon{Start: 1000, End: 2000},
			genome.Exon{Start: 3000, End: 4000},
		))
	cfg := DefaultConfig()

	// On the negative strand the highest-coordinate exon is exon 1.
	cands := MatchRegion(region(3200, 3400), []*genome.Gene{g}, cfg, 0)

	require.Len(t, cands, 1)
	c := cands[0]
	assert.Equal(t, genome.AreaFirstExon, c.Area)
	assert.Equal(t, "1", c.Label)
	assert.Equal(t, int64(700), c.TSSDistance) // TSS at 4000, midpoint 3300
}

func TestMatchRegion_NegativeStrandUpstreamBeyondGene(t *testing.T) {
	g := makeGene("G2", genome.StrandNegative,
		makeTranscript("T2",
			genome.Exon{Start: 1000, End: 2000},
			genome.Exon{Start: 3000, End: 4000},
		))
	cfg := DefaultConfig()

	// Above a negative-strand gene lies its upstream side. Midpoint 4500
	// is 500 bp from the first exon's start at 4000... the anchor exon
	// starts at 3000 so the zone math runs on the mirrored coordinates.
	cands := MatchRegion(region(4400, 4600), []*genome.Gene{g}, cfg, 0)

	require.NotEmpty(t, cands)
	for _, c := range cands {
		assert.Contains(t, []genome.Area{
			genome.AreaPromoter, genome.AreaUpstream, genome.AreaTSS,
		}, c.Area)
	}
}

func TestMatchRegion_OverlapSuppressesProximity(t *testing.T) {
	// Two genes: the region overlaps the first, so the nearby second
	// gene must not produce an upstream/downstream candidate.
	g1 := threeExonGene()
	g2 := makeGene("G3", genome.StrandPositive,
		makeTranscript("T3", genome.Exon{Start: 8000, End: 9000}))

	cfg := DefaultConfig()
	cands := MatchRegion(region(1200, 1400), []*genome.Gene{g1, g2}, cfg, 0)

	for _, c := range cands {
		assert.NotEqual(t, genome.AreaUpstream, c.Area)
		assert.NotEqual(t, genome.AreaDownstream, c.Area)
		assert.Equal(t, "G1", c.Gene)
	}
}

func TestMatchRegion_AggregatesIntronFragmentsPerTranscript(t *testing.T) {
	// A region spanning two introns of the same transcript must come out
	// as one intron candidate with comma-joined numbers.
	g := makeGene("G4", genome.StrandPositive,
		makeTranscript("T4",
			genome.Exon{Start: 1000, End: 1100},
			genome.Exon{Start: 1200, End: 1300},
			genome.Exon{Start: 1400, End: 1500},
		))
	cfg := DefaultConfig()

	// [1150, 1350] covers intron 1 tail, exon 2, intron 2 head.
	cands := MatchRegion(region(1150, 1350), []*genome.Gene{g}, cfg, 0)

	var intron *Candidate
	for i := range cands {
		if cands[i].Area == genome.AreaIntron {
			require.Nil(t, intron, "expected a single aggregated intron candidate")
			intron = &cands[i]
		}
	}
	require.NotNil(t, intron)
	assert.Equal(t, "1,2", intron.Label)
}

func TestMatchRegion_StartIndexSkipsEarlierGenes(t *testing.T) {
	early := makeGene("G0", genome.StrandPositive,
		makeTranscript("T0", genome.Exon{Start: 100, End: 200}))
	target := threeExonGene()
	genes := []*genome.Gene{early, target}

	cfg := DefaultConfig()

	// Starting the scan past G0 must still find G1.
	cands := MatchRegion(region(1200, 1400), genes, cfg, 1)
	require.Len(t, cands, 1)
	assert.Equal(t, "G1", cands[0].Gene)
}
