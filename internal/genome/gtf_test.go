package genome

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exonOnlyGTF = `# comment line
chr1	havana	exon	1000	2000	.	+	.	gene_id "G1"; transcript_id "T1";
chr1	havana	exon	3000	4000	.	+	.	gene_id "G1"; transcript_id "T1";
chr1	havana	exon	500	600	.	-	.	gene_id "G2"; transcript_id "T2";
chr1	havana	exon	800	900	.	-	.	gene_id "G2"; transcript_id "T2";
chr2	havana	exon	100	200	.	+	.	gene_id "G3"; transcript_id "T3";
`

func writeGTF(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestGTFLoader_ExonOnlyFile(t *testing.T) {
	path := writeGTF(t, "genes.gtf", exonOnlyGTF)

	set, err := NewGTFLoader(path, "gene_id", "transcript_id").Load()
	require.NoError(t, err)

	assert.Equal(t, 3, set.GeneCount())
	assert.Equal(t, []string{"chr1", "chr2"}, set.Chromosomes())

	genes := set.Genes("chr1")
	require.Len(t, genes, 2)

	// Genes are sorted by start: G2 at 500 before G1 at 1000.
	g2 := genes[0]
	assert.Equal(t, "G2", g2.ID)
	assert.Equal(t, StrandNegative, g2.Strand)
	assert.Equal(t, int64(500), g2.Start)
	assert.Equal(t, int64(900), g2.End)

	// Negative-strand exon numbering runs high to low.
	require.Len(t, g2.Transcripts, 1)
	exons := g2.Transcripts[0].Exons
	require.Len(t, exons, 2)
	assert.Equal(t, "2", exons[0].Number)
	assert.Equal(t, "1", exons[1].Number)

	g1 := genes[1]
	assert.Equal(t, "G1", g1.ID)
	assert.Equal(t, int64(1000), g1.Start)
	assert.Equal(t, int64(4000), g1.End)
	assert.Equal(t, "1", g1.Transcripts[0].Exons[0].Number)
}

func TestGTFLoader_GeneAndTranscriptRecords(t *testing.T) {
	// Explicit gene/transcript bounds win over exon-derived ones.
	content := `chr1	havana	gene	900	4100	.	+	.	gene_id "G1";
chr1	havana	transcript	950	4050	.	+	.	gene_id "G1"; transcript_id "T1";
chr1	havana	exon	1000	2000	.	+	.	gene_id "G1"; transcript_id "T1";
`
	path := writeGTF(t, "genes.gtf", content)

	set, err := NewGTFLoader(path, "gene_id", "transcript_id").Load()
	require.NoError(t, err)

	genes := set.Genes("chr1")
	require.Len(t, genes, 1)
	assert.Equal(t, int64(900), genes[0].Start)
	assert.Equal(t, int64(4100), genes[0].End)
	assert.Equal(t, int64(950), genes[0].Transcripts[0].Start)
	assert.Equal(t, int64(4050), genes[0].Transcripts[0].End)
}

func TestGTFLoader_GzippedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genes.gtf.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(exonOnlyGTF))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	set, err := NewGTFLoader(path, "gene_id", "transcript_id").Load()
	require.NoError(t, err)
	assert.Equal(t, 3, set.GeneCount())
}

func TestGTFLoader_CustomAttributeTags(t *testing.T) {
	content := `chr1	x	exon	100	200	.	+	.	g "A"; tr "A.1"; gene_id "ignored";
`
	path := writeGTF(t, "genes.gtf", content)

	set, err := NewGTFLoader(path, "g", "tr").Load()
	require.NoError(t, err)

	genes := set.Genes("chr1")
	require.Len(t, genes, 1)
	assert.Equal(t, "A", genes[0].ID)
	assert.Equal(t, "A.1", genes[0].Transcripts[0].ID)
}

func TestGTFLoader_MissingAttributeFails(t *testing.T) {
	content := `chr1	x	exon	100	200	.	+	.	transcript_id "T1";
`
	path := writeGTF(t, "genes.gtf", content)

	_, err := NewGTFLoader(path, "gene_id", "transcript_id").Load()
	assert.Error(t, err)
}

func TestGTFLoader_SkipsUnstrandedRecords(t *testing.T) {
	content := `chr1	x	exon	100	200	.	.	.	gene_id "G1"; transcript_id "T1";
chr1	x	exon	300	400	.	+	.	gene_id "G2"; transcript_id "T2";
`
	path := writeGTF(t, "genes.gtf", content)

	set, err := NewGTFLoader(path, "gene_id", "transcript_id").Load()
	require.NoError(t, err)
	require.Len(t, set.Genes("chr1"), 1)
	assert.Equal(t, "G2", set.Genes("chr1")[0].ID)
}

func TestGTFLoader_MissingFile(t *testing.T) {
	_, err := NewGTFLoader("/no/such/file.gtf", "gene_id", "transcript_id").Load()
	assert.Error(t, err)
}

func TestExtractAttribute(t *testing.T) {
	attrs := `gene_id "G1"; transcript_id "T1.2"; gene_name "FOO";`

	v, ok := extractAttribute(attrs, "transcript_id")
	require.True(t, ok)
	assert.Equal(t, "T1.2", v)

	_, ok = extractAttribute(attrs, "exon_number")
	assert.False(t, ok)
}
