package genome

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// GTFLoader loads gene annotations from a GTF file.
type GTFLoader struct {
	path          string
	geneTag       string
	transcriptTag string
}

// NewGTFLoader creates a loader reading gene and transcript IDs from the
// given attribute tags (normally "gene_id" and "transcript_id").
func NewGTFLoader(path, geneTag, transcriptTag string) *GTFLoader {
	return &GTFLoader{path: path, geneTag: geneTag, transcriptTag: transcriptTag}
}

// Load parses the GTF file and returns a finalized gene set.
func (l *GTFLoader) Load() (*Set, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open GTF file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f

	// Handle gzipped files
	if strings.HasSuffix(l.path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	return l.parse(reader)
}

// parse reads GTF content and builds the gene hierarchy.
func (l *GTFLoader) parse(reader io.Reader) (*Set, error) {
	scanner := bufio.NewScanner(reader)
	// Increase buffer size for long attribute columns
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	genes := make(map[string]*Gene)
	transcripts := make(map[string]*Transcript)
	geneOrder := make(map[string][]string) // chrom -> gene IDs in first-seen order

	// Whether the file carried explicit gene/transcript records. When it
	// did not, bounds are computed from the exons afterwards.
	var geneRecords, transcriptRecords bool

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 9 {
			continue
		}

		chrom := fields[0]
		featureType := fields[2]

		start, err := strconv.ParseInt(fields[3], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse start coordinate: %w", err)
		}
		end, err := strconv.ParseInt(fields[4], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse end coordinate: %w", err)
		}

		strand, err := ParseStrand(fields[6])
		if err != nil {
			continue // entries without a usable strand carry no position info we need
		}

		attributes := fields[8]

		switch featureType {
		case "exon":
			geneID, ok := extractAttribute(attributes, l.geneTag)
			if !ok {
				return nil, fmt.Errorf("exon record without %s attribute", l.geneTag)
			}
			transcriptID, ok := extractAttribute(attributes, l.transcriptTag)
			if !ok {
				return nil, fmt.Errorf("exon record without %s attribute", l.transcriptTag)
			}

			gene := l.ensureGene(genes, geneOrder, chrom, geneID, strand)
			t := l.ensureTranscript(transcripts, gene, transcriptID)
			t.AddExon(Exon{Start: start, End: end})

		case "transcript":
			transcriptRecords = true

			geneID, ok := extractAttribute(attributes, l.geneTag)
			if !ok {
				return nil, fmt.Errorf("transcript record without %s attribute", l.geneTag)
			}
			transcriptID, ok := extractAttribute(attributes, l.transcriptTag)
			if !ok {
				return nil, fmt.Errorf("transcript record without %s attribute", l.transcriptTag)
			}

			gene := l.ensureGene(genes, geneOrder, chrom, geneID, strand)
			t := l.ensureTranscript(transcripts, gene, transcriptID)
			t.SetBounds(start, end)

		case "gene":
			geneRecords = true

			geneID, ok := extractAttribute(attributes, l.geneTag)
			if !ok {
				return nil, fmt.Errorf("gene record without %s attribute", l.geneTag)
			}

			gene := l.ensureGene(genes, geneOrder, chrom, geneID, strand)
			gene.SetBounds(start, end)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan GTF: %w", err)
	}

	// Post-processing: number exons and fill in bounds the file didn't carry.
	for _, gene := range genes {
		for _, t := range gene.Transcripts {
			t.RenumberExons(gene.Strand)
			if !transcriptRecords {
				t.ComputeBounds()
			}
		}
		if !geneRecords {
			gene.ComputeBounds()
		}
	}

	set := NewSet()
	for chrom, ids := range geneOrder {
		for _, id := range ids {
			set.Add(chrom, genes[id])
		}
	}
	set.Finalize()

	return set, nil
}

func (l *GTFLoader) ensureGene(genes map[string]*Gene, order map[string][]string, chrom, id string, strand Strand) *Gene {
	if g, ok := genes[id]; ok {
		return g
	}
	g := NewGene(id, strand)
	genes[id] = g
	order[chrom] = append(order[chrom], id)
	return g
}

func (l *GTFLoader) ensureTranscript(transcripts map[string]*Transcript, gene *Gene, id string) *Transcript {
	if t, ok := transcripts[id]; ok {
		return t
	}
	t := NewTranscript(id)
	transcripts[id] = t
	gene.AddTranscript(t)
	return t
}

// extractAttribute pulls a quoted value out of the GTF attribute column.
// Format: key "value"; key "value"; ...
func extractAttribute(attributes, key string) (string, bool) {
	pattern := key + " "
	idx := strings.Index(attributes, pattern)
	if idx == -1 {
		return "", false
	}

	rest := attributes[idx+len(pattern):]
	first := strings.Index(rest, "\"")
	if first == -1 {
		return "", false
	}
	rest = rest[first+1:]
	second := strings.Index(rest, "\"")
	if second == -1 {
		return "", false
	}
	return rest[:second], true
}
