package genome

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
)

// DuckDBStore reads and writes gene annotations in a DuckDB database,
// avoiding repeated GTF parsing for large annotation files.
type DuckDBStore struct {
	db   *sql.DB
	path string
}

// OpenDuckDB opens or creates a DuckDB database at the given path.
func OpenDuckDB(path string) (*DuckDBStore, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	return &DuckDBStore{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *DuckDBStore) Close() error {
	return s.db.Close()
}

// CreateSchema creates the tables for storing the gene hierarchy.
func (s *DuckDBStore) CreateSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS genes (
			id VARCHAR PRIMARY KEY,
			chrom VARCHAR,
			strand TINYINT,
			start BIGINT,
			end_ BIGINT
		);

		CREATE TABLE IF NOT EXISTS transcripts (
			id VARCHAR PRIMARY KEY,
			gene_id VARCHAR,
			ord INTEGER,
			start BIGINT,
			end_ BIGINT
		);

		CREATE TABLE IF NOT EXISTS exons (
			transcript_id VARCHAR,
			ord INTEGER,
			exon_number VARCHAR,
			start BIGINT,
			end_ BIGINT,
			PRIMARY KEY (transcript_id, ord)
		);

		CREATE INDEX IF NOT EXISTS idx_genes_pos ON genes(chrom, start, end_);
		CREATE INDEX IF NOT EXISTS idx_transcripts_gene ON transcripts(gene_id);
		CREATE INDEX IF NOT EXISTS idx_exons_transcript ON exons(transcript_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// InsertGene inserts a gene with its transcripts and exons.
// Transcript and exon ordering is preserved through the ord column.
func (s *DuckDBStore) InsertGene(chrom string, g *Gene) error {
	_, err := s.db.Exec(`
		INSERT INTO genes (id, chrom, strand, start, end_)
		VALUES (?, ?, ?, ?, ?)
	`, g.ID, chrom, int8(g.Strand), g.Start, g.End)
	if err != nil {
		return fmt.Errorf("insert gene %s: %w", g.ID, err)
	}

	for ti, t := range g.Transcripts {
		_, err := s.db.Exec(`
			INSERT INTO transcripts (id, gene_id, ord, start, end_)
			VALUES (?, ?, ?, ?, ?)
		`, t.ID, g.ID, ti, t.Start, t.End)
		if err != nil {
			return fmt.Errorf("insert transcript %s: %w", t.ID, err)
		}

		for ei, e := range t.Exons {
			_, err := s.db.Exec(`
				INSERT INTO exons (transcript_id, ord, exon_number, start, end_)
				VALUES (?, ?, ?, ?, ?)
			`, t.ID, ei, e.Number, e.Start, e.End)
			if err != nil {
				return fmt.Errorf("insert exon %d of %s: %w", ei, t.ID, err)
			}
		}
	}
	return nil
}

// InsertSet writes every gene of a set into the database.
func (s *DuckDBStore) InsertSet(set *Set) error {
	for _, chrom := range set.Chromosomes() {
		for _, g := range set.Genes(chrom) {
			if err := s.InsertGene(chrom, g); err != nil {
				return err
			}
		}
	}
	return nil
}

// LoadAll reads every gene back into a finalized Set.
func (s *DuckDBStore) LoadAll() (*Set, error) {
	rows, err := s.db.Query(`
		SELECT id, chrom, strand, start, end_
		FROM genes
		ORDER BY chrom, start, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query genes: %w", err)
	}
	defer rows.Close()

	set := NewSet()
	type geneRow struct {
		gene  *Gene
		chrom string
	}
	var loaded []geneRow

	for rows.Next() {
		var id, chrom string
		var strand int8
		var start, end int64
		if err := rows.Scan(&id, &chrom, &strand, &start, &end); err != nil {
			return nil, fmt.Errorf("scan gene: %w", err)
		}
		g := NewGene(id, Strand(strand))
		g.SetBounds(start, end)
		loaded = append(loaded, geneRow{gene: g, chrom: chrom})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, gr := range loaded {
		if err := s.loadTranscripts(gr.gene); err != nil {
			return nil, err
		}
		set.Add(gr.chrom, gr.gene)
	}

	set.Finalize()
	return set, nil
}

// GeneCount returns the total number of genes in the database.
func (s *DuckDBStore) GeneCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM genes").Scan(&count)
	return count, err
}

// loadTranscripts loads the transcripts and exons of a gene.
func (s *DuckDBStore) loadTranscripts(g *Gene) error {
	rows, err := s.db.Query(`
		SELECT id, start, end_
		FROM transcripts
		WHERE gene_id = ?
		ORDER BY ord
	`, g.ID)
	if err != nil {
		return fmt.Errorf("query transcripts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var start, end int64
		if err := rows.Scan(&id, &start, &end); err != nil {
			return fmt.Errorf("scan transcript: %w", err)
		}
		t := NewTranscript(id)
		t.SetBounds(start, end)
		g.AddTranscript(t)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, t := range g.Transcripts {
		if err := s.loadExons(t); err != nil {
			return err
		}
	}
	return nil
}

// loadExons loads the exons of a transcript, in stored order.
func (s *DuckDBStore) loadExons(t *Transcript) error {
	rows, err := s.db.Query(`
		SELECT exon_number, start, end_
		FROM exons
		WHERE transcript_id = ?
		ORDER BY ord
	`, t.ID)
	if err != nil {
		return fmt.Errorf("query exons: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e Exon
		if err := rows.Scan(&e.Number, &e.Start, &e.End); err != nil {
			return fmt.Errorf("scan exon: %w", err)
		}
		t.Exons = append(t.Exons, e)
	}
	return rows.Err()
}

// IsDuckDB reports whether a path looks like a DuckDB database file.
func IsDuckDB(path string) bool {
	return strings.HasSuffix(path, ".duckdb") || strings.HasSuffix(path, ".db")
}
