package match

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/rgmatch/internal/genome"
)

// RegionSource yields regions in file order, a chunk at a time. A nil chunk
// signals end of input.
type RegionSource interface {
	ReadChunk(size int) ([]genome.Region, error)
	MetaColumns() int
}

// ResultWriter receives region/candidate pairs in input order.
type ResultWriter interface {
	WriteHeader(numMeta int) error
	Write(region genome.Region, c Candidate) error
	Flush() error
}

// Matcher associates regions from a source with genes from an annotation
// set and streams results to a writer.
type Matcher struct {
	genes  *genome.Set
	cfg    *Config
	logger *zap.Logger
}

// NewMatcher creates a matcher over a finalized gene set.
func NewMatcher(genes *genome.Set, cfg *Config) *Matcher {
	return &Matcher{
		genes:  genes,
		cfg:    cfg,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for progress and warning messages.
func (m *Matcher) SetLogger(l *zap.Logger) {
	m.logger = l
}

// cursor tracks the last search position so that consecutive regions sorted
// by start reuse a cheap linear advance instead of a binary search. Each
// worker keeps its own cursor.
type cursor struct {
	chrom string
	start int64
	index int
}

// startIndex returns the index of the first gene worth scanning for the
// region. Moving forward on the same chromosome advances the previous
// index past genes that end before the search window; anything else resets
// with a binary search.
func (c *cursor) startIndex(genes []*genome.Gene, region genome.Region, searchStart int64) int {
	var idx int
	if c.chrom == region.Chrom && region.Start >= c.start {
		idx = c.index
		for idx < len(genes) && genes[idx].End < searchStart {
			idx++
		}
	} else {
		idx = genome.SearchStartIndex(genes, searchStart)
	}
	c.chrom = region.Chrom
	c.start = region.Start
	c.index = idx
	return idx
}

// matchOne matches a single region and reduces the candidates to the
// configured report level. Regions on chromosomes absent from the
// annotation produce no output.
func (m *Matcher) matchOne(region genome.Region, cur *cursor) []Candidate {
	genes := m.genes.Genes(region.Chrom)
	if len(genes) == 0 {
		cur.chrom = region.Chrom
		return nil
	}

	lookback := m.genes.MaxGeneLength(region.Chrom) + m.cfg.MaxLookback()
	searchStart := region.Start - lookback
	if searchStart < 0 {
		searchStart = 0
	}

	idx := cur.startIndex(genes, region, searchStart)
	return Reduce(MatchRegion(region, genes, m.cfg, idx), m.cfg)
}

// Run streams regions from src, matches them, and writes results in file
// order. With workers <= 1 everything runs on the calling goroutine;
// otherwise chunks are fanned out to a worker pool.
func (m *Matcher) Run(src RegionSource, w ResultWriter, workers, batchSize int) error {
	if batchSize <= 0 {
		return fmt.Errorf("batch size must be greater than 0")
	}
	if workers <= 1 {
		return m.runSequential(src, w, batchSize)
	}
	return m.runParallel(src, w, workers, batchSize)
}

func (m *Matcher) runSequential(src RegionSource, w ResultWriter, batchSize int) error {
	headerWritten := false
	regionCount := 0
	var cur cursor

	for {
		chunk, err := src.ReadChunk(batchSize)
		if err != nil {
			return fmt.Errorf("read regions: %w", err)
		}
		if chunk == nil {
			break
		}

		if !headerWritten {
			if err := w.WriteHeader(src.MetaColumns()); err != nil {
				return err
			}
			headerWritten = true
		}

		for _, region := range chunk {
			regionCount++
			for _, c := range m.matchOne(region, &cur) {
				if err := w.Write(region, c); err != nil {
					return fmt.Errorf("write result: %w", err)
				}
			}
		}
	}

	if !headerWritten {
		if err := w.WriteHeader(0); err != nil {
			return err
		}
	}

	m.logger.Info("matching done",
		zap.Int("regions", regionCount),
		zap.String("mode", "sequential"))

	return w.Flush()
}
