// Package bed reads genomic regions from BED files in fixed-size chunks.
package bed

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/inodb/rgmatch/internal/genome"
)

// maxMetaColumns caps how many extra BED columns are kept as metadata
// (columns 4-12 of the standard BED format).
const maxMetaColumns = 9

// Reader streams regions from a BED file chunk by chunk, preserving file
// order. It supports plain and gzip-compressed files.
type Reader struct {
	scanner     *bufio.Scanner
	closers     []io.Closer
	metaColumns int
}

// Open creates a Reader for a BED file path (".gz" suffix enables gzip).
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open BED file: %w", err)
	}

	r := &Reader{closers: []io.Closer{f}}

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		r.closers = append(r.closers, gz)
		reader = gz
	}

	scanner := bufio.NewScanner(reader)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)
	r.scanner = scanner

	return r, nil
}

// New creates a Reader over arbitrary BED content, mainly for tests.
func New(reader io.Reader) *Reader {
	return &Reader{scanner: bufio.NewScanner(reader)}
}

// Close closes the underlying file handles.
func (r *Reader) Close() error {
	var firstErr error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// MetaColumns returns the largest metadata column count observed so far.
func (r *Reader) MetaColumns() int {
	return r.metaColumns
}

// ReadChunk reads up to size regions in file order. It returns nil at EOF.
// Blank lines and lines whose coordinates do not parse (headers) are
// skipped.
func (r *Reader) ReadChunk(size int) ([]genome.Region, error) {
	regions := make([]genome.Region, 0, size)

	for len(regions) < size && r.scanner.Scan() {
		line := strings.TrimRight(r.scanner.Text(), "\r\n")
		if line == "" {
			continue
		}
		if region, ok := r.parseLine(line); ok {
			regions = append(regions, region)
		}
	}

	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("read BED line: %w", err)
	}

	if len(regions) == 0 {
		return nil, nil
	}
	return regions, nil
}

// parseLine parses one BED line. Lines with fewer than three columns or
// unparsable coordinates are dropped.
func (r *Reader) parseLine(line string) (genome.Region, bool) {
	fields := strings.Split(line, "\t")
	if len(fields) < 3 {
		return genome.Region{}, false
	}

	start, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return genome.Region{}, false
	}
	end, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return genome.Region{}, false
	}

	var metadata []string
	for _, f := range fields[3:] {
		if len(metadata) == maxMetaColumns {
			break
		}
		metadata = append(metadata, f)
	}

	if len(metadata) > r.metaColumns {
		r.metaColumns = len(metadata)
	}

	return genome.Region{
		Chrom:    fields[0],
		Start:    start,
		End:      end,
		Metadata: metadata,
	}, true
}

// MetaHeaders returns the standard BED column names for the first n
// metadata columns.
func MetaHeaders(n int) []string {
	all := []string{
		"name",
		"score",
		"strand",
		"thickStart",
		"thickEnd",
		"itemRgb",
		"blockCount",
		"blockSizes",
		"blockStarts",
	}
	if n > len(all) {
		n = len(all)
	}
	return all[:n]
}
