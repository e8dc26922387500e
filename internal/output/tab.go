// Package output provides result formatters.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/inodb/rgmatch/internal/bed"
	"github.com/inodb/rgmatch/internal/genome"
	"github.com/inodb/rgmatch/internal/match"
)

// TabWriter writes region-gene associations in tab-delimited format.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"Region",
			"Midpoint",
			"Gene",
			"Transcript",
			"Exon/Intron",
			"Area",
			"Distance",
			"TSSDistance",
			"PercRegion",
			"PercArea",
		},
	}
}

// WriteHeader writes the header line, extending the fixed columns with the
// standard BED names for the metadata columns carried by the input.
func (tw *TabWriter) WriteHeader(numMeta int) error {
	columns := tw.columns
	if numMeta > 0 {
		columns = append(append([]string{}, columns...), bed.MetaHeaders(numMeta)...)
	}
	_, err := tw.w.WriteString(strings.Join(columns, "\t") + "\n")
	return err
}

// Write writes a single association. Percentages use two decimal places,
// with -1.00 marking fields that do not apply.
func (tw *TabWriter) Write(region genome.Region, c match.Candidate) error {
	line := fmt.Sprintf("%s\t%d\t%s\t%s\t%s\t%s\t%d\t%d\t%.2f\t%.2f",
		region.ID(),
		region.Midpoint(),
		c.Gene,
		c.Transcript,
		c.Label,
		c.Area,
		c.Distance,
		c.TSSDistance,
		c.PctRegion,
		c.PctArea,
	)

	if len(region.Metadata) > 0 {
		meta := strings.TrimRight(strings.Join(region.Metadata, "\t"), " \t\r\n")
		line += "\t" + meta
	}

	_, err := tw.w.WriteString(line + "\n")
	return err
}

// Flush flushes buffered output.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}
