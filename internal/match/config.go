// Package match associates genomic regions with the gene features they
// overlap or lie near.
package match

import (
	"fmt"
	"strings"

	"github.com/inodb/rgmatch/internal/genome"
)

// ReportLevel selects the granularity at which candidates are deduplicated
// before output.
type ReportLevel int

const (
	ReportExon ReportLevel = iota
	ReportTranscript
	ReportGene
)

// ParseReportLevel parses "exon", "transcript" or "gene" (case-insensitive).
func ParseReportLevel(s string) (ReportLevel, error) {
	switch strings.ToLower(s) {
	case "exon":
		return ReportExon, nil
	case "transcript":
		return ReportTranscript, nil
	case "gene":
		return ReportGene, nil
	}
	return 0, fmt.Errorf("invalid report level %q: expected exon, transcript or gene", s)
}

// String returns the lower-case name of the report level.
func (l ReportLevel) String() string {
	switch l {
	case ReportExon:
		return "exon"
	case ReportTranscript:
		return "transcript"
	case ReportGene:
		return "gene"
	}
	return fmt.Sprintf("ReportLevel(%d)", int(l))
}

// Config controls classification and tie-breaking.
type Config struct {
	// Rules is the tie-break priority: a permutation of all eight areas.
	Rules []genome.Area
	// PercArea is the area-overlap threshold in percent.
	PercArea float64
	// PercRegion is the region-overlap threshold in percent.
	PercRegion float64
	// TSS is the TSS zone width in bp.
	TSS float64
	// TTS is the TTS zone width in bp. Zero disables TTS zone splitting.
	TTS float64
	// Promoter is the promoter zone width in bp.
	Promoter float64
	// Distance is the maximum distance in bp at which proximity
	// associations are still reported.
	Distance int64
	// Level is the report granularity.
	Level ReportLevel
}

// DefaultConfig returns the default matching configuration.
func DefaultConfig() *Config {
	return &Config{
		Rules: []genome.Area{
			genome.AreaTSS,
			genome.AreaFirstExon,
			genome.AreaPromoter,
			genome.AreaTTS,
			genome.AreaIntron,
			genome.AreaGeneBody,
			genome.AreaUpstream,
			genome.AreaDownstream,
		},
		PercArea:   90.0,
		PercRegion: 50.0,
		TSS:        200.0,
		TTS:        0.0,
		Promoter:   1300.0,
		Distance:   10000, // 10 kb
		Level:      ReportExon,
	}
}

// ParseRules parses a comma-separated priority list. The list must name
// each of the eight canonical area tags exactly once, case-sensitively.
func (c *Config) ParseRules(s string) error {
	parts := strings.Split(s, ",")
	if len(parts) != len(genome.AllAreas) {
		return fmt.Errorf("rules must list all %d area tags, got %d", len(genome.AllAreas), len(parts))
	}

	seen := make(map[genome.Area]bool, len(parts))
	rules := make([]genome.Area, 0, len(parts))
	for _, tag := range parts {
		area, err := genome.ParseArea(tag)
		if err != nil {
			return fmt.Errorf("rules: %w", err)
		}
		if seen[area] {
			return fmt.Errorf("rules: duplicate area tag %q", tag)
		}
		seen[area] = true
		rules = append(rules, area)
	}

	c.Rules = rules
	return nil
}

// SetDistanceKB sets the maximum reporting distance from a kb value.
func (c *Config) SetDistanceKB(kb int64) {
	if kb >= 0 {
		c.Distance = kb * 1000
	}
}

// Validate checks ranges. Configuration errors are fatal before matching
// begins.
func (c *Config) Validate() error {
	if len(c.Rules) != len(genome.AllAreas) {
		return fmt.Errorf("rules must contain all %d areas", len(genome.AllAreas))
	}
	seen := make(map[genome.Area]bool, len(c.Rules))
	for _, a := range c.Rules {
		if seen[a] {
			return fmt.Errorf("rules contain duplicate area %s", a)
		}
		seen[a] = true
	}
	if c.PercArea < 0 || c.PercArea > 100 {
		return fmt.Errorf("area percentage %.2f out of range [0,100]", c.PercArea)
	}
	if c.PercRegion < 0 || c.PercRegion > 100 {
		return fmt.Errorf("region percentage %.2f out of range [0,100]", c.PercRegion)
	}
	if c.TSS < 0 {
		return fmt.Errorf("TSS distance cannot be lower than 0 bp")
	}
	if c.TTS < 0 {
		return fmt.Errorf("TTS distance cannot be lower than 0 bp")
	}
	if c.Promoter < 0 {
		return fmt.Errorf("promoter distance cannot be lower than 0 bp")
	}
	if c.Distance < 0 {
		return fmt.Errorf("maximum distance cannot be lower than 0 bp")
	}
	return nil
}

// MaxLookback returns the widest distance that can still associate a region
// with an earlier gene, used to size the gene-array search window.
func (c *Config) MaxLookback() int64 {
	maxZone := c.TSS
	if c.TTS > maxZone {
		maxZone = c.TTS
	}
	if c.Promoter > maxZone {
		maxZone = c.Promoter
	}
	if int64(maxZone) > c.Distance {
		return int64(maxZone)
	}
	return c.Distance
}
