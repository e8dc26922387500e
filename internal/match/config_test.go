package match

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/rgmatch/internal/genome"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 90.0, cfg.PercArea)
	assert.Equal(t, 50.0, cfg.PercRegion)
	assert.Equal(t, 200.0, cfg.TSS)
	assert.Equal(t, 0.0, cfg.TTS)
	assert.Equal(t, 1300.0, cfg.Promoter)
	assert.Equal(t, int64(10000), cfg.Distance)
	assert.Equal(t, ReportExon, cfg.Level)
	assert.Len(t, cfg.Rules, 8)
	require.NoError(t, cfg.Validate())
}

func TestParseRules_ValidPermutation(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.ParseRules("DOWNSTREAM,UPSTREAM,GENE_BODY,INTRON,TTS,PROMOTER,1st_EXON,TSS")
	require.NoError(t, err)
	assert.Equal(t, genome.AreaDownstream, cfg.Rules[0])
	assert.Equal(t, genome.AreaTSS, cfg.Rules[7])
}

func TestParseRules_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		rules string
	}{
		{"too few tags", "TSS,1st_EXON,PROMOTER"},
		{"duplicate tag", "TSS,TSS,PROMOTER,TTS,INTRON,GENE_BODY,UPSTREAM,DOWNSTREAM"},
		{"unknown tag", "TSS,1st_EXON,PROMOTER,TTS,INTRON,GENE_BODY,UPSTREAM,NOWHERE"},
		{"wrong case", "tss,1st_EXON,PROMOTER,TTS,INTRON,GENE_BODY,UPSTREAM,DOWNSTREAM"},
		{"lowercase exon tag", "TSS,1st_exon,PROMOTER,TTS,INTRON,GENE_BODY,UPSTREAM,DOWNSTREAM"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			assert.Error(t, cfg.ParseRules(tt.rules))
		})
	}
}

func TestParseRules_AllCanonicalTags(t *testing.T) {
	// Every canonical tag round-trips through its Area value.
	tags := make([]string, 0, len(genome.AllAreas))
	for _, a := range genome.AllAreas {
		tags = append(tags, a.String())
	}

	cfg := DefaultConfig()
	require.NoError(t, cfg.ParseRules(strings.Join(tags, ",")))
	assert.Equal(t, genome.AllAreas, cfg.Rules)
}

func TestSetDistanceKB(t *testing.T) {
	cfg := DefaultConfig()

	cfg.SetDistanceKB(25)
	assert.Equal(t, int64(25000), cfg.Distance)

	// Negative values are ignored.
	cfg.SetDistanceKB(-1)
	assert.Equal(t, int64(25000), cfg.Distance)
}

func TestValidate_Ranges(t *testing.T) {
	mutations := []struct {
		name   string
		mutate func(*Config)
	}{
		{"perc area above 100", func(c *Config) { c.PercArea = 101 }},
		{"perc area negative", func(c *Config) { c.PercArea = -1 }},
		{"perc region above 100", func(c *Config) { c.PercRegion = 100.5 }},
		{"negative tss", func(c *Config) { c.TSS = -1 }},
		{"negative tts", func(c *Config) { c.TTS = -5 }},
		{"negative promoter", func(c *Config) { c.Promoter = -100 }},
		{"negative distance", func(c *Config) { c.Distance = -1 }},
		{"truncated rules", func(c *Config) { c.Rules = c.Rules[:3] }},
	}

	for _, tt := range mutations {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestMaxLookback(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, int64(10000), cfg.MaxLookback())

	// The widest zone wins when it exceeds the reporting distance.
	cfg.Promoter = 50000
	assert.Equal(t, int64(50000), cfg.MaxLookback())
}

func TestParseReportLevel(t *testing.T) {
	for in, want := range map[string]ReportLevel{
		"exon":       ReportExon,
		"Transcript": ReportTranscript,
		"GENE":       ReportGene,
	} {
		got, err := ParseReportLevel(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseReportLevel("chromosome")
	assert.Error(t, err)
}
