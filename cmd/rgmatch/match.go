package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/rgmatch/internal/bed"
	"github.com/inodb/rgmatch/internal/genome"
	"github.com/inodb/rgmatch/internal/match"
	"github.com/inodb/rgmatch/internal/output"
)

type matchOptions struct {
	gtfPath       string
	bedPath       string
	outputPath    string
	report        string
	distanceKB    int64
	tss           float64
	tts           float64
	promoter      float64
	percArea      float64
	percRegion    float64
	rules         string
	geneTag       string
	transcriptTag string
	threads       int
	batchSize     int
}

func newMatchCmd() *cobra.Command {
	opts := &matchOptions{}

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match regions in a BED file against gene annotations",
		Example: `  # Default exon-level report
  rgmatch match -g annotation.gtf -b regions.bed -o output.tsv

  # Gene-level report with a wider promoter zone
  rgmatch match -g annotation.gtf -b regions.bed -o output.tsv -r gene -p 2000

  # Sequential mode (single worker)
  rgmatch match -g annotation.gtf -b regions.bed -o output.tsv -j 1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()
			return runMatch(opts, logger)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.gtfPath, "gtf", "g", "", "GTF annotation file or converted DuckDB database (required)")
	f.StringVarP(&opts.bedPath, "bed", "b", "", "Region BED file (required)")
	f.StringVarP(&opts.outputPath, "output", "o", "", "Output file (required)")
	f.StringVarP(&opts.report, "report", "r", "exon", "Report level: exon, transcript or gene")
	f.Int64VarP(&opts.distanceKB, "distance", "q", 10, "Maximum distance in kb to report associations")
	f.Float64VarP(&opts.tss, "tss", "t", 200, "TSS zone width in bp")
	f.Float64VarP(&opts.tts, "tts", "s", 0, "TTS zone width in bp (0 disables TTS splitting)")
	f.Float64VarP(&opts.promoter, "promoter", "p", 1300, "Promoter zone width in bp")
	f.Float64VarP(&opts.percArea, "perc-area", "v", 90, "Area overlap threshold in percent (0-100)")
	f.Float64VarP(&opts.percRegion, "perc-region", "w", 50, "Region overlap threshold in percent (0-100)")
	f.StringVarP(&opts.rules, "rules", "R",
		"TSS,1st_EXON,PROMOTER,TTS,INTRON,GENE_BODY,UPSTREAM,DOWNSTREAM",
		"Comma-separated area priority for tie-breaking")
	f.StringVarP(&opts.geneTag, "gene", "G", "gene_id", "GTF attribute tag for gene IDs")
	f.StringVarP(&opts.transcriptTag, "transcript", "T", "transcript_id", "GTF attribute tag for transcript IDs")
	f.IntVarP(&opts.threads, "threads", "j", 8, "Worker threads (0 = all CPUs, 1 = sequential)")
	f.IntVar(&opts.batchSize, "batch-size", 5000, "Regions per work chunk")

	cmd.MarkFlagRequired("gtf")
	cmd.MarkFlagRequired("bed")
	cmd.MarkFlagRequired("output")

	viper.BindPFlag("match.threads", f.Lookup("threads"))
	viper.BindPFlag("match.batch-size", f.Lookup("batch-size"))

	return cmd
}

// buildConfig turns CLI options into a validated matching configuration.
// Any configuration error is fatal before matching begins.
func buildConfig(opts *matchOptions) (*match.Config, error) {
	cfg := match.DefaultConfig()

	level, err := match.ParseReportLevel(opts.report)
	if err != nil {
		return nil, err
	}
	cfg.Level = level

	cfg.SetDistanceKB(opts.distanceKB)
	cfg.TSS = opts.tss
	cfg.TTS = opts.tts
	cfg.Promoter = opts.promoter
	cfg.PercArea = opts.percArea
	cfg.PercRegion = opts.percRegion

	if err := cfg.ParseRules(opts.rules); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadGenes loads the annotation from a GTF file or, when the path points
// at a converted database, from DuckDB.
func loadGenes(opts *matchOptions, logger *zap.Logger) (*genome.Set, error) {
	if genome.IsDuckDB(opts.gtfPath) {
		logger.Info("loading annotation from DuckDB", zap.String("path", opts.gtfPath))
		store, err := genome.OpenDuckDB(opts.gtfPath)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.LoadAll()
	}

	logger.Info("parsing GTF file", zap.String("path", opts.gtfPath))
	return genome.NewGTFLoader(opts.gtfPath, opts.geneTag, opts.transcriptTag).Load()
}

func runMatch(opts *matchOptions, logger *zap.Logger) error {
	cfg, err := buildConfig(opts)
	if err != nil {
		return err
	}

	if _, err := os.Stat(opts.gtfPath); err != nil {
		return fmt.Errorf("GTF file not found: %s", opts.gtfPath)
	}
	if _, err := os.Stat(opts.bedPath); err != nil {
		return fmt.Errorf("BED file not found: %s", opts.bedPath)
	}

	genes, err := loadGenes(opts, logger)
	if err != nil {
		return fmt.Errorf("load annotation: %w", err)
	}
	logger.Info("annotation loaded",
		zap.Int("genes", genes.GeneCount()),
		zap.Int("chromosomes", len(genes.Chromosomes())))

	reader, err := bed.Open(opts.bedPath)
	if err != nil {
		return err
	}
	defer reader.Close()

	out, err := os.Create(opts.outputPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer out.Close()

	threads := viper.GetInt("match.threads")
	batchSize := viper.GetInt("match.batch-size")

	m := match.NewMatcher(genes, cfg)
	m.SetLogger(logger)

	writer := output.NewTabWriter(out)
	if err := m.Run(reader, writer, threads, batchSize); err != nil {
		return err
	}

	logger.Info("output written", zap.String("path", opts.outputPath))
	return nil
}
