package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/rgmatch/internal/genome"
)

func newConvertCmd() *cobra.Command {
	var (
		inputPath     string
		outputPath    string
		geneTag       string
		transcriptTag string
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a GTF annotation to a DuckDB database",
		Long: `Convert parses a GTF file once and stores the gene hierarchy in a
DuckDB database. Subsequent match runs can load the database directly,
skipping the GTF parse.`,
		Example: `  rgmatch convert -i annotation.gtf -o annotation.duckdb
  rgmatch match -g annotation.duckdb -b regions.bed -o output.tsv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()
			return runConvert(inputPath, outputPath, geneTag, transcriptTag, logger)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&inputPath, "input", "i", "", "Input GTF file (required)")
	f.StringVarP(&outputPath, "output", "o", "", "Output DuckDB file path (required)")
	f.StringVarP(&geneTag, "gene", "G", "gene_id", "GTF attribute tag for gene IDs")
	f.StringVarP(&transcriptTag, "transcript", "T", "transcript_id", "GTF attribute tag for transcript IDs")
	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("output")

	return cmd
}

func runConvert(inputPath, outputPath, geneTag, transcriptTag string, logger *zap.Logger) error {
	if ext := filepath.Ext(outputPath); ext != ".duckdb" && ext != ".db" {
		outputPath += ".duckdb"
	}

	// Rebuild from scratch rather than appending to stale data.
	if _, err := os.Stat(outputPath); err == nil {
		if err := os.Remove(outputPath); err != nil {
			return fmt.Errorf("remove existing file: %w", err)
		}
	}

	logger.Info("parsing GTF file", zap.String("path", inputPath))
	set, err := genome.NewGTFLoader(inputPath, geneTag, transcriptTag).Load()
	if err != nil {
		return fmt.Errorf("load GTF: %w", err)
	}
	logger.Info("annotation loaded",
		zap.Int("genes", set.GeneCount()),
		zap.Int("chromosomes", len(set.Chromosomes())))

	if set.GeneCount() == 0 {
		logger.Warn("no genes loaded, nothing to convert")
		return nil
	}

	store, err := genome.OpenDuckDB(outputPath)
	if err != nil {
		return fmt.Errorf("create DuckDB: %w", err)
	}
	defer store.Close()

	if err := store.CreateSchema(); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if err := store.InsertSet(set); err != nil {
		return fmt.Errorf("write genes: %w", err)
	}

	count, err := store.GeneCount()
	if err != nil {
		return fmt.Errorf("verify count: %w", err)
	}

	logger.Info("conversion complete",
		zap.Int("genes", count),
		zap.String("path", outputPath))
	return nil
}
