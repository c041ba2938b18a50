package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"jfinder/internal/usecase"
)

var (
	ingestFieldsFile   string
	ingestConceptLimit int
	ingestPerField     int
	ingestBatchSize    int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Populate the index with journals from OpenAlex",
	Long: `Fetches journals from OpenAlex and upserts them into the vector index.

With --fields, each line of the file is a research field name; the matching
OpenAlex concept is resolved and its most-published journals are indexed.
Without --fields, the top root-level concepts are crawled instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		enc, err := buildEncoder(cfg)
		if err != nil {
			return err
		}
		idx, closeIdx, err := buildIndex(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeIdx()

		batchSize := cfg.Ingest.BatchSize
		if ingestBatchSize > 0 {
			batchSize = ingestBatchSize
		}
		perField := cfg.Ingest.JournalsPerField
		if ingestPerField > 0 {
			perField = ingestPerField
		}

		ing := usecase.NewIngestor(buildCatalog(cfg), enc, idx, batchSize, perField)

		var bar *progressbar.ProgressBar
		var startTime time.Time
		ing.Progress = func(done, total int, field string) {
			if bar == nil {
				startTime = time.Now()
				bar = newProgressBar(total, "Ingesting")
			}
			bar.Set(done)
			if done > 0 && done < total {
				elapsed := time.Since(startTime)
				rate := float64(done) / elapsed.Seconds()
				if rate > 0 {
					eta := time.Duration(float64(total-done)/rate) * time.Second
					bar.Describe(fmt.Sprintf("[cyan]Ingesting[reset] %s ETA: %s", field, eta.Round(time.Second)))
				}
			}
		}

		fieldsFile := cfg.Ingest.FieldsFile
		if ingestFieldsFile != "" {
			fieldsFile = ingestFieldsFile
		}

		var report usecase.Report
		if fieldsFile != "" {
			fields, err := readFields(fieldsFile)
			if err != nil {
				return err
			}
			report, err = ing.IngestFields(ctx, fields)
			if err != nil {
				return err
			}
		} else {
			limit := cfg.Ingest.ConceptLimit
			if ingestConceptLimit > 0 {
				limit = ingestConceptLimit
			}
			report, err = ing.IngestConcepts(ctx, limit)
			if err != nil {
				return err
			}
		}

		fmt.Printf("\nIngested %d journals across %d fields (%d skipped)\n",
			report.Upserted, report.Fields, report.Skipped)
		return nil
	},
}

// readFields reads one field name per line, ignoring blanks and # comments.
func readFields(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading fields file: %w", err)
	}
	defer f.Close()

	var fields []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields = append(fields, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading fields file: %w", err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("fields file %s contains no field names", path)
	}
	return fields, nil
}

func newProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]"+description+"[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)
}

func init() {
	ingestCmd.Flags().StringVar(&ingestFieldsFile, "fields", "", "file with one research field per line")
	ingestCmd.Flags().IntVar(&ingestConceptLimit, "concept-limit", 0, "number of root concepts to crawl (overrides config)")
	ingestCmd.Flags().IntVar(&ingestPerField, "per-field", 0, "journals to fetch per field (overrides config)")
	ingestCmd.Flags().IntVar(&ingestBatchSize, "batch-size", 0, "embedding batch size (overrides config)")
	rootCmd.AddCommand(ingestCmd)
}
