package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"jfinder/internal/usecase"
)

var loadCmd = &cobra.Command{
	Use:   "load <glob>",
	Short: "Load journal metadata files into the index",
	Long: `Reads journal metadata JSON files matching a glob pattern and upserts
their entries into the vector index. Patterns support ** for recursive
matching, e.g. "runs/**/journals_metadata.json".`,
	Args: cobra.ExactArgs(1),
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

		ing := usecase.NewIngestor(nil, enc, idx, cfg.Ingest.BatchSize, cfg.Ingest.JournalsPerField)

		n, err := ing.LoadFiles(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Loaded %d journals\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
}
