package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"jfinder/internal/usecase"
)

var (
	queryText string
	queryTopN int
	queryJSON bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Search journals from the command line",
	Long: `Embeds the given text and ranks indexed journals by similarity.

Examples:
  jfinder query -q "deep learning for protein structure prediction"
  jfinder query -q "soil microbiomes" -n 10 --json`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "query text (required)")
	queryCmd.Flags().IntVarP(&queryTopN, "top-n", "n", 0, "number of results")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	queryCmd.MarkFlagRequired("query")
}

func runQuery(cmd *cobra.Command, args []string) error {
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

	searcher := usecase.NewSearcher(enc, idx)
	matches, err := searcher.Search(ctx, queryText, queryTopN)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if queryJSON {
		output, _ := json.MarshalIndent(matches, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(matches) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	fmt.Printf("Found %d results for: %s\n\n", len(matches), queryText)
	for i, m := range matches {
		fmt.Printf("%d. %s (distance %.4f)\n", i+1, m.Name, m.Score)
		if m.Description != "" {
			fmt.Printf("   %s\n", m.Description)
		}
	}
	return nil
}
