package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"jfinder/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "jfinder",
	Short: "Semantic journal finder - index journals and search them by abstract",
	Long: `jfinder embeds free-form text (e.g. a paper abstract) with a scientific
transformer model and ranks academic journals by semantic similarity using
a vector index.

Example usage:
  jfinder ingest --fields fields.txt   # Populate the index from OpenAlex
  jfinder query -q "protein folding"   # Search from the command line
  jfinder serve                        # Run the HTTP API`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Optional .env for local development; absence is not an error.
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "jfinder.yaml", "config file")
}
