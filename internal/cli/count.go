package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Report the number of indexed journals",
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, closeIdx, err := buildIndex(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeIdx()

		n, err := idx.Count(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("%d journals indexed\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(countCmd)
}
