package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/husky-tmr/BIM-Composer-sub001/internal/compose"
	"github.com/husky-tmr/BIM-Composer-sub001/internal/parse"
)

var composeStatus string

var composeCmd = &cobra.Command{
	Use:   "compose [file]",
	Short: "Re-emit a scene document in canonical form",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}
		roots, warns := parse.Parse(string(b))
		printWarnings(warns)
		fmt.Print(compose.Compose(roots, composeStatus))
		return nil
	},
}

func init() {
	composeCmd.Flags().StringVar(&composeStatus, "status", "", "Fallback status for nodes carrying none")
	rootCmd.AddCommand(composeCmd)
}
