package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/husky-tmr/BIM-Composer-sub001/internal/conflict"
	"github.com/husky-tmr/BIM-Composer-sub001/internal/resolve"
	"github.com/husky-tmr/BIM-Composer-sub001/internal/scene"
)

var conflictType string

var conflictsCmd = &cobra.Command{
	Use:   "conflicts [node-path] [property] [value]",
	Short: "Check a prospective property change for conflicts",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, ctx, err := loadStage()
		if err != nil {
			return err
		}

		r := resolve.New(ctx)
		roots, warns := r.Resolve()
		printWarnings(warns)

		n := scene.FindByPath(roots, args[0])
		if n == nil {
			return fmt.Errorf("node %s not found in the composed stage", args[0])
		}

		candidate := scene.ParseLiteral(conflictType, args[2])
		records := conflict.Detect(n, args[1], candidate, ctx)
		if len(records) == 0 {
			fmt.Println("no conflicts")
			return nil
		}
		for _, rec := range records {
			fmt.Printf("%-24s %-20s owner=%-14s value=%s\n", rec.Kind, rec.File, rec.Owner, rec.Value)
		}
		return nil
	},
}

func init() {
	conflictsCmd.Flags().StringVar(&conflictType, "type", "string", "Declared type of the candidate value")
	rootCmd.AddCommand(conflictsCmd)
}
