package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot [db-path]",
	Short: "Persist the loaded stage and commit index to a SQLite database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := loadStage()
		if err != nil {
			return err
		}
		if err := st.Snapshot(args[0]); err != nil {
			return err
		}
		fmt.Printf("snapshot written to %s (%d layers)\n", args[0], len(st.Stage.Layers))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
}
