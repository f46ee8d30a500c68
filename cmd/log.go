package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/husky-tmr/BIM-Composer-sub001/internal/changelog"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the commit log recorded in the changelog layer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := loadStage()
		if err != nil {
			return err
		}
		text, ok := st.Text(st.Changelog)
		if !ok {
			return fmt.Errorf("changelog layer %s not loaded", st.Changelog)
		}

		entries, warns := changelog.Read(text)
		printWarnings(warns)

		for _, e := range entries {
			marker := " "
			if e.Root {
				marker = "*"
			}
			id := e.ID
			if len(id) > 8 {
				id = id[:8]
			}
			fmt.Printf("%s %4d  %-8s  %-19s  %-12s  %s\n",
				marker, e.Sequence, id, e.Timestamp.Format("2006-01-02 15:04:05"), e.Author, e.Message)
			if len(e.AffectedPaths) > 0 {
				fmt.Printf("          paths: %s\n", strings.Join(e.AffectedPaths, ", "))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logCmd)
}
