package cmd

import (
	"fmt"

	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/husky-tmr/BIM-Composer-sub001/internal/resolve"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Compose the visible layer stack into one resolved tree",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, ctx, err := loadStage()
		if err != nil {
			return err
		}

		r := resolve.New(ctx)
		roots, warns := r.Resolve()
		printWarnings(warns)

		doc := resolve.BuildDocument(roots)
		fmt.Println(oj.JSON(doc, 2))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
