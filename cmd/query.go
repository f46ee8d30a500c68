package cmd

import (
	"fmt"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/husky-tmr/BIM-Composer-sub001/internal/resolve"
)

var queryCmd = &cobra.Command{
	Use:   "query [jsonpath]",
	Short: "Evaluate a JSONPath expression against the composed document",
	Long: `Resolves the stage, exports it as the composed document and evaluates a
JSONPath expression against it, e.g.:

  bimc query '$.prims[?(@.type == "Mesh")].path'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		x, err := jp.ParseString(args[0])
		if err != nil {
			return fmt.Errorf("invalid jsonpath %q: %w", args[0], err)
		}

		_, ctx, err := loadStage()
		if err != nil {
			return err
		}
		r := resolve.New(ctx)
		roots, warns := r.Resolve()
		printWarnings(warns)

		// Round-trip through JSON so the path evaluates against plain
		// maps/slices rather than struct internals.
		doc, err := oj.ParseString(oj.JSON(resolve.BuildDocument(roots)))
		if err != nil {
			return fmt.Errorf("export document: %w", err)
		}

		for _, result := range x.Get(doc) {
			fmt.Println(oj.JSON(result, 2))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
}
