package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/husky-tmr/BIM-Composer-sub001/internal/editor"
	"github.com/husky-tmr/BIM-Composer-sub001/internal/scene"
)

var (
	editWrite   bool
	editSetType string
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Surgically edit one layer document",
	Long: `Edit operations splice the document text directly by byte span, so
formatting and comments outside the touched node survive. The result is
printed to stdout unless --write rewrites the file in place.`,
}

var editInsertCmd = &cobra.Command{
	Use:   "insert [file] [parent-path] [node-text]",
	Short: "Insert a node definition under a parent path",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEdit(args[0], func(text string) (string, []scene.Warning, error) {
			out, warns := editor.Insert(text, args[1], args[2])
			return out, warns, nil
		})
	},
}

var editRemoveCmd = &cobra.Command{
	Use:   "remove [file] [node-path]",
	Short: "Remove a node definition by path",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEdit(args[0], func(text string) (string, []scene.Warning, error) {
			out, warns := editor.Remove(text, args[1])
			return out, warns, nil
		})
	},
}

var editSetCmd = &cobra.Command{
	Use:   "set [file] [node-path] [property] [value]",
	Short: "Set a property on a node",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEdit(args[0], func(text string) (string, []scene.Warning, error) {
			out, warns := editor.UpdateProperty(text, args[1], args[2], args[3], editSetType)
			return out, warns, nil
		})
	},
}

var editRenameCmd = &cobra.Command{
	Use:   "rename [file] [node-path] [new-name]",
	Short: "Rename a node and rewrite references to it",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEdit(args[0], func(text string) (string, []scene.Warning, error) {
			res, warns, err := editor.Rename(text, args[1], args[2])
			if err != nil {
				return text, warns, err
			}
			fmt.Fprintf(os.Stderr, "new path: %s\n", res.NewPath)
			return res.Text, warns, nil
		})
	},
}

func runEdit(filePath string, op func(string) (string, []scene.Warning, error)) error {
	b, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read %s: %w", filePath, err)
	}

	out, warns, err := op(string(b))
	if err != nil {
		return err
	}
	printWarnings(warns)

	if editWrite {
		info, statErr := os.Stat(filePath)
		mode := os.FileMode(0o644)
		if statErr == nil {
			mode = info.Mode()
		}
		if err := os.WriteFile(filePath, []byte(out), mode); err != nil {
			return fmt.Errorf("write %s: %w", filePath, err)
		}
		return nil
	}
	fmt.Print(out)
	return nil
}

func init() {
	editCmd.PersistentFlags().BoolVarP(&editWrite, "write", "w", false, "Rewrite the file in place")
	editSetCmd.Flags().StringVar(&editSetType, "type", "string", "Declared type of the property value")
	editCmd.AddCommand(editInsertCmd, editRemoveCmd, editSetCmd, editRenameCmd)
	rootCmd.AddCommand(editCmd)
}
