package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/husky-tmr/BIM-Composer-sub001/internal/manifest"
	"github.com/husky-tmr/BIM-Composer-sub001/internal/resolve"
	"github.com/husky-tmr/BIM-Composer-sub001/internal/scene"
	"github.com/husky-tmr/BIM-Composer-sub001/internal/store"
)

var (
	manifestPath string
	identity     string
	privileged   bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&manifestPath, "manifest", "m", "stage.hcl", "Path to the stage manifest")
	rootCmd.PersistentFlags().StringVarP(&identity, "identity", "i", "", "Acting identity")
	rootCmd.PersistentFlags().BoolVar(&privileged, "privileged", false, "Act with a privileged role")
}

var rootCmd = &cobra.Command{
	Use:   "bimc",
	Short: "bimc composes layered BIM scene documents",
	Long: `bimc composes hierarchical scene-description documents from an ordered
stack of overlapping layers, edits them surgically without disturbing
unrelated text, and reports conflicts before a change lands.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// loadStage builds the store and resolver context declared by the manifest.
// Layer paths in the manifest are relative to the manifest's directory.
func loadStage() (*store.Store, resolve.Context, error) {
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, resolve.Context{}, err
	}

	st := store.New(osfs.New(filepath.Dir(manifestPath)))
	st.Changelog = m.Changelog
	for _, l := range m.Layers {
		if err := st.LoadLayer(l); err != nil {
			return nil, resolve.Context{}, err
		}
	}
	if err := st.EnsureChangelog(); err != nil {
		return nil, resolve.Context{}, err
	}

	ctx := resolve.Context{
		Identity:   identity,
		Privileged: privileged,
		Stage:      st.Stage,
		Changelog:  st.Changelog,
	}
	return st, ctx, nil
}

func printWarnings(warns []scene.Warning) {
	for _, w := range warns {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
}
