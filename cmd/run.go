package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oiluj0002/raw-data-loader/actions"
	"github.com/oiluj0002/raw-data-loader/config"
	"github.com/oiluj0002/raw-data-loader/helper"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one incremental extract-load for a table",
	Long: `Run one incremental extract-load. All configuration comes from RDL_*
environment variables; flags below override the environment for ad hoc runs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExtractLoad()
	},
}

var runFlags = map[string]*string{
	"source-dsn":    nil,
	"bucket-name":   nil,
	"bucket-region": nil,
	"schema-name":   nil,
	"table-name":    nil,
	"cursor-column": nil,
}

func init() {
	for name := range runFlags {
		runFlags[name] = runCmd.Flags().String(name, "", "Override "+helper.GetEnvName(name))
	}
	rootCmd.AddCommand(runCmd)
}

// runExtractLoad builds Settings from the environment, applies any flag
// overrides and performs the run.
func runExtractLoad() error {
	applyFlagOverrides()
	settings, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	err = actions.RunExtractLoad(&actions.ExtractLoadConfig{
		Settings:         settings,
		StackDumpOnPanic: stackDumpOnPanic,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return err
}

// applyFlagOverrides pushes non-empty flag values into the environment so
// config.FromEnv sees one consistent source.
func applyFlagOverrides() {
	for name, val := range runFlags {
		if val != nil && *val != "" {
			os.Setenv(helper.GetEnvName(name), *val)
		}
	}
}
