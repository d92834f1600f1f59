package cmd

import (
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"

	"github.com/oiluj0002/raw-data-loader/constants"
)

var (
	// Default values may be set at compile time.
	version          = "0.1.0"
	buildDate        = "1970-01-01T00:00+0000"
	stackDumpOnPanic bool
)

var rootCmd = &cobra.Command{
	Use:   "rdl",
	Short: "Incremental extract-load of relational tables into a Parquet data lake",
	Long: `rdl streams new rows from a relational table into date-partitioned
Parquet files in S3, tracking the extraction cursor and the table's
reference schema between runs. Configure it entirely through RDL_*
environment variables so it runs the same under a scheduler, a container
or AWS Lambda.`,
}

func init() {
	cobra.EnableCommandSorting = false
	rootCmd.PersistentFlags().BoolVar(&stackDumpOnPanic, "print-stack", false, "Print a stack dump if there is a panic")
	_ = rootCmd.PersistentFlags().MarkHidden("print-stack")
}

// Execute runs the CLI. When the lambda mode variable is set the run action
// executes directly from environment variables with no subcommand, wrapped
// in the Lambda handler loop when the value is "lambda".
func Execute() {
	mode := os.Getenv(constants.EnvVarLambdaMode)
	if mode != "" { // if we are running based on environment variables only...
		if strings.ToLower(mode) == "lambda" {
			lambda.Start(runExtractLoad)
		} else {
			if err := runExtractLoad(); err != nil {
				os.Exit(1)
			}
		}
		return
	}
	if err := rootCmd.Execute(); err != nil {
		// Execute() prints the error.
		os.Exit(1)
	}
}
