// Package main implements cloudsamples, one command per cloud API sample. Every sample resolves
// its credentials, builds one request, calls the provider once per input and writes the
// normalized result to the results directory or the configured sink.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gurre/cloud-api-samples/pipeline"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run executes the command line with a context cancelled on interrupt.
func run() error {
	ctx, cancel := pipeline.SignalContext(context.Background())
	defer cancel()

	return newRootCmd(NewApp(os.Stdout, os.Stderr)).ExecuteContext(ctx)
}

// newRootCmd builds the command tree around app.
func newRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "cloudsamples",
		Short: "Run the AWS and Google Cloud API samples",
		Long: `cloudsamples runs small, self-contained samples of AWS and Google Cloud APIs.

Credentials and identifiers come from the environment or a .env file:
  AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY, AWS_DEFAULT_REGION
  GOOGLE_CLOUD_PROJECT_API_KEY, GOOGLE_APPLICATION_CREDENTIALS
  SPREADSHEET_ID, GOOGLE_CALENDAR_ID, SENDER_EMAIL, RECIPIENT_EMAIL

Examples:
  cloudsamples aws rekognition labels data/objects.png
  cloudsamples aws comprehend data/*.txt
  cloudsamples gcp maps directions --optimize
  cloudsamples --sink s3://my-bucket/runs gcp vision ocr data/img1.jpg`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.finish(cmd)
		},
	}
	root.SetOut(app.stdout)
	root.SetErr(app.stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&app.envFile, "env-file", ".env", "Environment file read before the process environment is applied")
	flags.StringVar(&app.resultsDir, "results", "", "Results directory (default RESULTS_DIR or results)")
	flags.StringVar(&app.sinkURI, "sink", "", "Result sink: file://dir, console://[?render=markdown], s3://bucket/prefix, dynamodb://table, postgres://dsn")
	flags.BoolVarP(&app.verbose, "verbose", "v", false, "Enable debug logging")
	flags.StringVar(&app.reportName, "report", "", "Write the run report as this artifact, e.g. report.json")

	root.AddCommand(newAWSCmd(app), newGCPCmd(app))
	return root
}

// groupCmd returns a command that only holds subcommands.
func groupCmd(use, short string, children ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(children...)
	return cmd
}

// printLines writes lines to w.
func printLines(w io.Writer, lines []string) {
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
}
