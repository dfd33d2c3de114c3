package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gurre/cloud-api-samples/apierr"
	"github.com/gurre/cloud-api-samples/aws"
	"github.com/gurre/cloud-api-samples/config"
	"github.com/gurre/cloud-api-samples/creds"
	"github.com/gurre/cloud-api-samples/gcp"
	"github.com/gurre/cloud-api-samples/pipeline"
	"github.com/gurre/cloud-api-samples/sink"
)

// App holds the state shared by every subcommand of one invocation.
type App struct {
	envFile    string
	resultsDir string
	sinkURI    string
	reportName string
	verbose    bool

	stdout io.Writer
	stderr io.Writer

	cfg    *config.Config
	log    *zap.Logger
	runner *pipeline.Runner
	sink   sink.Sink

	awsFactory *aws.Factory
}

// NewApp creates an App writing results to stdout and logs to stderr.
func NewApp(stdout, stderr io.Writer) *App {
	return &App{stdout: stdout, stderr: stderr}
}

// setup loads the configuration and builds the logger, sink and runner for cmd.
// Nothing here calls a provider; remote sinks only build their clients.
func (a *App) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return apierr.Configf("config.Load", "%v", err)
	}
	if a.resultsDir != "" {
		cfg.ResultsDir = a.resultsDir
	}
	if a.sinkURI != "" {
		cfg.SinkURI = a.sinkURI
	}
	if a.verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return apierr.Configf("config.Validate", "invalid configuration: %v", err)
	}
	a.cfg = cfg

	a.log, err = newLogger(a.stderr, cfg.LogLevel, a.verbose)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	runID := pipeline.NewRunID()
	s, err := sink.Open(ctx, cfg.SinkURI, sink.Deps{
		ResultsDir: cfg.ResultsDir,
		Console:    a.stdout,
		RunID:      runID,
		S3: func() (aws.S3Client, error) {
			f, err := a.aws(ctx)
			if err != nil {
				return nil, err
			}
			return f.S3(), nil
		},
		DynamoDB: func() (aws.DynamoDBClient, error) {
			f, err := a.aws(ctx)
			if err != nil {
				return nil, err
			}
			return f.DynamoDB(), nil
		},
		Postgres: sink.OpenPostgres,
	})
	if err != nil {
		return err
	}
	a.sink = s

	var progress io.Writer
	if !a.verbose {
		progress = a.stderr
	}
	a.runner = pipeline.NewRunner(pipeline.Options{
		Logger:   a.log,
		Sink:     s,
		Out:      a.stdout,
		Progress: progress,
		Command:  cmd.CommandPath(),
		RunID:    runID,
	})
	a.log.Debug("configuration loaded",
		zap.String("region", cfg.AWSRegion),
		zap.String("resultsDir", cfg.ResultsDir),
		zap.String("dataDir", cfg.DataDir),
		zap.String("sink", cfg.SinkURI),
	)
	return nil
}

// finish writes the run report and releases the sink.
func (a *App) finish(cmd *cobra.Command) error {
	if a.runner == nil {
		return nil
	}
	report := a.runner.Finish(cmd.Context(), a.reportName)
	if c, ok := a.sink.(io.Closer); ok {
		if err := c.Close(); err != nil {
			a.log.Warn("failed to close sink", zap.Error(err))
		}
	}
	_ = a.log.Sync()
	if report.Skipped > 0 {
		fmt.Fprintf(a.stderr, "%d step(s) failed and were skipped, see the log for details\n", report.Skipped)
	}
	return nil
}

// aws returns the AWS client factory, resolving credentials on first use.
func (a *App) aws(ctx context.Context) (*aws.Factory, error) {
	if a.awsFactory != nil {
		return a.awsFactory, nil
	}
	c, err := creds.ResolveAWS(a.cfg)
	if err != nil {
		return nil, err
	}
	f, err := aws.NewFactory(c)
	if err != nil {
		return nil, err
	}
	a.awsFactory = f
	return f, nil
}

// googleKey returns a factory for the API-key based Google services.
func (a *App) googleKey() (*gcp.Factory, error) {
	key, err := creds.ResolveAPIKey(a.cfg)
	if err != nil {
		return nil, err
	}
	return gcp.NewFactory(key, creds.ServiceAccount{}), nil
}

// googleAccount returns a factory for the service-account based Google services.
func (a *App) googleAccount() (*gcp.Factory, error) {
	sa, err := creds.ResolveServiceAccount(a.cfg)
	if err != nil {
		return nil, err
	}
	return gcp.NewFactory("", sa), nil
}

// dataPath resolves name below the data directory.
func (a *App) dataPath(name string) string {
	return filepath.Join(a.cfg.DataDir, name)
}

// resultsPath resolves name below the results directory.
func (a *App) resultsPath(name string) string {
	return filepath.Join(a.cfg.ResultsDir, filepath.FromSlash(name))
}

// client applies the failure policy to a client construction error. Credential problems are
// configuration errors and stop the run.
func (a *App) client(cmd *cobra.Command, op string, err error) error {
	return a.runner.Check(cmd.Context(), op, err)
}
