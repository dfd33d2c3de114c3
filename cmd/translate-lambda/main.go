// Package main is the Lambda entry point of the translation sample. It translates the texts of
// each event with Amazon Translate using the credentials of the execution role.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/gurre/cloud-api-samples/aws"
	"github.com/gurre/cloud-api-samples/config"
	"github.com/gurre/cloud-api-samples/translation"
)

func main() {
	h, err := setup(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	lambda.Start(h.Handle)
}

// setup builds the handler once per execution environment.
func setup(ctx context.Context) (*Handler, error) {
	cfg, err := config.Load("")
	if err != nil {
		return nil, err
	}

	zcfg := zap.NewProductionConfig()
	if err := zcfg.Level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	log, err := zcfg.Build()
	if err != nil {
		return nil, err
	}

	// AWS_REGION is set by the Lambda runtime; the default chain picks it up.
	f, err := aws.NewDefaultFactory(ctx, "")
	if err != nil {
		return nil, err
	}

	warmer := NewWarmer(f.Lambda(), os.Getenv("AWS_LAMBDA_FUNCTION_NAME"), log)
	return NewHandler(translation.NewAWSTranslator(f.Translate()), warmer, log), nil
}
