// Package config loads the settings shared by every sample: credentials, region, target resource
// identifiers and the locations of input data and results. Values come from the process
// environment first, then from an optional .env file, then from defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"regexp"

	"github.com/spf13/viper"
)

// Environment variable names.
const (
	EnvAWSAccessKeyID       = "AWS_ACCESS_KEY_ID"
	EnvAWSSecretAccessKey   = "AWS_SECRET_ACCESS_KEY"
	EnvAWSRegion            = "AWS_DEFAULT_REGION"
	EnvGoogleAPIKey         = "GOOGLE_CLOUD_PROJECT_API_KEY"
	EnvGoogleCredentials    = "GOOGLE_APPLICATION_CREDENTIALS"
	EnvSpreadsheetID        = "SPREADSHEET_ID"
	EnvCalendarID           = "GOOGLE_CALENDAR_ID"
	EnvSenderEmail          = "SENDER_EMAIL"
	EnvRecipientEmail       = "RECIPIENT_EMAIL"
	EnvGeminiModel          = "GEMINI_MODEL"
	EnvResultsDir           = "RESULTS_DIR"
	EnvDataDir              = "DATA_DIR"
	EnvResultSink           = "RESULT_SINK"
	EnvLogLevel             = "LOG_LEVEL"
	DefaultRegion           = "ap-northeast-1"
	DefaultCredentialsFile  = "credentials.json"
	DefaultGeminiModel      = "gemini-1.5-pro"
	DefaultResultsDir       = "results"
	DefaultDataDir          = "data"
	DefaultSenderAddress    = "your-verified-sender-email@example.com"
	DefaultRecipientAddress = "recipient-email@example.com"
)

var regionPattern = regexp.MustCompile(`^[a-z]{2}(-[a-z]+)+-\d+$`)

// Config holds every value a sample may need. Fields are plain strings; whether a value is
// mandatory depends on the integration and is decided by the creds package.
type Config struct {
	AWSAccessKeyID     string // AWS access key id
	AWSSecretAccessKey string // AWS secret access key
	AWSRegion          string // AWS region, defaults to ap-northeast-1

	GoogleAPIKey          string // API key for Vision, Translate, TTS, Maps and Gemini
	GoogleCredentialsFile string // Service account key file for Sheets and Calendar
	SpreadsheetID         string // Target spreadsheet
	CalendarID            string // Target calendar

	SenderEmail    string // Verified SES sender
	RecipientEmail string // SES recipient

	GeminiModel string // Generative model used for receipt summaries
	ResultsDir  string // Root directory of file artifacts
	DataDir     string // Root directory of sample inputs
	SinkURI     string // Optional sink (s3://, dynamodb://, postgres://, console://, file://)
	LogLevel    string // debug|info|warn|error
}

// Load reads the configuration. envFile may be empty; a missing envFile is not an error.
func Load(envFile string) (*Config, error) {
	v := viper.New()
	if err := readInto(v, envFile); err != nil {
		return nil, err
	}
	return FromViper(v), nil
}

func readInto(v *viper.Viper, envFile string) error {
	v.SetDefault(EnvAWSRegion, DefaultRegion)
	v.SetDefault(EnvGoogleCredentials, DefaultCredentialsFile)
	v.SetDefault(EnvGeminiModel, DefaultGeminiModel)
	v.SetDefault(EnvResultsDir, DefaultResultsDir)
	v.SetDefault(EnvDataDir, DefaultDataDir)
	v.SetDefault(EnvLogLevel, "info")

	v.AutomaticEnv()

	if envFile == "" {
		return nil
	}
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", envFile, err)
	}
	return nil
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		AWSAccessKeyID:        v.GetString(EnvAWSAccessKeyID),
		AWSSecretAccessKey:    v.GetString(EnvAWSSecretAccessKey),
		AWSRegion:             v.GetString(EnvAWSRegion),
		GoogleAPIKey:          v.GetString(EnvGoogleAPIKey),
		GoogleCredentialsFile: v.GetString(EnvGoogleCredentials),
		SpreadsheetID:         v.GetString(EnvSpreadsheetID),
		CalendarID:            v.GetString(EnvCalendarID),
		SenderEmail:           v.GetString(EnvSenderEmail),
		RecipientEmail:        v.GetString(EnvRecipientEmail),
		GeminiModel:           v.GetString(EnvGeminiModel),
		ResultsDir:            v.GetString(EnvResultsDir),
		DataDir:               v.GetString(EnvDataDir),
		SinkURI:               v.GetString(EnvResultSink),
		LogLevel:              v.GetString(EnvLogLevel),
	}
}

// Validate checks the structural values every sample relies on. Credentials are not checked
// here; they are resolved per integration.
func (c *Config) Validate() error {
	if c.AWSRegion == "" {
		return fmt.Errorf("region is required")
	}
	if !regionPattern.MatchString(c.AWSRegion) {
		return fmt.Errorf("region %q is not a valid AWS region name", c.AWSRegion)
	}

	if c.ResultsDir == "" {
		return fmt.Errorf("results directory is required")
	}

	if c.DataDir == "" {
		return fmt.Errorf("data directory is required")
	}

	if c.GeminiModel == "" {
		return fmt.Errorf("gemini model is required")
	}

	if c.SinkURI != "" {
		u, err := url.Parse(c.SinkURI)
		if err != nil {
			return fmt.Errorf("invalid result sink URI: %w", err)
		}
		switch u.Scheme {
		case "file", "console", "s3", "dynamodb", "postgres", "postgresql":
		default:
			return fmt.Errorf("result sink URI scheme %q is not supported", u.Scheme)
		}
	}

	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level must be one of debug, info, warn, error")
	}

	return nil
}
