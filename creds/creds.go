// Package creds resolves the credentials and target identifiers each integration needs.
// Resolution is a pure lookup over config.Config: nothing here touches the network, and every
// failure is a configuration error that names the missing variable.
package creds

import (
	"fmt"
	"net/mail"
	"os"
	"strings"

	"github.com/gurre/cloud-api-samples/apierr"
	"github.com/gurre/cloud-api-samples/config"
)

// AWS holds static AWS credentials and the region they are used in.
type AWS struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
}

// ServiceAccount points to a Google service account key file.
type ServiceAccount struct {
	File string
}

// Mail holds the SES sender and recipient addresses.
type Mail struct {
	Sender    string
	Recipient string
}

func missing(op, env string) error {
	return apierr.Configf(op, "%s is not set", env)
}

// ResolveAWS returns the AWS access key pair and region.
func ResolveAWS(cfg *config.Config) (AWS, error) {
	const op = "creds.ResolveAWS"
	if strings.TrimSpace(cfg.AWSAccessKeyID) == "" {
		return AWS{}, missing(op, config.EnvAWSAccessKeyID)
	}
	if strings.TrimSpace(cfg.AWSSecretAccessKey) == "" {
		return AWS{}, missing(op, config.EnvAWSSecretAccessKey)
	}
	region := cfg.AWSRegion
	if region == "" {
		region = config.DefaultRegion
	}
	return AWS{
		AccessKeyID:     strings.TrimSpace(cfg.AWSAccessKeyID),
		SecretAccessKey: strings.TrimSpace(cfg.AWSSecretAccessKey),
		Region:          region,
	}, nil
}

// ResolveAPIKey returns the Google API key used by the key-based Google services.
func ResolveAPIKey(cfg *config.Config) (string, error) {
	key := strings.TrimSpace(cfg.GoogleAPIKey)
	if key == "" {
		return "", missing("creds.ResolveAPIKey", config.EnvGoogleAPIKey)
	}
	return key, nil
}

// ResolveServiceAccount returns the service account key file after checking that it exists.
func ResolveServiceAccount(cfg *config.Config) (ServiceAccount, error) {
	const op = "creds.ResolveServiceAccount"
	path := strings.TrimSpace(cfg.GoogleCredentialsFile)
	if path == "" {
		return ServiceAccount{}, missing(op, config.EnvGoogleCredentials)
	}
	info, err := os.Stat(path)
	if err != nil {
		return ServiceAccount{}, apierr.Configf(op, "service account key file %s (%s): %v", path, config.EnvGoogleCredentials, err)
	}
	if info.IsDir() {
		return ServiceAccount{}, apierr.Configf(op, "service account key file %s is a directory", path)
	}
	return ServiceAccount{File: path}, nil
}

// ResolveSpreadsheetID returns the target spreadsheet id.
func ResolveSpreadsheetID(cfg *config.Config) (string, error) {
	id := strings.TrimSpace(cfg.SpreadsheetID)
	if id == "" {
		return "", missing("creds.ResolveSpreadsheetID", config.EnvSpreadsheetID)
	}
	return id, nil
}

// ResolveCalendarID returns the target calendar id.
func ResolveCalendarID(cfg *config.Config) (string, error) {
	id := strings.TrimSpace(cfg.CalendarID)
	if id == "" {
		return "", missing("creds.ResolveCalendarID", config.EnvCalendarID)
	}
	return id, nil
}

// ResolveMail returns the sender and recipient. Placeholder addresses left over from the
// sample .env are rejected.
func ResolveMail(cfg *config.Config) (Mail, error) {
	const op = "creds.ResolveMail"
	sender, err := address(op, config.EnvSenderEmail, cfg.SenderEmail, config.DefaultSenderAddress)
	if err != nil {
		return Mail{}, err
	}
	recipient, err := address(op, config.EnvRecipientEmail, cfg.RecipientEmail, config.DefaultRecipientAddress)
	if err != nil {
		return Mail{}, err
	}
	return Mail{Sender: sender, Recipient: recipient}, nil
}

func address(op, env, value, placeholder string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", missing(op, env)
	}
	if value == placeholder {
		return "", apierr.Configf(op, "%s still holds the placeholder %s", env, placeholder)
	}
	parsed, err := mail.ParseAddress(value)
	if err != nil {
		return "", apierr.Configf(op, "%s: %v", env, err)
	}
	return parsed.Address, nil
}

// String hides the secret key.
func (a AWS) String() string {
	return fmt.Sprintf("AWS{AccessKeyID: %s, Region: %s}", a.AccessKeyID, a.Region)
}
