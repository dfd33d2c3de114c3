package aws

import (
	"context"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/aws-sdk-go-v2/service/translate"

	"github.com/gurre/cloud-api-samples/apierr"
	"github.com/gurre/cloud-api-samples/creds"
)

// Factory builds service clients bound to one set of resolved credentials.
// Each method returns a fresh client; nothing is cached or shared between services.
type Factory struct {
	cfg sdkaws.Config
}

// NewFactory builds an SDK configuration from static credentials alone. Shared config files,
// profiles and other AWS_* variables of the process are not consulted, and calls are not
// retried. No request is sent until a client method is called.
func NewFactory(c creds.AWS, optFns ...func(*sdkaws.Config)) (*Factory, error) {
	const op = "aws.NewFactory"
	if c.AccessKeyID == "" || c.SecretAccessKey == "" {
		return nil, apierr.Configf(op, "AWS credentials are incomplete")
	}
	if c.Region == "" {
		return nil, apierr.Configf(op, "region is required")
	}

	cfg := sdkaws.Config{
		Region:      c.Region,
		Credentials: sdkaws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, "")),
		Retryer:     func() sdkaws.Retryer { return sdkaws.NopRetryer{} },
	}
	for _, fn := range optFns {
		fn(&cfg)
	}
	return &Factory{cfg: cfg}, nil
}

// NewDefaultFactory loads an SDK configuration from the default credential chain, as used inside
// Lambda where the execution role supplies credentials. An empty region keeps the region of the
// environment.
func NewDefaultFactory(ctx context.Context, region string, optFns ...func(*awsconfig.LoadOptions) error) (*Factory, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	opts = append(opts, optFns...)

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, apierr.Configf("aws.NewDefaultFactory", "failed to load AWS config: %v", err)
	}
	return &Factory{cfg: cfg}, nil
}

// Config returns the underlying SDK configuration.
func (f *Factory) Config() sdkaws.Config { return f.cfg }

// Translate returns an Amazon Translate client.
func (f *Factory) Translate() *TranslateClientImpl {
	return NewTranslateClient(translate.NewFromConfig(f.cfg))
}

// Comprehend returns an Amazon Comprehend client.
func (f *Factory) Comprehend() *ComprehendClientImpl {
	return NewComprehendClient(comprehend.NewFromConfig(f.cfg))
}

// Polly returns an Amazon Polly client.
func (f *Factory) Polly() *PollyClientImpl {
	return NewPollyClient(polly.NewFromConfig(f.cfg))
}

// Rekognition returns an Amazon Rekognition client.
func (f *Factory) Rekognition() *RekognitionClientImpl {
	return NewRekognitionClient(rekognition.NewFromConfig(f.cfg))
}

// SES returns an Amazon SES client.
func (f *Factory) SES() *SESClientImpl {
	return NewSESClient(ses.NewFromConfig(f.cfg))
}

// S3 returns the raw S3 client; s3streamer needs the concrete type.
func (f *Factory) S3() *s3.Client {
	return s3.NewFromConfig(f.cfg)
}

// DynamoDB returns a DynamoDB client.
func (f *Factory) DynamoDB() *DynamoDBClientImpl {
	return NewDynamoDBClient(dynamodb.NewFromConfig(f.cfg))
}

// IAM returns an IAM client.
func (f *Factory) IAM() *IAMClientImpl {
	return NewIAMClient(iam.NewFromConfig(f.cfg))
}

// STS returns an STS client.
func (f *Factory) STS() *STSClientImpl {
	return NewSTSClient(sts.NewFromConfig(f.cfg))
}

// Lambda returns a Lambda client.
func (f *Factory) Lambda() *LambdaClientImpl {
	return NewLambdaClient(lambda.NewFromConfig(f.cfg))
}
