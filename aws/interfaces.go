// Package aws holds the AWS service abstractions used by the samples. Each interface lists only
// the operations a sample calls, with the same signature as the SDK client, so tests can swap in
// a fake without touching the process environment.
package aws

import (
	"context"

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
)

// TranslateClient translates text between languages.
type TranslateClient interface {
	TranslateText(ctx context.Context, params *translate.TranslateTextInput, optFns ...func(*translate.Options)) (*translate.TranslateTextOutput, error)
}

// ComprehendClient runs the synchronous single-document Comprehend analyses.
type ComprehendClient interface {
	DetectSentiment(ctx context.Context, params *comprehend.DetectSentimentInput, optFns ...func(*comprehend.Options)) (*comprehend.DetectSentimentOutput, error)
	DetectKeyPhrases(ctx context.Context, params *comprehend.DetectKeyPhrasesInput, optFns ...func(*comprehend.Options)) (*comprehend.DetectKeyPhrasesOutput, error)
	DetectEntities(ctx context.Context, params *comprehend.DetectEntitiesInput, optFns ...func(*comprehend.Options)) (*comprehend.DetectEntitiesOutput, error)
	DetectDominantLanguage(ctx context.Context, params *comprehend.DetectDominantLanguageInput, optFns ...func(*comprehend.Options)) (*comprehend.DetectDominantLanguageOutput, error)
}

// PollyClient synthesizes speech and lists voices.
type PollyClient interface {
	SynthesizeSpeech(ctx context.Context, params *polly.SynthesizeSpeechInput, optFns ...func(*polly.Options)) (*polly.SynthesizeSpeechOutput, error)
	DescribeVoices(ctx context.Context, params *polly.DescribeVoicesInput, optFns ...func(*polly.Options)) (*polly.DescribeVoicesOutput, error)
}

// RekognitionClient detects labels, faces and text in images passed as bytes.
type RekognitionClient interface {
	DetectLabels(ctx context.Context, params *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
	DetectFaces(ctx context.Context, params *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error)
	DetectText(ctx context.Context, params *rekognition.DetectTextInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error)
}

// SESClient sends formatted email.
type SESClient interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// S3Client stores and reads result artifacts.
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// DynamoDBClient stores result artifacts as items.
type DynamoDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// IAMClient simulates the permissions of a principal.
type IAMClient interface {
	SimulatePrincipalPolicy(ctx context.Context, params *iam.SimulatePrincipalPolicyInput, optFns ...func(*iam.Options)) (*iam.SimulatePrincipalPolicyOutput, error)
}

// STSClient identifies the caller of the configured credentials.
type STSClient interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// LambdaClient invokes a function asynchronously.
type LambdaClient interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// Compile-time interface checks to ensure implementations satisfy interfaces
var (
	_ TranslateClient   = (*TranslateClientImpl)(nil)
	_ ComprehendClient  = (*ComprehendClientImpl)(nil)
	_ PollyClient       = (*PollyClientImpl)(nil)
	_ RekognitionClient = (*RekognitionClientImpl)(nil)
	_ SESClient         = (*SESClientImpl)(nil)
	_ S3Client          = (*S3ClientImpl)(nil)
	_ DynamoDBClient    = (*DynamoDBClientImpl)(nil)
	_ IAMClient         = (*IAMClientImpl)(nil)
	_ STSClient         = (*STSClientImpl)(nil)
	_ LambdaClient      = (*LambdaClientImpl)(nil)

	// AWS SDK interface checks to ensure SDK clients satisfy interfaces
	_ TranslateClient   = (*translate.Client)(nil)
	_ ComprehendClient  = (*comprehend.Client)(nil)
	_ PollyClient       = (*polly.Client)(nil)
	_ RekognitionClient = (*rekognition.Client)(nil)
	_ SESClient         = (*ses.Client)(nil)
	_ S3Client          = (*s3.Client)(nil)
	_ DynamoDBClient    = (*dynamodb.Client)(nil)
	_ IAMClient         = (*iam.Client)(nil)
	_ STSClient         = (*sts.Client)(nil)
	_ LambdaClient      = (*lambda.Client)(nil)
)
