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

// TranslateClientImpl implements TranslateClient using the AWS SDK.
type TranslateClientImpl struct {
	client *translate.Client
}

// NewTranslateClient creates a new TranslateClientImpl instance
func NewTranslateClient(client *translate.Client) *TranslateClientImpl {
	return &TranslateClientImpl{client: client}
}

// TranslateText implements the TranslateClient interface
func (c *TranslateClientImpl) TranslateText(ctx context.Context, params *translate.TranslateTextInput, optFns ...func(*translate.Options)) (*translate.TranslateTextOutput, error) {
	return c.client.TranslateText(ctx, params, optFns...)
}

// ComprehendClientImpl implements ComprehendClient using the AWS SDK.
type ComprehendClientImpl struct {
	client *comprehend.Client
}

// NewComprehendClient creates a new ComprehendClientImpl instance
func NewComprehendClient(client *comprehend.Client) *ComprehendClientImpl {
	return &ComprehendClientImpl{client: client}
}

// DetectSentiment implements the ComprehendClient interface
func (c *ComprehendClientImpl) DetectSentiment(ctx context.Context, params *comprehend.DetectSentimentInput, optFns ...func(*comprehend.Options)) (*comprehend.DetectSentimentOutput, error) {
	return c.client.DetectSentiment(ctx, params, optFns...)
}

// DetectKeyPhrases implements the ComprehendClient interface
func (c *ComprehendClientImpl) DetectKeyPhrases(ctx context.Context, params *comprehend.DetectKeyPhrasesInput, optFns ...func(*comprehend.Options)) (*comprehend.DetectKeyPhrasesOutput, error) {
	return c.client.DetectKeyPhrases(ctx, params, optFns...)
}

// DetectEntities implements the ComprehendClient interface
func (c *ComprehendClientImpl) DetectEntities(ctx context.Context, params *comprehend.DetectEntitiesInput, optFns ...func(*comprehend.Options)) (*comprehend.DetectEntitiesOutput, error) {
	return c.client.DetectEntities(ctx, params, optFns...)
}

// DetectDominantLanguage implements the ComprehendClient interface
func (c *ComprehendClientImpl) DetectDominantLanguage(ctx context.Context, params *comprehend.DetectDominantLanguageInput, optFns ...func(*comprehend.Options)) (*comprehend.DetectDominantLanguageOutput, error) {
	return c.client.DetectDominantLanguage(ctx, params, optFns...)
}

// PollyClientImpl implements PollyClient using the AWS SDK.
type PollyClientImpl struct {
	client *polly.Client
}

// NewPollyClient creates a new PollyClientImpl instance
func NewPollyClient(client *polly.Client) *PollyClientImpl {
	return &PollyClientImpl{client: client}
}

// SynthesizeSpeech implements the PollyClient interface
func (c *PollyClientImpl) SynthesizeSpeech(ctx context.Context, params *polly.SynthesizeSpeechInput, optFns ...func(*polly.Options)) (*polly.SynthesizeSpeechOutput, error) {
	return c.client.SynthesizeSpeech(ctx, params, optFns...)
}

// DescribeVoices implements the PollyClient interface
func (c *PollyClientImpl) DescribeVoices(ctx context.Context, params *polly.DescribeVoicesInput, optFns ...func(*polly.Options)) (*polly.DescribeVoicesOutput, error) {
	return c.client.DescribeVoices(ctx, params, optFns...)
}

// RekognitionClientImpl implements RekognitionClient using the AWS SDK.
type RekognitionClientImpl struct {
	client *rekognition.Client
}

// NewRekognitionClient creates a new RekognitionClientImpl instance
func NewRekognitionClient(client *rekognition.Client) *RekognitionClientImpl {
	return &RekognitionClientImpl{client: client}
}

// DetectLabels implements the RekognitionClient interface
func (c *RekognitionClientImpl) DetectLabels(ctx context.Context, params *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error) {
	return c.client.DetectLabels(ctx, params, optFns...)
}

// DetectFaces implements the RekognitionClient interface
func (c *RekognitionClientImpl) DetectFaces(ctx context.Context, params *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error) {
	return c.client.DetectFaces(ctx, params, optFns...)
}

// DetectText implements the RekognitionClient interface
func (c *RekognitionClientImpl) DetectText(ctx context.Context, params *rekognition.DetectTextInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error) {
	return c.client.DetectText(ctx, params, optFns...)
}

// SESClientImpl implements SESClient using the AWS SDK.
type SESClientImpl struct {
	client *ses.Client
}

// NewSESClient creates a new SESClientImpl instance
func NewSESClient(client *ses.Client) *SESClientImpl {
	return &SESClientImpl{client: client}
}

// SendEmail implements the SESClient interface
func (c *SESClientImpl) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return c.client.SendEmail(ctx, params, optFns...)
}

// S3ClientImpl implements S3Client using the AWS SDK.
type S3ClientImpl struct {
	client *s3.Client
}

// NewS3Client creates a new S3ClientImpl instance
func NewS3Client(client *s3.Client) *S3ClientImpl {
	return &S3ClientImpl{client: client}
}

// GetObject implements the S3Client interface for reading objects
func (c *S3ClientImpl) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return c.client.GetObject(ctx, params, optFns...)
}

// PutObject implements the S3Client interface for writing objects
func (c *S3ClientImpl) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return c.client.PutObject(ctx, params, optFns...)
}

// DynamoDBClientImpl implements DynamoDBClient using the AWS SDK.
type DynamoDBClientImpl struct {
	client *dynamodb.Client
}

// NewDynamoDBClient creates a new DynamoDBClientImpl instance
func NewDynamoDBClient(client *dynamodb.Client) *DynamoDBClientImpl {
	return &DynamoDBClientImpl{client: client}
}

// PutItem implements the DynamoDBClient interface
func (c *DynamoDBClientImpl) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	return c.client.PutItem(ctx, params, optFns...)
}

// IAMClientImpl implements IAMClient using the AWS SDK.
type IAMClientImpl struct {
	client *iam.Client
}

// NewIAMClient creates a new IAMClientImpl instance
func NewIAMClient(client *iam.Client) *IAMClientImpl {
	return &IAMClientImpl{client: client}
}

// SimulatePrincipalPolicy implements the IAMClient interface for permission simulation
func (c *IAMClientImpl) SimulatePrincipalPolicy(ctx context.Context, params *iam.SimulatePrincipalPolicyInput, optFns ...func(*iam.Options)) (*iam.SimulatePrincipalPolicyOutput, error) {
	return c.client.SimulatePrincipalPolicy(ctx, params, optFns...)
}

// STSClientImpl implements STSClient using the AWS SDK.
type STSClientImpl struct {
	client *sts.Client
}

// NewSTSClient creates a new STSClientImpl instance
func NewSTSClient(client *sts.Client) *STSClientImpl {
	return &STSClientImpl{client: client}
}

// GetCallerIdentity implements the STSClient interface
func (c *STSClientImpl) GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	return c.client.GetCallerIdentity(ctx, params, optFns...)
}

// LambdaClientImpl implements LambdaClient using the AWS SDK.
type LambdaClientImpl struct {
	client *lambda.Client
}

// NewLambdaClient creates a new LambdaClientImpl instance
func NewLambdaClient(client *lambda.Client) *LambdaClientImpl {
	return &LambdaClientImpl{client: client}
}

// Invoke implements the LambdaClient interface
func (c *LambdaClientImpl) Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error) {
	return c.client.Invoke(ctx, params, optFns...)
}
