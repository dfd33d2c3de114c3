package sink

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/gurre/cloud-api-samples/apierr"
	"github.com/gurre/cloud-api-samples/aws"
)

// resultItem is the DynamoDB shape of an artifact. The table is keyed by runId (partition)
// and name (sort).
type resultItem struct {
	RunID       string `dynamodbav:"runId"`
	Name        string `dynamodbav:"name"`
	ContentType string `dynamodbav:"contentType"`
	Body        []byte `dynamodbav:"body"`
	Size        int    `dynamodbav:"size"`
	CreatedAt   string `dynamodbav:"createdAt"`
}

// DynamoDBSink stores artifacts as items of one table.
type DynamoDBSink struct {
	client aws.DynamoDBClient
	table  string
	runID  string
	now    func() time.Time
}

// NewDynamoDBSink creates a DynamoDBSink from a dynamodb://table URI.
func NewDynamoDBSink(client aws.DynamoDBClient, uri, runID string) (*DynamoDBSink, error) {
	const op = "sink.NewDynamoDBSink"
	u, err := url.Parse(uri)
	if err != nil {
		return nil, apierr.Configf(op, "invalid DynamoDB URI: %v", err)
	}
	if u.Scheme != "dynamodb" {
		return nil, apierr.Configf(op, "invalid DynamoDB URI scheme: %s", u.Scheme)
	}
	table := u.Host + strings.TrimSuffix(u.Path, "/")
	if table == "" {
		return nil, apierr.Configf(op, "DynamoDB URI %s has no table name", uri)
	}
	if runID == "" {
		return nil, apierr.Configf(op, "a run id is required")
	}
	return &DynamoDBSink{client: client, table: table, runID: runID, now: time.Now}, nil
}

// Write puts one item per artifact, replacing an item with the same run id and name.
// DynamoDB caps items at 400 KB, so larger bodies are rejected before the call.
func (d *DynamoDBSink) Write(ctx context.Context, a Artifact) error {
	const op = "sink.DynamoDBSink.Write"
	if err := ValidateName(a.Name); err != nil {
		return apierr.New(apierr.KindLocalIO, op, err)
	}
	if len(a.Body) > 350*1024 {
		return apierr.New(apierr.KindLocalIO, op, fmt.Errorf("artifact %s is %d bytes, too large for a DynamoDB item", a.Name, len(a.Body)))
	}

	item, err := attributevalue.MarshalMap(resultItem{
		RunID:       d.runID,
		Name:        a.Name,
		ContentType: a.ContentType,
		Body:        a.Body,
		Size:        len(a.Body),
		CreatedAt:   d.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return apierr.New(apierr.KindLocalIO, op, fmt.Errorf("failed to marshal item: %w", err))
	}

	if _, err := d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &d.table,
		Item:      item,
	}); err != nil {
		return apierr.Classify(op, fmt.Errorf("failed to put item into %s: %w", d.table, err))
	}
	return nil
}
