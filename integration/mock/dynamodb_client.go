package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

// DynamoDBClient is a mock implementation of aws.DynamoDBClient for the result sink.
// Items are keyed by the runId partition key and the name sort key of the results table.
type DynamoDBClient struct {
	// tableName -> "runId#name" -> attributes
	tableData     map[string]map[string]map[string]types.AttributeValue
	mu            sync.RWMutex
	puts          []dynamodb.PutItemInput
	failNextWrite bool
	failMu        sync.Mutex
}

// NewDynamoDBClient creates a new mock DynamoDB client
func NewDynamoDBClient() *DynamoDBClient {
	return &DynamoDBClient{
		tableData: make(map[string]map[string]map[string]types.AttributeValue),
	}
}

// resultKey builds the storage key of a results item.
func resultKey(item map[string]types.AttributeValue) string {
	return attributeToString(item["runId"]) + "#" + attributeToString(item["name"])
}

// attributeToString converts an AttributeValue to a string for key generation
func attributeToString(av types.AttributeValue) string {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return v.Value
	case *types.AttributeValueMemberN:
		return v.Value
	default:
		return ""
	}
}

// SetFailNextWrite makes the next PutItem fail with a provider error.
func (m *DynamoDBClient) SetFailNextWrite(fail bool) {
	m.failMu.Lock()
	defer m.failMu.Unlock()

	m.failNextWrite = fail
}

// shouldFail safely checks and resets the failNextWrite flag
func (m *DynamoDBClient) shouldFail() bool {
	m.failMu.Lock()
	defer m.failMu.Unlock()

	if m.failNextWrite {
		m.failNextWrite = false
		return true
	}
	return false
}

// PutItem stores the item, replacing one with the same key.
func (m *DynamoDBClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.mu.Lock()
	m.puts = append(m.puts, *params)
	m.mu.Unlock()

	if m.shouldFail() {
		return nil, &smithy.GenericAPIError{Code: "ProvisionedThroughputExceededException", Message: "simulated put failure"}
	}
	if params.TableName == nil || *params.TableName == "" {
		return nil, &smithy.GenericAPIError{Code: "ValidationException", Message: "table name is required"}
	}

	key := resultKey(params.Item)
	if key == "#" {
		return nil, &smithy.GenericAPIError{Code: "ValidationException", Message: fmt.Sprintf("item in %s has no key attributes", *params.TableName)}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	table, ok := m.tableData[*params.TableName]
	if !ok {
		table = make(map[string]map[string]types.AttributeValue)
		m.tableData[*params.TableName] = table
	}
	table[key] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

// Item returns the stored item for runID and name, or nil.
func (m *DynamoDBClient) Item(table, runID, name string) map[string]types.AttributeValue {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.tableData[table][runID+"#"+name]
}

// Len returns the number of items in a table.
func (m *DynamoDBClient) Len(table string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.tableData[table])
}

// Puts returns every PutItem request received, including failed ones.
func (m *DynamoDBClient) Puts() []dynamodb.PutItemInput {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]dynamodb.PutItemInput(nil), m.puts...)
}
