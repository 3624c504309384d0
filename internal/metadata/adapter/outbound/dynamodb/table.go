package dynamodb

import (
	"context"
	"fmt"

	"github.com/anthanhphan/go-image-metadata/internal/metadata/domain"
	"github.com/anthanhphan/go-image-metadata/internal/metadata/port"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Client is the subset of the DynamoDB API used by Table.
type Client interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Table stores metadata records in a DynamoDB table with a string
// partition key named "id".
type Table struct {
	client Client
	name   string
}

// Ensure Table implements port.RecordStore.
var _ port.RecordStore = (*Table)(nil)

func NewTable(client Client, tableName string) *Table {
	return &Table{client: client, name: tableName}
}

// Get reads the record for id. A missing item yields (nil, nil).
func (t *Table) Get(ctx context.Context, id string) (*domain.Record, error) {
	out, err := t.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(t.name),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("dynamodb get %s from %s: %w", id, t.name, err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var record domain.Record
	if err := attributevalue.UnmarshalMap(out.Item, &record); err != nil {
		return nil, fmt.Errorf("decode item %s: %w", id, err)
	}
	return &record, nil
}

// Put replaces the item with the record's id unconditionally.
func (t *Table) Put(ctx context.Context, record domain.Record) error {
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("encode item %s: %w", record.ID, err)
	}

	if _, err := t.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(t.name),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("dynamodb put %s into %s: %w", record.ID, t.name, err)
	}
	return nil
}
