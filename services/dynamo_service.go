package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"raksha_server/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI is the durable-store contract the services need: upsert by key,
// conditional insert, point read, descending query with limit, atomic
// single-field update, delete, and scan. *DynamoService is the real
// implementation; tests swap in an in-memory fake.
type DynamoAPI interface {
	PutItem(ctx context.Context, tableName string, item interface{}) error
	PutItemIfAbsent(ctx context.Context, tableName string, item interface{}, keyAttr string) error
	GetItem(ctx context.Context, tableName string, key map[string]types.AttributeValue) (map[string]types.AttributeValue, error)
	QueryItemsDesc(ctx context.Context, tableName, keyName, keyValue string, limit int32) ([]map[string]types.AttributeValue, error)
	UpdateFieldIf(ctx context.Context, tableName string, key map[string]types.AttributeValue, field string, value, expected types.AttributeValue) error
	DeleteItem(ctx context.Context, tableName string, key map[string]types.AttributeValue) error
	ScanItems(ctx context.Context, tableName string) ([]map[string]types.AttributeValue, error)
}

// DynamoService wraps the DynamoDB client with the operations above.
type DynamoService struct {
	Client *dynamodb.Client
}

// InitializeDynamoDBClient initializes the DynamoDB client for a region.
func InitializeDynamoDBClient(region string) *dynamodb.Client {
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(), awsconfig.WithRegion(region))
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}
	return dynamodb.NewFromConfig(cfg)
}

// PutItem marshals and writes an item, replacing any existing row with the
// same key.
func (ds *DynamoService) PutItem(ctx context.Context, tableName string, item interface{}) error {
	marshaled, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item for table '%s': %w", tableName, err)
	}
	_, err = ds.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &tableName,
		Item:      marshaled,
	})
	if err != nil {
		return fmt.Errorf("failed to put item in table '%s': %w", tableName, err)
	}
	return nil
}

// PutItemIfAbsent writes an item only when no row with the same key exists.
// An existing row yields models.ErrConflict.
func (ds *DynamoService) PutItemIfAbsent(ctx context.Context, tableName string, item interface{}, keyAttr string) error {
	marshaled, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item for table '%s': %w", tableName, err)
	}
	condition := "attribute_not_exists(#k)"
	_, err = ds.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                &tableName,
		Item:                     marshaled,
		ConditionExpression:      &condition,
		ExpressionAttributeNames: map[string]string{"#k": keyAttr},
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return fmt.Errorf("item already exists in table '%s': %w", tableName, models.ErrConflict)
		}
		return fmt.Errorf("failed to put item in table '%s': %w", tableName, err)
	}
	return nil
}

// GetItem retrieves an item by key. A missing item returns (nil, nil).
func (ds *DynamoService) GetItem(ctx context.Context, tableName string, key map[string]types.AttributeValue) (map[string]types.AttributeValue, error) {
	output, err := ds.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &tableName,
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get item from table '%s': %w", tableName, err)
	}
	return output.Item, nil
}

// QueryItemsDesc queries one partition newest-first.
func (ds *DynamoService) QueryItemsDesc(ctx context.Context, tableName, keyName, keyValue string, limit int32) ([]map[string]types.AttributeValue, error) {
	keyCondition := "#k = :v"
	output, err := ds.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:                &tableName,
		KeyConditionExpression:   &keyCondition,
		ExpressionAttributeNames: map[string]string{"#k": keyName},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: keyValue},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            &limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query table '%s': %w", tableName, err)
	}
	return output.Items, nil
}

// UpdateFieldIf sets a single field on an existing item. When expected is
// non-nil the update only applies while the field still holds that value;
// a lost race yields models.ErrConflict.
func (ds *DynamoService) UpdateFieldIf(ctx context.Context, tableName string, key map[string]types.AttributeValue, field string, value, expected types.AttributeValue) error {
	updateExpression := "SET #f = :v"
	input := &dynamodb.UpdateItemInput{
		TableName:                &tableName,
		Key:                      key,
		UpdateExpression:         &updateExpression,
		ExpressionAttributeNames: map[string]string{"#f": field},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": value,
		},
	}
	if expected != nil {
		condition := "#f = :expected"
		input.ConditionExpression = &condition
		input.ExpressionAttributeValues[":expected"] = expected
	}
	_, err := ds.Client.UpdateItem(ctx, input)
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return fmt.Errorf("field '%s' no longer holds expected value in table '%s': %w", field, tableName, models.ErrConflict)
		}
		return fmt.Errorf("failed to update item in table '%s': %w", tableName, err)
	}
	return nil
}

// DeleteItem removes an item by key.
func (ds *DynamoService) DeleteItem(ctx context.Context, tableName string, key map[string]types.AttributeValue) error {
	_, err := ds.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &tableName,
		Key:       key,
	})
	if err != nil {
		return fmt.Errorf("failed to delete item from table '%s': %w", tableName, err)
	}
	return nil
}

// ScanItems returns every item of a table, following pagination. Used for the
// small relationship and breach tables where access patterns cut across keys.
func (ds *DynamoService) ScanItems(ctx context.Context, tableName string) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	var startKey map[string]types.AttributeValue
	for {
		output, err := ds.Client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         &tableName,
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan table '%s': %w", tableName, err)
		}
		items = append(items, output.Items...)
		if output.LastEvaluatedKey == nil {
			break
		}
		startKey = output.LastEvaluatedKey
	}
	return items, nil
}

// StringKey builds a single-attribute string key map.
func StringKey(attr, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attr: &types.AttributeValueMemberS{Value: value},
	}
}
