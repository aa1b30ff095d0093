package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DDBClient is the interface for the DynamoDB operations the catalog
// needs.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// DynamoDBCatalog implements Catalog on a DynamoDB table. Conditional
// writes provide the compare-and-swap that makes concurrent ingests
// safe: the loser of a version race gets ErrConcurrentUpdate.
//
// Table schema:
//   - Partition key: dataset (string)
//   - Sort key: version (number), monotonically increasing
//
// Create the table with:
//
//	aws dynamodb create-table \
//	  --table-name meshgo-catalog \
//	  --attribute-definitions AttributeName=dataset,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=dataset,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type DynamoDBCatalog struct {
	client DDBClient
	table  string
}

// NewDynamoDBCatalog creates a catalog on the given table.
func NewDynamoDBCatalog(client DDBClient, table string) *DynamoDBCatalog {
	return &DynamoDBCatalog{
		client: client,
		table:  table,
	}
}

// Put implements Catalog.
func (c *DynamoDBCatalog) Put(ctx context.Context, m *Manifest) error {
	current, _, err := c.latestVersion(ctx, m.Dataset)
	if err != nil {
		return err
	}

	m.Version = current + 1
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}

	body, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	// Conditional put: only succeed if this version doesn't exist yet.
	_, err = c.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.table),
		Item: map[string]types.AttributeValue{
			"dataset":  &types.AttributeValueMemberS{Value: m.Dataset},
			"version":  &types.AttributeValueMemberN{Value: strconv.FormatUint(m.Version, 10)},
			"manifest": &types.AttributeValueMemberS{Value: string(body)},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrConcurrentUpdate
		}

		return fmt.Errorf("commit manifest version: %w", err)
	}

	return nil
}

// Latest implements Catalog.
func (c *DynamoDBCatalog) Latest(ctx context.Context, dataset string) (*Manifest, error) {
	version, body, err := c.latestVersion(ctx, dataset)
	if err != nil {
		return nil, err
	}

	if version == 0 {
		return nil, ErrNotFound
	}

	var m Manifest
	if err := json.Unmarshal([]byte(body), &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}

	return &m, nil
}

// Versions implements Catalog.
func (c *DynamoDBCatalog) Versions(ctx context.Context, dataset string) ([]uint64, error) {
	var (
		versions []uint64
		startKey map[string]types.AttributeValue
	)

	for {
		resp, err := c.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(c.table),
			KeyConditionExpression: aws.String("dataset = :ds"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":ds": &types.AttributeValueMemberS{Value: dataset},
			},
			ProjectionExpression:     aws.String("#v"),
			ExpressionAttributeNames: map[string]string{"#v": "version"},
			ExclusiveStartKey:        startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("query catalog: %w", err)
		}

		for _, item := range resp.Items {
			v, err := itemVersion(item)
			if err != nil {
				return nil, err
			}

			versions = append(versions, v)
		}

		if resp.LastEvaluatedKey == nil {
			break
		}

		startKey = resp.LastEvaluatedKey
	}

	return versions, nil
}

// latestVersion queries the highest committed version for a dataset.
// A version of 0 means no manifest exists.
func (c *DynamoDBCatalog) latestVersion(ctx context.Context, dataset string) (uint64, string, error) {
	resp, err := c.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(c.table),
		KeyConditionExpression: aws.String("dataset = :ds"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":ds": &types.AttributeValueMemberS{Value: dataset},
		},
		ScanIndexForward: aws.Bool(false), // Descending order
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return 0, "", fmt.Errorf("query catalog: %w", err)
	}

	if len(resp.Items) == 0 {
		return 0, "", nil
	}

	item := resp.Items[0]

	version, err := itemVersion(item)
	if err != nil {
		return 0, "", err
	}

	bodyAttr, ok := item["manifest"].(*types.AttributeValueMemberS)
	if !ok {
		return 0, "", errors.New("invalid manifest attribute in catalog item")
	}

	return version, bodyAttr.Value, nil
}

func itemVersion(item map[string]types.AttributeValue) (uint64, error) {
	attr, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, errors.New("invalid version attribute in catalog item")
	}

	v, err := strconv.ParseUint(attr.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse catalog version: %w", err)
	}

	return v, nil
}
