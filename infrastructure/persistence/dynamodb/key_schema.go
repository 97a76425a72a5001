package dynamodb

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	apperrors "inspect-backend/pkg/errors"
)

// KeySchema describes the key shape of a table: the partition key attribute
// name and, when the table has one, the sort key attribute name.
type KeySchema struct {
	PartitionKey string
	SortKey      string
}

// HasSortKey reports whether the table uses a composite key
func (s KeySchema) HasSortKey() bool {
	return s.SortKey != ""
}

// KeySchemaCache resolves table key schemas through DescribeTable and
// caches them for the lifetime of the process. Writes that guessed at key
// attribute names used to silently create duplicate records under the wrong
// shape; resolving the schema once up front makes a mismatch impossible.
type KeySchemaCache struct {
	client API
	logger *zap.Logger

	mu      sync.Mutex
	schemas map[string]KeySchema
}

// NewKeySchemaCache creates a schema cache over the given client
func NewKeySchemaCache(client API, logger *zap.Logger) *KeySchemaCache {
	return &KeySchemaCache{
		client:  client,
		logger:  logger,
		schemas: make(map[string]KeySchema),
	}
}

// Resolve returns the key schema for tableName, describing the table on
// first use and serving the cached copy afterwards.
func (c *KeySchemaCache) Resolve(ctx context.Context, tableName string) (KeySchema, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if schema, ok := c.schemas[tableName]; ok {
		return schema, nil
	}

	out, err := c.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(tableName),
	})
	if err != nil {
		return KeySchema{}, apperrors.NewStoreReadError(fmt.Sprintf("describe table %s", tableName), err)
	}

	if out.Table == nil {
		return KeySchema{}, apperrors.NewStoreReadError(fmt.Sprintf("describe table %s", tableName), fmt.Errorf("empty table description"))
	}

	var schema KeySchema

	for _, element := range out.Table.KeySchema {
		switch element.KeyType {
		case types.KeyTypeHash:
			schema.PartitionKey = aws.ToString(element.AttributeName)
		case types.KeyTypeRange:
			schema.SortKey = aws.ToString(element.AttributeName)
		}
	}

	if schema.PartitionKey == "" {
		return KeySchema{}, apperrors.NewStoreReadError(fmt.Sprintf("describe table %s", tableName), fmt.Errorf("no partition key in key schema"))
	}

	c.logger.Debug("Resolved table key schema",
		zap.String("table", tableName),
		zap.String("partitionKey", schema.PartitionKey),
		zap.String("sortKey", schema.SortKey),
	)

	c.schemas[tableName] = schema

	return schema, nil
}
