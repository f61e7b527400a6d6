package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/vibecommerce/go-cart-checkout/internal/awsx"
)

// ErrVersionConflict indicates the cart document changed since it was
// read; the caller should re-read and retry or surface a Conflict.
var ErrVersionConflict = errors.New("cart version conflict")

// Store persists cart documents with an optimistic concurrency check.
// All mutations for an owner are serialized through the version
// condition: a stale read-modify-write fails instead of silently
// overwriting a concurrent one.
type Store struct {
	client    awsx.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewStore creates a new cart Store.
func NewStore(client awsx.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// TableName exposes the carts table for the checkout transaction.
func (s *Store) TableName() string { return s.tableName }

// Get fetches the owner's cart. Returns (nil, nil) if none exists.
func (s *Store) Get(ctx context.Context, ownerID string) (*Cart, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"owner_id": &types.AttributeValueMemberS{Value: ownerID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var c Cart
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	return &c, nil
}

// Save writes the cart conditioned on the version it was read at.
// Version 0 carts must not exist yet; persisted carts must still carry
// the read version. On success the in-memory cart is advanced to the
// stored version. Returns ErrVersionConflict on a stale write.
func (s *Store) Save(ctx context.Context, c *Cart) error {
	next := *c
	next.Version = c.Version + 1
	next.UpdatedAt = s.nowFunc()

	item, err := attributevalue.MarshalMap(next)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	input := &dyn.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	}
	if c.Version == 0 {
		input.ConditionExpression = awsString("attribute_not_exists(owner_id)")
	} else {
		input.ConditionExpression = awsString("version = :expected")
		input.ExpressionAttributeValues = map[string]types.AttributeValue{
			":expected": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", c.Version)},
		}
	}

	if _, err := s.client.PutItem(ctx, input); err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException" {
			return ErrVersionConflict
		}
		return fmt.Errorf("put cart: %w", err)
	}

	c.Version = next.Version
	c.UpdatedAt = next.UpdatedAt
	return nil
}

func awsString(s string) *string { return &s }
