package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/vibecommerce/go-cart-checkout/internal/awsx"
)

// DefaultListLimit caps order history listings.
const DefaultListLimit = 10

var (
	// ErrCartConflict means the cart changed between the checkout read
	// and the transaction commit; the caller lost the race.
	ErrCartConflict = errors.New("cart modified concurrently during checkout")

	// ErrDuplicateCheckout means the supplied idempotency key was already
	// used; the caller should replay the recorded response.
	ErrDuplicateCheckout = errors.New("duplicate checkout for idempotency key")

	// ErrStatusMismatch means a conditional status transition failed.
	ErrStatusMismatch = errors.New("status mismatch/conditional failed")
)

// Store encapsulates operations on the orders table.
type Store struct {
	client    awsx.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewStore creates a new orders Store.
func NewStore(client awsx.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// CheckoutWrite describes the atomic cart-to-order transition: the order
// put, the cleared cart put conditioned on the version the cart was read
// at, and optionally the idempotency record guarding against duplicate
// checkouts.
type CheckoutWrite struct {
	Order Order

	CartTable   string
	CartItem    interface{} // cleared cart document, marshaled via attributevalue
	CartVersion int64       // version the cart was read at

	IdempotencyTable string      // optional; empty skips the idempotency put
	IdempotencyItem  interface{} // must carry an idempotency_key attribute
}

// Transact item positions inside the checkout transaction, used to map
// cancellation reasons back to sentinel errors.
const (
	idxOrder = iota
	idxCart
	idxIdempotency
)

// CheckoutTransaction atomically persists the order, replaces the cart
// with its cleared successor, and (when a key was supplied) records the
// idempotency entry, in a single TransactWriteItems call. Either all
// three writes commit or none do: there is no window where an order
// exists with the cart still populated.
//
// Returns ErrCartConflict if the cart version condition failed and
// ErrDuplicateCheckout if the idempotency key already exists.
func (s *Store) CheckoutTransaction(ctx context.Context, w CheckoutWrite) error {
	order := w.Order
	now := s.nowFunc()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now

	orderMap, err := attributevalue.MarshalMap(order)
	if err != nil {
		return fmt.Errorf("marshal order item: %w", err)
	}
	cartMap, err := attributevalue.MarshalMap(w.CartItem)
	if err != nil {
		return fmt.Errorf("marshal cart item: %w", err)
	}

	transactItems := []types.TransactWriteItem{
		{
			Put: &types.Put{
				TableName:           &s.tableName,
				Item:                orderMap,
				ConditionExpression: awsString("attribute_not_exists(order_id)"),
			},
		},
		{
			Put: &types.Put{
				TableName:           &w.CartTable,
				Item:                cartMap,
				ConditionExpression: awsString("version = :expected"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":expected": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", w.CartVersion)},
				},
			},
		},
	}

	if w.IdempotencyTable != "" && w.IdempotencyItem != nil {
		idempMap, err := attributevalue.MarshalMap(w.IdempotencyItem)
		if err != nil {
			return fmt.Errorf("marshal idempotency item: %w", err)
		}
		transactItems = append(transactItems, types.TransactWriteItem{
			Put: &types.Put{
				TableName:           &w.IdempotencyTable,
				Item:                idempMap,
				ConditionExpression: awsString("attribute_not_exists(idempotency_key)"),
			},
		})
	}

	_, err = s.client.TransactWriteItems(ctx, &dyn.TransactWriteItemsInput{
		TransactItems: transactItems,
	})
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			for i, reason := range tce.CancellationReasons {
				if reason.Code == nil || *reason.Code != "ConditionalCheckFailed" {
					continue
				}
				switch i {
				case idxCart:
					return ErrCartConflict
				case idxIdempotency:
					return ErrDuplicateCheckout
				}
			}
			return fmt.Errorf("checkout transaction canceled: %w", err)
		}
		return fmt.Errorf("transact write: %w", err)
	}
	return nil
}

// Get fetches an order by order_id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, orderID string) (*Order, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var o Order
	if err := attributevalue.UnmarshalMap(out.Item, &o); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	return &o, nil
}

// List returns the most recently created orders first, capped at limit
// (DefaultListLimit when limit <= 0). Demo-scale table, so a scan with a
// client-side sort is adequate here.
func (s *Store) List(ctx context.Context, limit int) ([]Order, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	input := &dyn.ScanInput{TableName: &s.tableName}
	var all []Order
	for {
		out, err := s.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("scan orders: %w", err)
		}
		for _, item := range out.Items {
			var o Order
			if err := attributevalue.UnmarshalMap(item, &o); err != nil {
				return nil, fmt.Errorf("unmarshal order: %w", err)
			}
			all = append(all, o)
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// UpdateStatus conditionally moves the order status from expected to
// next. Illegal transitions are rejected before touching storage;
// a failed condition (another writer got there first) returns
// ErrStatusMismatch.
func (s *Store) UpdateStatus(ctx context.Context, orderID, expected, next string) error {
	if !CanTransition(expected, next) {
		return fmt.Errorf("illegal status transition %s -> %s", expected, next)
	}

	now := s.nowFunc()
	input := &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
		UpdateExpression:         awsString("SET #s = :new, updated_at = :ua"),
		ExpressionAttributeNames: map[string]string{"#s": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":new":      &types.AttributeValueMemberS{Value: next},
			":expected": &types.AttributeValueMemberS{Value: expected},
			":ua":       &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
		ConditionExpression: awsString("#s = :expected"),
	}

	if _, err := s.client.UpdateItem(ctx, input); err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrStatusMismatch
		}
		return fmt.Errorf("update order status: %w", err)
	}
	return nil
}

func awsString(s string) *string { return &s }
