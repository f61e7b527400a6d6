package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/vibecommerce/go-cart-checkout/internal/awsx"
)

// Store encapsulates read/seed operations on the products table.
type Store struct {
	client    awsx.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewStore creates a new catalog Store.
func NewStore(client awsx.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// Get fetches a product by id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, productID string) (*Product, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"product_id": &types.AttributeValueMemberS{Value: productID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var p Product
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, fmt.Errorf("unmarshal product: %w", err)
	}
	return &p, nil
}

// List scans the products table applying the filter, newest first.
// Category and price bounds become a scan filter expression; the search
// term is matched case-insensitively against name and description after
// unmarshalling, since contains() is case-sensitive in DynamoDB.
func (s *Store) List(ctx context.Context, f Filter) ([]Product, error) {
	input := &dyn.ScanInput{TableName: &s.tableName}

	var exprParts []string
	values := map[string]types.AttributeValue{}
	names := map[string]string{}

	if f.Category != "" {
		exprParts = append(exprParts, "#c = :category")
		names["#c"] = "category"
		values[":category"] = &types.AttributeValueMemberS{Value: f.Category}
	}
	if f.MinPrice != nil {
		exprParts = append(exprParts, "price >= :min_price")
		values[":min_price"] = &types.AttributeValueMemberN{Value: f.MinPrice.String()}
	}
	if f.MaxPrice != nil {
		exprParts = append(exprParts, "price <= :max_price")
		values[":max_price"] = &types.AttributeValueMemberN{Value: f.MaxPrice.String()}
	}
	if len(exprParts) > 0 {
		expr := strings.Join(exprParts, " AND ")
		input.FilterExpression = &expr
		input.ExpressionAttributeValues = values
		if len(names) > 0 {
			input.ExpressionAttributeNames = names
		}
	}

	var products []Product
	search := strings.ToLower(strings.TrimSpace(f.Search))
	for {
		out, err := s.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("scan products: %w", err)
		}
		for _, item := range out.Items {
			var p Product
			if err := attributevalue.UnmarshalMap(item, &p); err != nil {
				return nil, fmt.Errorf("unmarshal product: %w", err)
			}
			if search != "" && !matchesSearch(p, search) {
				continue
			}
			products = append(products, p)
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	sort.Slice(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	return products, nil
}

func matchesSearch(p Product, search string) bool {
	return strings.Contains(strings.ToLower(p.Name), search) ||
		strings.Contains(strings.ToLower(p.Description), search)
}

// Put writes a product (seeding/admin path). Price and stock must be
// non-negative.
func (s *Store) Put(ctx context.Context, p *Product) error {
	if p.Price.IsNegative() {
		return fmt.Errorf("product %s: price cannot be negative", p.ID)
	}
	if p.Stock < 0 {
		return fmt.Errorf("product %s: stock cannot be negative", p.ID)
	}
	if !ValidCategory(p.Category) {
		return fmt.Errorf("product %s: unknown category %q", p.ID, p.Category)
	}

	now := s.nowFunc()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}
	if _, err := s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	}); err != nil {
		return fmt.Errorf("put product: %w", err)
	}
	return nil
}
