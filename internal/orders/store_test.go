package orders

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/vibecommerce/go-cart-checkout/internal/money"
)

// mockDynamo stores items per table keyed by their primary key and
// evaluates the condition expressions the orders store relies on,
// including per-item cancellation reasons on transact failures.
type mockDynamo struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]types.AttributeValue
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{tables: map[string]map[string]map[string]types.AttributeValue{}}
}

func (m *mockDynamo) ensureTable(tbl string) {
	if _, ok := m.tables[tbl]; !ok {
		m.tables[tbl] = map[string]map[string]types.AttributeValue{}
	}
}

func itemPK(item map[string]types.AttributeValue) (string, error) {
	for _, key := range []string{"idempotency_key", "order_id", "owner_id"} {
		if v, ok := item[key]; ok {
			return v.(*types.AttributeValueMemberS).Value, nil
		}
	}
	return "", errors.New("no primary key in item")
}

func (m *mockDynamo) checkCondition(put *types.Put) bool {
	if put.ConditionExpression == nil {
		return true
	}
	table := *put.TableName
	m.ensureTable(table)
	pk, err := itemPK(put.Item)
	if err != nil {
		return false
	}
	existing, exists := m.tables[table][pk]

	switch *put.ConditionExpression {
	case "attribute_not_exists(order_id)", "attribute_not_exists(idempotency_key)":
		return !exists
	case "version = :expected":
		if !exists {
			return false
		}
		expected := put.ExpressionAttributeValues[":expected"].(*types.AttributeValueMemberN).Value
		current := existing["version"].(*types.AttributeValueMemberN).Value
		return expected == current
	}
	return true
}

func (m *mockDynamo) TransactWriteItems(ctx context.Context, params *dyn.TransactWriteItemsInput, optFns ...func(*dyn.Options)) (*dyn.TransactWriteItemsOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	reasons := make([]types.CancellationReason, len(params.TransactItems))
	failed := false
	for i, it := range params.TransactItems {
		code := "None"
		if it.Put != nil && !m.checkCondition(it.Put) {
			code = "ConditionalCheckFailed"
			failed = true
		}
		reasons[i] = types.CancellationReason{Code: &code}
	}
	if failed {
		return nil, &types.TransactionCanceledException{CancellationReasons: reasons}
	}

	for _, it := range params.TransactItems {
		if it.Put == nil {
			continue
		}
		table := *it.Put.TableName
		m.ensureTable(table)
		pk, err := itemPK(it.Put.Item)
		if err != nil {
			return nil, err
		}
		m.tables[table][pk] = it.Put.Item
	}
	return &dyn.TransactWriteItemsOutput{}, nil
}

func (m *mockDynamo) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := *params.TableName
	m.ensureTable(table)
	pk, err := itemPK(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.tables[table][pk]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *mockDynamo) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := *params.TableName
	m.ensureTable(table)
	pk, err := itemPK(params.Item)
	if err != nil {
		return nil, err
	}
	m.tables[table][pk] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *mockDynamo) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := *params.TableName
	m.ensureTable(table)
	pk, err := itemPK(params.Key)
	if err != nil {
		return nil, err
	}
	item, exists := m.tables[table][pk]
	if !exists {
		return nil, &types.ConditionalCheckFailedException{}
	}
	if params.ConditionExpression != nil && *params.ConditionExpression == "#s = :expected" {
		curr, ok := item["status"].(*types.AttributeValueMemberS)
		expected := params.ExpressionAttributeValues[":expected"].(*types.AttributeValueMemberS).Value
		if !ok || curr.Value != expected {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	if v, ok := params.ExpressionAttributeValues[":new"]; ok {
		item["status"] = v
	}
	if v, ok := params.ExpressionAttributeValues[":ua"]; ok {
		item["updated_at"] = v
	}
	m.tables[table][pk] = item
	return &dyn.UpdateItemOutput{Attributes: item}, nil
}

func (m *mockDynamo) Scan(ctx context.Context, params *dyn.ScanInput, optFns ...func(*dyn.Options)) (*dyn.ScanOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := *params.TableName
	m.ensureTable(table)
	out := &dyn.ScanOutput{}
	for _, item := range m.tables[table] {
		out.Items = append(out.Items, item)
	}
	return out, nil
}

// cartDoc mirrors the carts table document shape for the transaction tests.
type cartDoc struct {
	OwnerID   string    `dynamodbav:"owner_id"`
	Items     []string  `dynamodbav:"items"`
	Version   int64     `dynamodbav:"version"`
	UpdatedAt time.Time `dynamodbav:"updated_at"`
}

func seedCart(t *testing.T, mock *mockDynamo, ownerID string, version int64) {
	t.Helper()
	item, err := attributevalue.MarshalMap(cartDoc{
		OwnerID: ownerID,
		Items:   []string{"item-1"},
		Version: version,
	})
	if err != nil {
		t.Fatalf("marshal cart: %v", err)
	}
	mock.ensureTable("carts")
	mock.tables["carts"][ownerID] = item
}

func testOrder(id string, createdAt time.Time) Order {
	return Order{
		OrderID: id,
		OwnerID: "guest",
		Items: []LineItem{
			{
				ProductID: "P1",
				Name:      "Headphones",
				Image:     "https://example.com/p1.jpg",
				Quantity:  2,
				UnitPrice: money.FromInt(1499),
				LineTotal: money.FromInt(2998),
			},
		},
		Customer:  Customer{Name: "Asha", Email: "asha@example.com", Address: "1 MG Road"},
		SubTotal:  money.FromInt(2998),
		Tax:       money.FromFloat(299.8),
		Total:     money.FromFloat(3297.8),
		Status:    StatusPending,
		CreatedAt: createdAt,
	}
}

func TestCheckoutTransaction_Success(t *testing.T) {
	mock := newMockDynamo()
	store := NewStore(mock, "orders")
	seedCart(t, mock, "guest", 2)

	err := store.CheckoutTransaction(context.Background(), CheckoutWrite{
		Order:       testOrder("ORD-1", time.Now()),
		CartTable:   "carts",
		CartItem:    cartDoc{OwnerID: "guest", Items: []string{}, Version: 3},
		CartVersion: 2,
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	// order persisted
	got, err := store.Get(context.Background(), "ORD-1")
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if got == nil || got.Status != StatusPending {
		t.Fatalf("unexpected order: %+v", got)
	}
	if got.Total.String() != "3297.8" {
		t.Fatalf("total mismatch: %s", got.Total)
	}

	// cart replaced with the cleared successor
	var storedCart cartDoc
	if err := attributevalue.UnmarshalMap(mock.tables["carts"]["guest"], &storedCart); err != nil {
		t.Fatalf("unmarshal cart: %v", err)
	}
	if len(storedCart.Items) != 0 || storedCart.Version != 3 {
		t.Fatalf("cart not cleared: %+v", storedCart)
	}
}

func TestCheckoutTransaction_WithIdempotencyRecord(t *testing.T) {
	mock := newMockDynamo()
	store := NewStore(mock, "orders")
	seedCart(t, mock, "guest", 1)

	idem := map[string]interface{}{
		"idempotency_key": "key-1",
		"status":          "IN_PROGRESS",
		"order_id":        "ORD-2",
	}
	w := CheckoutWrite{
		Order:            testOrder("ORD-2", time.Now()),
		CartTable:        "carts",
		CartItem:         cartDoc{OwnerID: "guest", Items: []string{}, Version: 2},
		CartVersion:      1,
		IdempotencyTable: "checkout-idempotency",
		IdempotencyItem:  idem,
	}
	if err := store.CheckoutTransaction(context.Background(), w); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if _, ok := mock.tables["checkout-idempotency"]["key-1"]; !ok {
		t.Fatalf("idempotency record not stored")
	}

	// same key again: duplicate, and nothing else is written
	seedCart(t, mock, "guest", 2)
	w.Order = testOrder("ORD-3", time.Now())
	w.CartItem = cartDoc{OwnerID: "guest", Items: []string{}, Version: 3}
	w.CartVersion = 2
	err := store.CheckoutTransaction(context.Background(), w)
	if !errors.Is(err, ErrDuplicateCheckout) {
		t.Fatalf("expected ErrDuplicateCheckout, got %v", err)
	}
	if _, ok := mock.tables["orders"]["ORD-3"]; ok {
		t.Fatalf("order written despite cancelled transaction")
	}
}

func TestCheckoutTransaction_StaleCartVersion(t *testing.T) {
	mock := newMockDynamo()
	store := NewStore(mock, "orders")
	seedCart(t, mock, "guest", 5)

	err := store.CheckoutTransaction(context.Background(), CheckoutWrite{
		Order:       testOrder("ORD-4", time.Now()),
		CartTable:   "carts",
		CartItem:    cartDoc{OwnerID: "guest", Items: []string{}, Version: 3},
		CartVersion: 2, // stale: stored cart is at version 5
	})
	if !errors.Is(err, ErrCartConflict) {
		t.Fatalf("expected ErrCartConflict, got %v", err)
	}

	// nothing committed: no order, cart untouched
	if _, ok := mock.tables["orders"]["ORD-4"]; ok {
		t.Fatalf("order written despite cancelled transaction")
	}
	var storedCart cartDoc
	if err := attributevalue.UnmarshalMap(mock.tables["carts"]["guest"], &storedCart); err != nil {
		t.Fatalf("unmarshal cart: %v", err)
	}
	if storedCart.Version != 5 || len(storedCart.Items) != 1 {
		t.Fatalf("cart modified by failed transaction: %+v", storedCart)
	}
}

func TestUpdateStatus(t *testing.T) {
	mock := newMockDynamo()
	store := NewStore(mock, "orders")
	seedCart(t, mock, "guest", 1)

	if err := store.CheckoutTransaction(context.Background(), CheckoutWrite{
		Order:       testOrder("ORD-5", time.Now()),
		CartTable:   "carts",
		CartItem:    cartDoc{OwnerID: "guest", Version: 2},
		CartVersion: 1,
	}); err != nil {
		t.Fatalf("seed order: %v", err)
	}

	// pending -> processing succeeds
	if err := store.UpdateStatus(context.Background(), "ORD-5", StatusPending, StatusProcessing); err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	// pending -> cancelled now fails the condition (current is processing)
	err := store.UpdateStatus(context.Background(), "ORD-5", StatusPending, StatusCancelled)
	if !errors.Is(err, ErrStatusMismatch) {
		t.Fatalf("expected ErrStatusMismatch, got %v", err)
	}

	// delivered -> pending is not a legal transition at all
	if err := store.UpdateStatus(context.Background(), "ORD-5", StatusDelivered, StatusPending); err == nil {
		t.Fatalf("expected illegal transition error")
	}
}

func TestList_NewestFirstCapped(t *testing.T) {
	mock := newMockDynamo()
	store := NewStore(mock, "orders")

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		seedCart(t, mock, "guest", int64(i+1))
		o := testOrder(fmt.Sprintf("ORD-L%02d", i), base.Add(time.Duration(i)*time.Minute))
		if err := store.CheckoutTransaction(context.Background(), CheckoutWrite{
			Order:       o,
			CartTable:   "carts",
			CartItem:    cartDoc{OwnerID: "guest", Version: int64(i + 2)},
			CartVersion: int64(i + 1),
		}); err != nil {
			t.Fatalf("seed order %d: %v", i, err)
		}
	}

	got, err := store.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != DefaultListLimit {
		t.Fatalf("expected %d orders, got %d", DefaultListLimit, len(got))
	}
	if got[0].OrderID != "ORD-L11" {
		t.Fatalf("expected newest first, got %s", got[0].OrderID)
	}
	for i := 1; i < len(got); i++ {
		if got[i].CreatedAt.After(got[i-1].CreatedAt) {
			t.Fatalf("orders not sorted newest first at index %d", i)
		}
	}
}

func TestGet_Missing(t *testing.T) {
	store := NewStore(newMockDynamo(), "orders")
	got, err := store.Get(context.Background(), "ORD-NOPE")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing order, got %+v", got)
	}
}
