package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func seedRecord(t *testing.T, mock *simpleMock, key, orderID string) {
	t.Helper()
	item, err := attributevalue.MarshalMap(NewRecord(key, orderID, time.Now(), 48*time.Hour))
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}
	mock.table[key] = item
}

func TestGet_MarkDone_MarkFailed(t *testing.T) {
	mock := newSimpleMock()
	s := NewStore(mock, "checkout-idempotency")

	ctx := context.Background()
	key := "test-key-1"
	seedRecord(t, mock, key, "ORD-123")

	rec, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if rec == nil {
		t.Fatalf("expected record, got nil")
	}
	if rec.Status != StatusInProgress {
		t.Fatalf("expected IN_PROGRESS, got %s", rec.Status)
	}
	if rec.OrderID != "ORD-123" {
		t.Fatalf("order id mismatch")
	}

	if err := s.MarkDone(ctx, key, `{"success":true}`, 201); err != nil {
		t.Fatalf("MarkDone error: %v", err)
	}
	item := mock.table[key]
	if st, ok := item["status"].(*types.AttributeValueMemberS); !ok || st.Value != StatusDone {
		t.Fatalf("status not updated to DONE, got %+v", item["status"])
	}
	if rb, ok := item["response_body"].(*types.AttributeValueMemberS); !ok || rb.Value != `{"success":true}` {
		t.Fatalf("response_body not set correctly: %+v", item["response_body"])
	}

	if err := s.MarkFailed(ctx, key, "order cancelled before fulfillment"); err != nil {
		t.Fatalf("MarkFailed error: %v", err)
	}
	item2 := mock.table[key]
	if st, ok := item2["status"].(*types.AttributeValueMemberS); !ok || st.Value != StatusFailed {
		t.Fatalf("status not updated to FAILED, got %+v", item2["status"])
	}
	if n, ok := item2["note"].(*types.AttributeValueMemberS); !ok || n.Value != "order cancelled before fulfillment" {
		t.Fatalf("note not set, got %+v", item2["note"])
	}
}

func TestMarkDone_KeepsFirstResponse(t *testing.T) {
	mock := newSimpleMock()
	s := NewStore(mock, "checkout-idempotency")
	ctx := context.Background()
	seedRecord(t, mock, "k1", "ORD-1")

	// the checkout handler records the 201 receipt first
	if err := s.MarkDone(ctx, "k1", `{"success":true,"data":{"order":{"orderId":"ORD-1"}}}`, 201); err != nil {
		t.Fatalf("first MarkDone: %v", err)
	}
	// the fulfillment worker finalizes later with its own summary
	if err := s.MarkDone(ctx, "k1", `{"order_id":"ORD-1","status":"shipped"}`, 200); err != nil {
		t.Fatalf("second MarkDone: %v", err)
	}

	rec, err := s.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.ResponseBody != `{"success":true,"data":{"order":{"orderId":"ORD-1"}}}` {
		t.Fatalf("stored response overwritten: %s", rec.ResponseBody)
	}
	if rec.ResponseStatus != 201 {
		t.Fatalf("stored status overwritten: %d", rec.ResponseStatus)
	}
	if rec.Status != StatusDone {
		t.Fatalf("status = %s, want DONE", rec.Status)
	}
}

func TestGet_Missing(t *testing.T) {
	s := NewStore(newSimpleMock(), "checkout-idempotency")
	rec, err := s.Get(context.Background(), "no-such-key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected nil for missing key, got %+v", rec)
	}
}

func TestRecordRoundTrip(t *testing.T) {
	now := time.Now().Round(time.Second)
	rec := NewRecord("k1", "ORD-1", now, 24*time.Hour)
	m, err := attributevalue.MarshalMap(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out Record
	if err := attributevalue.UnmarshalMap(m, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.IdempotencyKey != "k1" || out.OrderID != "ORD-1" || out.Status != StatusInProgress {
		t.Fatalf("round trip mismatch: %+v", out)
	}
	if out.ExpiresAt != now.Add(24*time.Hour).Unix() {
		t.Fatalf("expires_at mismatch")
	}
}
