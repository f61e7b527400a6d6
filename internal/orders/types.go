package orders

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/vibecommerce/go-cart-checkout/internal/money"
)

// Order statuses. Only the status field may change after creation.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// transitions is the legal status graph: orders move forward through
// fulfillment and can be cancelled until they ship.
var transitions = map[string][]string{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// CanTransition reports whether from -> to is a legal status change.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// LineItem is an immutable snapshot of a cart line at checkout time.
// Product name and image are copied in, not referenced, because the
// catalog entry may change or disappear later.
type LineItem struct {
	ProductID string      `dynamodbav:"product_id" json:"productId"`
	Name      string      `dynamodbav:"name" json:"name"`
	Image     string      `dynamodbav:"image" json:"image"`
	Quantity  int         `dynamodbav:"quantity" json:"quantity"`
	UnitPrice money.Money `dynamodbav:"unit_price" json:"unitPrice"`
	LineTotal money.Money `dynamodbav:"line_total" json:"lineTotal"`
}

// Customer is the buyer information captured at checkout.
type Customer struct {
	Name    string `dynamodbav:"name" json:"name"`
	Email   string `dynamodbav:"email" json:"email"`
	Address string `dynamodbav:"address" json:"address"`
}

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// ValidationError reports the customer fields that are missing or
// malformed at checkout.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid customer details: " + strings.Join(e.Fields, ", ")
}

// Validate checks that name, email and address are present and the email
// has a basic local@domain shape. Returns nil when the customer is valid.
func (c Customer) Validate() *ValidationError {
	var fields []string
	if strings.TrimSpace(c.Name) == "" {
		fields = append(fields, "name")
	}
	if strings.TrimSpace(c.Email) == "" || !emailPattern.MatchString(c.Email) {
		fields = append(fields, "email")
	}
	if strings.TrimSpace(c.Address) == "" {
		fields = append(fields, "address")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Order is the immutable record created from a cart at checkout. Line
// items, customer and the money fields never change after creation; only
// Status transitions.
type Order struct {
	OrderID   string      `dynamodbav:"order_id" json:"orderId"` // PK
	OwnerID   string      `dynamodbav:"owner_id" json:"ownerId"`
	Items     []LineItem  `dynamodbav:"items" json:"items"`
	Customer  Customer    `dynamodbav:"customer" json:"customer"`
	SubTotal  money.Money `dynamodbav:"sub_total" json:"subTotal"`
	Tax       money.Money `dynamodbav:"tax" json:"tax"`
	Total     money.Money `dynamodbav:"total" json:"total"`
	Status    string      `dynamodbav:"status" json:"status"`
	CreatedAt time.Time   `dynamodbav:"created_at" json:"createdAt"`
	UpdatedAt time.Time   `dynamodbav:"updated_at" json:"updatedAt"`
}

// NewOrderID builds a human-readable globally unique order id of the
// form ORD-<unix millis>-<8 char suffix> from the given entropy string.
func NewOrderID(now time.Time, entropy string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(entropy, "-", ""))
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), suffix)
}
