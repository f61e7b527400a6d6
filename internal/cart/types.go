package cart

import (
	"time"

	"github.com/vibecommerce/go-cart-checkout/internal/money"
	"github.com/vibecommerce/go-cart-checkout/internal/pricing"
)

// LineItem is one product-quantity-price tuple inside a cart. Name and
// image are copied from the catalog at add time so the cart renders
// without a second lookup. The unit price is pinned when the item is
// added (re-derived from the catalog on a merge add); it does not track
// later catalog price changes.
type LineItem struct {
	ID        string      `dynamodbav:"item_id" json:"id"`
	ProductID string      `dynamodbav:"product_id" json:"productId"`
	Name      string      `dynamodbav:"name" json:"name"`
	Image     string      `dynamodbav:"image" json:"image"`
	Quantity  int         `dynamodbav:"quantity" json:"quantity"`
	UnitPrice money.Money `dynamodbav:"unit_price" json:"unitPrice"`
	LineTotal money.Money `dynamodbav:"line_total" json:"lineTotal"`
}

// Cart is the mutable per-owner document in the carts table. The derived
// money fields are recomputed from the items on every mutation, never set
// independently. Version backs the optimistic concurrency check in Save.
type Cart struct {
	OwnerID   string      `dynamodbav:"owner_id" json:"ownerId"` // PK
	Items     []LineItem  `dynamodbav:"items" json:"items"`
	SubTotal  money.Money `dynamodbav:"sub_total" json:"subTotal"`
	Tax       money.Money `dynamodbav:"tax" json:"tax"`
	Total     money.Money `dynamodbav:"total" json:"total"`
	Version   int64       `dynamodbav:"version" json:"-"`
	CreatedAt time.Time   `dynamodbav:"created_at" json:"createdAt"`
	UpdatedAt time.Time   `dynamodbav:"updated_at" json:"updatedAt"`
}

// New returns an empty cart for the owner. Version 0 marks a cart that
// has never been persisted.
func New(ownerID string, now time.Time) *Cart {
	return &Cart{
		OwnerID:   ownerID,
		Items:     []LineItem{},
		CreatedAt: now,
	}
}

// Recompute rederives subtotal, tax and total from the current items.
func (c *Cart) Recompute() {
	lineTotals := make([]money.Money, 0, len(c.Items))
	for _, it := range c.Items {
		lineTotals = append(lineTotals, it.LineTotal)
	}
	totals := pricing.ComputeTotals(lineTotals)
	c.SubTotal = totals.SubTotal
	c.Tax = totals.Tax
	c.Total = totals.Total
}

// FindItem returns a pointer to the line item with the given id, or nil.
func (c *Cart) FindItem(itemID string) *LineItem {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return &c.Items[i]
		}
	}
	return nil
}

// FindByProduct returns a pointer to the line item for the product, or nil.
func (c *Cart) FindByProduct(productID string) *LineItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// Cleared returns the emptied successor of this cart with the version
// already bumped, for writing inside the checkout transaction.
func (c *Cart) Cleared(now time.Time) *Cart {
	cleared := New(c.OwnerID, c.CreatedAt)
	cleared.Recompute()
	cleared.Version = c.Version + 1
	cleared.UpdatedAt = now
	return cleared
}
