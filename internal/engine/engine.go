// Package engine implements the cart-to-order transition: it owns every
// cart mutation and the checkout that turns a mutable cart into an
// immutable order.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vibecommerce/go-cart-checkout/internal/cart"
	"github.com/vibecommerce/go-cart-checkout/internal/catalog"
	"github.com/vibecommerce/go-cart-checkout/internal/idempotency"
	"github.com/vibecommerce/go-cart-checkout/internal/orders"
)

// EstimatedDeliveryWindow is added to the checkout time for the derived
// estimatedDelivery field on receipts. Not persisted.
const EstimatedDeliveryWindow = 7 * 24 * time.Hour

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrCartNotFound      = errors.New("cart not found")
	ErrItemNotFound      = errors.New("item not found in cart")
	ErrEmptyCart         = errors.New("cart is empty")
)

// CatalogStore is the read-only product lookup the engine needs.
type CatalogStore interface {
	Get(ctx context.Context, productID string) (*catalog.Product, error)
}

// CartStore persists cart documents with optimistic version checks.
type CartStore interface {
	Get(ctx context.Context, ownerID string) (*cart.Cart, error)
	Save(ctx context.Context, c *cart.Cart) error
}

// OrderStore executes the atomic checkout write.
type OrderStore interface {
	CheckoutTransaction(ctx context.Context, w orders.CheckoutWrite) error
}

// Config groups the engine's dependencies.
type Config struct {
	Catalog CatalogStore
	Carts   CartStore
	Orders  OrderStore

	// Table names threaded into the checkout transaction.
	CartTable        string
	IdempotencyTable string
	IdempotencyTTL   time.Duration

	Logger *zap.Logger
}

// Engine is the cart-order transition engine. Safe for concurrent use;
// per-owner serialization comes from the cart store's version checks,
// not from locking here.
type Engine struct {
	catalog CatalogStore
	carts   CartStore
	orders  OrderStore

	cartTable        string
	idempotencyTable string
	idempotencyTTL   time.Duration

	log     *zap.Logger
	nowFunc func() time.Time
	newID   func() string
}

// New builds an Engine from the config.
func New(cfg Config) *Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		catalog:          cfg.Catalog,
		carts:            cfg.Carts,
		orders:           cfg.Orders,
		cartTable:        cfg.CartTable,
		idempotencyTable: cfg.IdempotencyTable,
		idempotencyTTL:   cfg.IdempotencyTTL,
		log:              log,
		nowFunc:          time.Now,
		newID:            uuid.NewString,
	}
}

// GetCart returns the owner's cart, or a synthesized empty cart if none
// exists yet. Never fails on a missing cart.
func (e *Engine) GetCart(ctx context.Context, ownerID string) (*cart.Cart, error) {
	c, err := e.carts.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		empty := cart.New(ownerID, e.nowFunc())
		empty.Recompute()
		return empty, nil
	}
	return c, nil
}

// AddItem adds quantity units of the product to the owner's cart,
// creating the cart lazily on first use. An existing line for the same
// product is merged, not duplicated: its quantity grows by the requested
// amount and its unit price is re-derived from the current catalog price.
//
// The stock check uses the requested quantity only, not the cumulative
// quantity after the merge, matching the documented lenient policy.
func (e *Engine) AddItem(ctx context.Context, ownerID, productID string, quantity int) (*cart.Cart, error) {
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	product, err := e.catalog.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if product.Stock < quantity {
		return nil, ErrInsufficientStock
	}

	c, err := e.carts.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		c = cart.New(ownerID, e.nowFunc())
	}

	if existing := c.FindByProduct(productID); existing != nil {
		existing.Quantity += quantity
		existing.UnitPrice = product.Price
		existing.LineTotal = product.Price.MulInt(int64(existing.Quantity))
	} else {
		c.Items = append(c.Items, cart.LineItem{
			ID:        e.newID(),
			ProductID: product.ID,
			Name:      product.Name,
			Image:     product.Image,
			Quantity:  quantity,
			UnitPrice: product.Price,
			LineTotal: product.Price.MulInt(int64(quantity)),
		})
	}
	c.Recompute()

	if err := e.carts.Save(ctx, c); err != nil {
		return nil, err
	}
	e.log.Debug("item added to cart",
		zap.String("owner_id", ownerID),
		zap.String("product_id", productID),
		zap.Int("quantity", quantity))
	return c, nil
}

// UpdateItemQuantity sets the line item's quantity and rederives its
// line total from the pinned unit price. Stock is not re-checked here;
// only AddItem validates stock.
func (e *Engine) UpdateItemQuantity(ctx context.Context, ownerID, itemID string, quantity int) (*cart.Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	c, err := e.carts.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCartNotFound
	}

	item := c.FindItem(itemID)
	if item == nil {
		return nil, ErrItemNotFound
	}
	item.Quantity = quantity
	item.LineTotal = item.UnitPrice.MulInt(int64(quantity))
	c.Recompute()

	if err := e.carts.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// RemoveItem drops the line item from the cart. An unknown item id is a
// no-op filter, not an error; only a missing cart fails.
func (e *Engine) RemoveItem(ctx context.Context, ownerID, itemID string) (*cart.Cart, error) {
	c, err := e.carts.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCartNotFound
	}

	kept := c.Items[:0]
	for _, it := range c.Items {
		if it.ID != itemID {
			kept = append(kept, it)
		}
	}
	c.Items = kept
	c.Recompute()

	if err := e.carts.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ClearCart empties the owner's cart. Idempotent: a missing cart is
// reported as an already-empty one, not an error. Carts are never
// hard-deleted.
func (e *Engine) ClearCart(ctx context.Context, ownerID string) (*cart.Cart, error) {
	c, err := e.carts.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		empty := cart.New(ownerID, e.nowFunc())
		empty.Recompute()
		return empty, nil
	}

	c.Items = []cart.LineItem{}
	c.Recompute()
	if err := e.carts.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Receipt is the checkout result: the persisted order plus the derived
// delivery estimate, which is computed at response time and never stored.
type Receipt struct {
	Order             orders.Order `json:"order"`
	EstimatedDelivery time.Time    `json:"estimatedDelivery"`
}

// Checkout turns the owner's cart into an immutable order. The order
// put, the cart clear and (when idempotencyKey is non-empty) the
// idempotency record commit in one storage transaction: a failure leaves
// the cart untouched and no order behind. Concurrent checkouts of the
// same cart resolve to exactly one order; the loser sees
// orders.ErrCartConflict.
func (e *Engine) Checkout(ctx context.Context, ownerID string, customer orders.Customer, idempotencyKey string) (*Receipt, error) {
	if verr := customer.Validate(); verr != nil {
		return nil, verr
	}

	c, err := e.carts.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if c == nil || len(c.Items) == 0 {
		return nil, ErrEmptyCart
	}

	now := e.nowFunc()
	order := orders.Order{
		OrderID:   orders.NewOrderID(now, e.newID()),
		OwnerID:   ownerID,
		Items:     snapshotItems(c.Items),
		Customer:  customer,
		SubTotal:  c.SubTotal,
		Tax:       c.Tax,
		Total:     c.Total,
		Status:    orders.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	w := orders.CheckoutWrite{
		Order:       order,
		CartTable:   e.cartTable,
		CartItem:    c.Cleared(now),
		CartVersion: c.Version,
	}
	if idempotencyKey != "" {
		w.IdempotencyTable = e.idempotencyTable
		w.IdempotencyItem = idempotency.NewRecord(idempotencyKey, order.OrderID, now, e.idempotencyTTL)
	}

	if err := e.orders.CheckoutTransaction(ctx, w); err != nil {
		return nil, err
	}

	e.log.Info("checkout committed",
		zap.String("owner_id", ownerID),
		zap.String("order_id", order.OrderID),
		zap.String("total", order.Total.String()))

	return &Receipt{
		Order:             order,
		EstimatedDelivery: now.Add(EstimatedDeliveryWindow),
	}, nil
}

// snapshotItems deep-copies cart lines into order lines so the order
// shares no state with the live cart.
func snapshotItems(items []cart.LineItem) []orders.LineItem {
	out := make([]orders.LineItem, 0, len(items))
	for _, it := range items {
		out = append(out, orders.LineItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Image:     it.Image,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: it.LineTotal,
		})
	}
	return out
}
