package validation

// AddItemRequest is the payload for POST /cart. Quantity is optional and
// defaults to 1; when present it must be at least 1.
type AddItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  *int   `json:"quantity,omitempty" validate:"omitempty,min=1"`
}

// QuantityOrDefault returns the requested quantity, defaulting to 1.
func (r AddItemRequest) QuantityOrDefault() int {
	if r.Quantity == nil {
		return 1
	}
	return *r.Quantity
}

// UpdateQuantityRequest is the payload for PUT /cart/{itemId}.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// UserDetails is the buyer block on a checkout request.
type UserDetails struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required"`
	Address string `json:"address" validate:"required"`
}

// CheckoutRequest is the payload for POST /checkout. The email shape is
// enforced by a struct-level rule registered in New.
type CheckoutRequest struct {
	UserDetails UserDetails `json:"userDetails" validate:"required"`
}

// CreateProductRequest is the payload for POST /products (seeding/admin).
type CreateProductRequest struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`
	Image       string  `json:"image" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Stock       int     `json:"stock" validate:"gte=0"`
	Category    string  `json:"category" validate:"required,oneof=electronics fashion home books sports other"`
	Featured    bool    `json:"featured"`
}
