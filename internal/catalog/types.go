package catalog

import (
	"time"

	"github.com/vibecommerce/go-cart-checkout/internal/money"
)

// Product categories.
const (
	CategoryElectronics = "electronics"
	CategoryFashion     = "fashion"
	CategoryHome        = "home"
	CategoryBooks       = "books"
	CategorySports      = "sports"
	CategoryOther       = "other"
)

// Categories lists every valid product category.
var Categories = []string{
	CategoryElectronics,
	CategoryFashion,
	CategoryHome,
	CategoryBooks,
	CategorySports,
	CategoryOther,
}

// ValidCategory reports whether c is a known category.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Product is a catalog record stored in the products table. The cart and
// order paths only ever read products; writes come from the seeding/admin
// path.
type Product struct {
	ID          string      `dynamodbav:"product_id" json:"id"` // PK
	Name        string      `dynamodbav:"name" json:"name"`
	Price       money.Money `dynamodbav:"price" json:"price"`
	Image       string      `dynamodbav:"image" json:"image"`
	Description string      `dynamodbav:"description" json:"description"`
	Stock       int         `dynamodbav:"stock" json:"stock"`
	Category    string      `dynamodbav:"category" json:"category"`
	Featured    bool        `dynamodbav:"featured" json:"featured"`
	CreatedAt   time.Time   `dynamodbav:"created_at" json:"createdAt"`
	UpdatedAt   time.Time   `dynamodbav:"updated_at" json:"updatedAt"`
}

// Filter narrows a product listing. Zero values mean "no constraint".
type Filter struct {
	Search   string
	Category string
	MinPrice *money.Money
	MaxPrice *money.Money
}
