// Package handlers binds the REST surface to the engine and stores.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vibecommerce/go-cart-checkout/internal/awsx"
	"github.com/vibecommerce/go-cart-checkout/internal/catalog"
	"github.com/vibecommerce/go-cart-checkout/internal/engine"
	"github.com/vibecommerce/go-cart-checkout/internal/idempotency"
	"github.com/vibecommerce/go-cart-checkout/internal/orders"
	"github.com/vibecommerce/go-cart-checkout/internal/validation"
)

// DefaultOwnerID is used when a request carries no owner header. The
// demo frontend is a single guest session; the storage layer still keys
// everything by the explicit owner id.
const DefaultOwnerID = "guest"

// OwnerHeader optionally overrides the owner identity per request.
const OwnerHeader = "X-Owner-Id"

// Config groups dependencies for the HTTP handlers.
type Config struct {
	Engine      *engine.Engine
	Catalog     *catalog.Store
	Orders      *orders.Store
	Idempotency *idempotency.Store
	Publisher   *awsx.Publisher
	Metrics     *awsx.Metrics
	Logger      *zap.Logger
}

// RegisterRoutes registers the full REST surface on the router.
func RegisterRoutes(r *gin.Engine, cfg Config) {
	v := validation.New()
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Vibe Commerce API",
			"version": "1.0.0",
			"endpoints": gin.H{
				"products": "/products",
				"cart":     "/cart",
				"checkout": "/checkout",
			},
		})
	})

	registerProductRoutes(r, cfg, v, log)
	registerCartRoutes(r, cfg, v, log)
	registerCheckoutRoutes(r, cfg, v, log)
}

func ownerID(c *gin.Context) string {
	if owner := c.GetHeader(OwnerHeader); owner != "" {
		return owner
	}
	return DefaultOwnerID
}
