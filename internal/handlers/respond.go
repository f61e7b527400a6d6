package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vibecommerce/go-cart-checkout/internal/cart"
	"github.com/vibecommerce/go-cart-checkout/internal/engine"
	"github.com/vibecommerce/go-cart-checkout/internal/orders"
)

// Envelope is the uniform response shape on every route.
type Envelope struct {
	Success bool        `json:"success"`
	Count   *int        `json:"count,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
	Fields  []string    `json:"fields,omitempty"`
}

func respond(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, Envelope{Success: true, Data: data, Message: message})
}

func respondList(c *gin.Context, status int, count int, data interface{}) {
	c.JSON(status, Envelope{Success: true, Count: &count, Data: data})
}

func respondError(c *gin.Context, status int, errMsg, message string) {
	c.JSON(status, Envelope{Success: false, Error: errMsg, Message: message})
}

// respondEngineError maps domain errors to HTTP statuses. Storage-driver
// details never reach the caller; anything unrecognized becomes a
// generic 500.
func respondEngineError(c *gin.Context, err error, fallback string) {
	var verr *orders.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, Envelope{
			Success: false,
			Error:   "Please provide all required user details (name, email, address)",
			Fields:  verr.Fields,
		})
	case errors.Is(err, engine.ErrProductNotFound):
		respondError(c, http.StatusNotFound, "Product not found", "")
	case errors.Is(err, engine.ErrCartNotFound):
		respondError(c, http.StatusNotFound, "Cart not found", "")
	case errors.Is(err, engine.ErrItemNotFound):
		respondError(c, http.StatusNotFound, "Item not found in cart", "")
	case errors.Is(err, engine.ErrInsufficientStock):
		respondError(c, http.StatusBadRequest, "Insufficient stock", "")
	case errors.Is(err, engine.ErrInvalidQuantity):
		respondError(c, http.StatusBadRequest, "Invalid quantity", "")
	case errors.Is(err, engine.ErrEmptyCart):
		respondError(c, http.StatusBadRequest, "Cart is empty", "")
	case errors.Is(err, cart.ErrVersionConflict), errors.Is(err, orders.ErrCartConflict):
		respondError(c, http.StatusConflict, "Cart was modified concurrently", "Please retry the request")
	default:
		respondError(c, http.StatusInternalServerError, fallback, "")
	}
}
