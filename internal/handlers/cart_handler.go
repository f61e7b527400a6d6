package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/vibecommerce/go-cart-checkout/internal/validation"
)

func registerCartRoutes(r *gin.Engine, cfg Config, v *validatorv10.Validate, log *zap.Logger) {
	r.GET("/cart", func(c *gin.Context) {
		result, err := cfg.Engine.GetCart(c.Request.Context(), ownerID(c))
		if err != nil {
			log.Error("get cart failed", zap.String("owner_id", ownerID(c)), zap.Error(err))
			respondError(c, http.StatusInternalServerError, "Failed to fetch cart", "")
			return
		}
		respond(c, http.StatusOK, result, "")
	})

	r.POST("/cart", func(c *gin.Context) {
		var req validation.AddItemRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		result, err := cfg.Engine.AddItem(c.Request.Context(), ownerID(c), req.ProductID, req.QuantityOrDefault())
		if err != nil {
			respondEngineError(c, err, "Failed to add item to cart")
			return
		}
		respond(c, http.StatusCreated, result, "Item added to cart")
	})

	r.PUT("/cart/:itemId", func(c *gin.Context) {
		var req validation.UpdateQuantityRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		result, err := cfg.Engine.UpdateItemQuantity(c.Request.Context(), ownerID(c), c.Param("itemId"), req.Quantity)
		if err != nil {
			respondEngineError(c, err, "Failed to update cart")
			return
		}
		respond(c, http.StatusOK, result, "Cart updated")
	})

	r.DELETE("/cart/:itemId", func(c *gin.Context) {
		result, err := cfg.Engine.RemoveItem(c.Request.Context(), ownerID(c), c.Param("itemId"))
		if err != nil {
			respondEngineError(c, err, "Failed to remove item")
			return
		}
		respond(c, http.StatusOK, result, "Item removed from cart")
	})

	r.DELETE("/cart", func(c *gin.Context) {
		result, err := cfg.Engine.ClearCart(c.Request.Context(), ownerID(c))
		if err != nil {
			respondEngineError(c, err, "Failed to clear cart")
			return
		}
		message := "Cart cleared"
		if len(result.Items) == 0 && result.Version == 0 {
			message = "Cart is already empty"
		}
		respond(c, http.StatusOK, result, message)
	})
}
