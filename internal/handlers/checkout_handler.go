package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/vibecommerce/go-cart-checkout/internal/awsx"
	"github.com/vibecommerce/go-cart-checkout/internal/idempotency"
	"github.com/vibecommerce/go-cart-checkout/internal/orders"
	"github.com/vibecommerce/go-cart-checkout/internal/validation"
)

// IdempotencyHeader carries the optional client-chosen checkout key.
const IdempotencyHeader = "Idempotency-Key"

func registerCheckoutRoutes(r *gin.Engine, cfg Config, v *validatorv10.Validate, log *zap.Logger) {
	r.POST("/checkout", func(c *gin.Context) {
		var req validation.CheckoutRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		owner := ownerID(c)
		idemKey := c.GetHeader(IdempotencyHeader)
		customer := orders.Customer{
			Name:    req.UserDetails.Name,
			Email:   req.UserDetails.Email,
			Address: req.UserDetails.Address,
		}

		// A known key is replayed before any cart work: the canonical
		// retry arrives after the first checkout committed and cleared
		// the cart, so the empty-cart check must not run first.
		if idemKey != "" && cfg.Idempotency != nil {
			rec, err := cfg.Idempotency.Get(c.Request.Context(), idemKey)
			if err != nil {
				log.Warn("idempotency lookup failed, proceeding with checkout",
					zap.String("idempotency_key", idemKey), zap.Error(err))
			}
			if rec != nil {
				serveStoredCheckout(c, rec)
				return
			}
		}

		receipt, err := cfg.Engine.Checkout(c.Request.Context(), owner, customer, idemKey)
		if err != nil {
			if errors.Is(err, orders.ErrDuplicateCheckout) && idemKey != "" {
				// Lost the race to a concurrent request with the same key.
				replayCheckout(c, cfg, idemKey, log)
				return
			}
			if errors.Is(err, orders.ErrCartConflict) && cfg.Metrics != nil {
				if merr := cfg.Metrics.Count(c.Request.Context(), awsx.MetricCheckoutConflicts); merr != nil {
					log.Warn("metric emit failed", zap.String("metric", awsx.MetricCheckoutConflicts), zap.Error(merr))
				}
			}
			respondEngineError(c, err, "Checkout failed")
			return
		}

		body := Envelope{Success: true, Data: receipt, Message: "Order placed successfully"}
		c.JSON(http.StatusCreated, body)

		// Everything past the transaction is best-effort; the order is
		// already committed and the response already chosen. Detached
		// from the request context so a client disconnect right after
		// the 201 does not cancel it.
		ctx := context.WithoutCancel(c.Request.Context())
		if cfg.Publisher != nil {
			ev := awsx.OrderPlacedEvent{
				OrderID:        receipt.Order.OrderID,
				OwnerID:        owner,
				Total:          receipt.Order.Total.String(),
				IdempotencyKey: idemKey,
			}
			if perr := cfg.Publisher.PublishOrderPlaced(ctx, ev); perr != nil {
				log.Warn("order placed event publish failed",
					zap.String("order_id", receipt.Order.OrderID), zap.Error(perr))
			}
		}
		if cfg.Metrics != nil {
			if merr := cfg.Metrics.Count(ctx, awsx.MetricOrdersPlaced); merr != nil {
				log.Warn("metric emit failed", zap.String("metric", awsx.MetricOrdersPlaced), zap.Error(merr))
			}
		}
		if idemKey != "" && cfg.Idempotency != nil {
			raw, merr := json.Marshal(body)
			if merr == nil {
				merr = cfg.Idempotency.MarkDone(ctx, idemKey, string(raw), http.StatusCreated)
			}
			if merr != nil {
				log.Warn("idempotency mark done failed", zap.String("idempotency_key", idemKey), zap.Error(merr))
			}
		}
	})

	r.GET("/checkout/orders", func(c *gin.Context) {
		list, err := cfg.Orders.List(c.Request.Context(), orders.DefaultListLimit)
		if err != nil {
			log.Error("list orders failed", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "Failed to fetch orders", "")
			return
		}
		if list == nil {
			list = []orders.Order{}
		}
		respondList(c, http.StatusOK, len(list), list)
	})

	r.GET("/checkout/orders/:orderId", func(c *gin.Context) {
		order, err := cfg.Orders.Get(c.Request.Context(), c.Param("orderId"))
		if err != nil {
			log.Error("get order failed", zap.String("order_id", c.Param("orderId")), zap.Error(err))
			respondError(c, http.StatusInternalServerError, "Failed to fetch order", "")
			return
		}
		if order == nil {
			respondError(c, http.StatusNotFound, "Order not found", "")
			return
		}
		respond(c, http.StatusOK, order, "")
	})
}

// replayCheckout serves a duplicate idempotency key from the stored
// record instead of creating a second order.
func replayCheckout(c *gin.Context, cfg Config, key string, log *zap.Logger) {
	if cfg.Idempotency == nil {
		respondError(c, http.StatusConflict, "Checkout already in progress for this key", "")
		return
	}
	rec, err := cfg.Idempotency.Get(c.Request.Context(), key)
	if err != nil || rec == nil {
		if err != nil {
			log.Error("idempotency lookup failed", zap.String("idempotency_key", key), zap.Error(err))
		}
		respondError(c, http.StatusConflict, "Checkout already in progress for this key", "")
		return
	}
	serveStoredCheckout(c, rec)
}

// serveStoredCheckout writes the response recorded for the key: the
// original body for DONE, a retry hint for FAILED, 202 while the first
// request has committed but not yet recorded its response.
func serveStoredCheckout(c *gin.Context, rec *idempotency.Record) {
	switch rec.Status {
	case idempotency.StatusDone:
		c.Data(rec.ResponseStatus, "application/json", []byte(rec.ResponseBody))
	case idempotency.StatusFailed:
		respondError(c, http.StatusConflict, "Previous checkout with this key failed", "Retry with a new Idempotency-Key")
	default:
		c.JSON(http.StatusAccepted, Envelope{
			Success: true,
			Message: "Checkout with this key is still being processed",
		})
	}
}
