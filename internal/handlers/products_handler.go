package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vibecommerce/go-cart-checkout/internal/catalog"
	"github.com/vibecommerce/go-cart-checkout/internal/money"
	"github.com/vibecommerce/go-cart-checkout/internal/validation"
)

func registerProductRoutes(r *gin.Engine, cfg Config, v *validatorv10.Validate, log *zap.Logger) {
	r.GET("/products", func(c *gin.Context) {
		ctx := c.Request.Context()

		filter := catalog.Filter{
			Search:   c.Query("search"),
			Category: c.Query("category"),
		}
		if filter.Category == "all" {
			filter.Category = ""
		}
		if raw := c.Query("minPrice"); raw != "" {
			m, err := money.FromString(raw)
			if err != nil {
				respondError(c, http.StatusBadRequest, "Invalid minPrice", "")
				return
			}
			filter.MinPrice = &m
		}
		if raw := c.Query("maxPrice"); raw != "" {
			m, err := money.FromString(raw)
			if err != nil {
				respondError(c, http.StatusBadRequest, "Invalid maxPrice", "")
				return
			}
			filter.MaxPrice = &m
		}

		products, err := cfg.Catalog.List(ctx, filter)
		if err != nil {
			log.Error("list products failed", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "Failed to fetch products", "")
			return
		}
		if products == nil {
			products = []catalog.Product{}
		}
		respondList(c, http.StatusOK, len(products), products)
	})

	r.GET("/products/:id", func(c *gin.Context) {
		product, err := cfg.Catalog.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			log.Error("get product failed", zap.String("product_id", c.Param("id")), zap.Error(err))
			respondError(c, http.StatusInternalServerError, "Failed to fetch product", "")
			return
		}
		if product == nil {
			respondError(c, http.StatusNotFound, "Product not found", "")
			return
		}
		respond(c, http.StatusOK, product, "")
	})

	// seeding/admin path; not part of the shopper flow
	r.POST("/products", func(c *gin.Context) {
		var req validation.CreateProductRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		id := req.ID
		if id == "" {
			id = uuid.NewString()
		}
		product := &catalog.Product{
			ID:          id,
			Name:        req.Name,
			Price:       money.FromFloat(req.Price),
			Image:       req.Image,
			Description: req.Description,
			Stock:       req.Stock,
			Category:    req.Category,
			Featured:    req.Featured,
		}
		if err := cfg.Catalog.Put(c.Request.Context(), product); err != nil {
			log.Error("create product failed", zap.Error(err))
			respondError(c, http.StatusBadRequest, "Failed to create product", "")
			return
		}
		respond(c, http.StatusCreated, product, "")
	})
}
