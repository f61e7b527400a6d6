// Command seed loads the demo product catalog into the products table.
package main

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/vibecommerce/go-cart-checkout/internal/awsx"
	"github.com/vibecommerce/go-cart-checkout/internal/catalog"
	"github.com/vibecommerce/go-cart-checkout/internal/config"
	"github.com/vibecommerce/go-cart-checkout/internal/logger"
	"github.com/vibecommerce/go-cart-checkout/internal/money"
)

type seedProduct struct {
	name        string
	price       float64
	image       string
	description string
	stock       int
	category    string
	featured    bool
}

// Demo catalog with INR pricing.
var seedProducts = []seedProduct{
	{"boAt Rockerz 450 Bluetooth Headphones", 1499, "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=500&h=500&fit=crop", "Wireless Bluetooth headphones with 15-hour battery life, soft padded ear cushions and powerful bass.", 45, "electronics", true},
	{"Noise ColorFit Pro 4 Smart Watch", 2999, "https://images.unsplash.com/photo-1523275335684-37898b6baf30?w=500&h=500&fit=crop", "1.72 inch display, 60+ sports modes, heart rate monitoring, and 7-day battery life.", 30, "electronics", true},
	{"Wildcraft Genuine Leather Wallet", 799, "https://images.unsplash.com/photo-1627123424574-724758594e93?w=500&h=500&fit=crop", "Premium quality genuine leather bi-fold wallet with multiple card slots and RFID protection.", 60, "fashion", false},
	{"Mi Power Bank 3i 20000mAh", 1799, "https://images.unsplash.com/photo-1609091839311-d5365f9ff1c5?w=500&h=500&fit=crop", "Triple output ports with 18W fast charging support. Charges iPhone 12 up to 4 times.", 50, "electronics", true},
	{"Green Soul Beast Gaming Chair", 12999, "https://images.unsplash.com/photo-1580480055273-228ff5388ef8?w=500&h=500&fit=crop", "Ergonomic gaming chair with adjustable armrests, lumbar support, and 180° recline function.", 15, "home", true},
	{"Milton Thermosteel Bottle 1000ml", 549, "https://images.unsplash.com/photo-1602143407151-7111542de6e8?w=500&h=500&fit=crop", "Double wall vacuum insulation keeps beverages hot for 24 hours and cold for 24 hours.", 80, "home", false},
	{"Cosmic Byte CB-GK-16 Gaming Keyboard", 1899, "https://images.unsplash.com/photo-1595225476474-87563907a212?w=500&h=500&fit=crop", "RGB mechanical gaming keyboard with Outemu Blue switches and anti-ghosting technology.", 35, "electronics", false},
	{"AGARO 33566 Aroma Diffuser", 1199, "https://images.unsplash.com/photo-1608571423902-eed4a5ad8108?w=500&h=500&fit=crop", "400ml ultrasonic essential oil diffuser with 7 LED color changing lights and auto shut-off.", 40, "home", false},
	{"Strauss Yoga Mat 6mm with Bag", 699, "https://images.unsplash.com/photo-1601925260368-ae2f83cf8b7f?w=500&h=500&fit=crop", "Anti-skid textured surface, extra thick NBR foam for cushioning, comes with carry bag.", 55, "sports", false},
	{"Fastrack UV Protected Sunglasses", 1499, "https://images.unsplash.com/photo-1511499767150-a48a237f0083?w=500&h=500&fit=crop", "Unisex UV400 polarized sunglasses with metal frame and stylish design.", 70, "fashion", true},
	{"Prestige Iris 750W Mixer Grinder", 3499, "https://images.unsplash.com/photo-1570222094114-d054a817e56b?w=500&h=500&fit=crop", "750W powerful motor with 3 stainless steel jars for grinding and mixing.", 25, "home", false},
	{"Cello Venice Exclusive Bottle Set", 399, "https://images.unsplash.com/photo-1584464491033-06628f3a6b7b?w=500&h=500&fit=crop", "Set of 4 BPA-free plastic water bottles (1 liter each) with leak-proof caps.", 90, "home", false},
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	zlog, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	ctx := context.Background()
	clients, err := awsx.NewClients(ctx, cfg.AWS.Region)
	if err != nil {
		zlog.Fatal("failed to init aws clients", zap.Error(err))
	}

	store := catalog.NewStore(clients.DynamoDB, cfg.Tables.Products)

	for _, sp := range seedProducts {
		p := catalog.Product{
			ID:          uuid.NewString(),
			Name:        sp.name,
			Price:       money.FromFloat(sp.price),
			Image:       sp.image,
			Description: sp.description,
			Stock:       sp.stock,
			Category:    sp.category,
			Featured:    sp.featured,
		}
		if err := store.Put(ctx, &p); err != nil {
			zlog.Fatal("failed to seed product", zap.String("name", sp.name), zap.Error(err))
		}
		zlog.Info("seeded product",
			zap.String("product_id", p.ID),
			zap.String("name", p.Name),
			zap.String("price", p.Price.String()))
	}

	zlog.Info("catalog seeded", zap.Int("products", len(seedProducts)))
}
