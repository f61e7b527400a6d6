package main

import (
	"context"
	"log"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/vibecommerce/go-cart-checkout/internal/awsx"
	"github.com/vibecommerce/go-cart-checkout/internal/cart"
	"github.com/vibecommerce/go-cart-checkout/internal/catalog"
	"github.com/vibecommerce/go-cart-checkout/internal/config"
	"github.com/vibecommerce/go-cart-checkout/internal/engine"
	"github.com/vibecommerce/go-cart-checkout/internal/handlers"
	"github.com/vibecommerce/go-cart-checkout/internal/idempotency"
	"github.com/vibecommerce/go-cart-checkout/internal/logger"
	"github.com/vibecommerce/go-cart-checkout/internal/orders"
)

func setupRouter(cfg handlers.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterRoutes(r, cfg)

	return r
}

func main() {
	// .env is optional; real deployments configure through the environment.
	_ = godotenv.Load()

	cfg := config.Load()

	zlog, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	clients, err := awsx.NewClients(context.Background(), cfg.AWS.Region)
	if err != nil {
		zlog.Fatal("failed to init aws clients", zap.Error(err))
	}

	catalogStore := catalog.NewStore(clients.DynamoDB, cfg.Tables.Products)
	cartStore := cart.NewStore(clients.DynamoDB, cfg.Tables.Carts)
	orderStore := orders.NewStore(clients.DynamoDB, cfg.Tables.Orders)
	idemStore := idempotency.NewStore(clients.DynamoDB, cfg.Tables.Idempotency)

	eng := engine.New(engine.Config{
		Catalog:          catalogStore,
		Carts:            cartStore,
		Orders:           orderStore,
		CartTable:        cartStore.TableName(),
		IdempotencyTable: cfg.Tables.Idempotency,
		IdempotencyTTL:   cfg.Checkout.IdempotencyTTL,
		Logger:           zlog,
	})

	handlerCfg := handlers.Config{
		Engine:      eng,
		Catalog:     catalogStore,
		Orders:      orderStore,
		Idempotency: idemStore,
		Metrics:     awsx.NewMetrics(clients.CloudWatch, cfg.Metrics.Namespace),
		Logger:      zlog,
	}
	if cfg.Queue.OrdersQueueURL != "" {
		handlerCfg.Publisher = awsx.NewPublisher(clients.SQS, cfg.Queue.OrdersQueueURL)
	}

	r := setupRouter(handlerCfg)

	// RUN_LOCAL=true runs a plain HTTP server for development.
	if cfg.Server.RunLocal {
		addr := ":" + cfg.Server.Port
		zlog.Info("running local server", zap.String("addr", addr))
		if err := r.Run(addr); err != nil {
			zlog.Fatal("failed to run local server", zap.Error(err))
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
