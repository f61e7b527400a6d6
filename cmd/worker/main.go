package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/vibecommerce/go-cart-checkout/internal/awsx"
	"github.com/vibecommerce/go-cart-checkout/internal/config"
	"github.com/vibecommerce/go-cart-checkout/internal/idempotency"
	"github.com/vibecommerce/go-cart-checkout/internal/logger"
	"github.com/vibecommerce/go-cart-checkout/internal/orders"
)

func main() {
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

	p := NewProcessor(
		orders.NewStore(clients.DynamoDB, cfg.Tables.Orders),
		idempotency.NewStore(clients.DynamoDB, cfg.Tables.Idempotency),
		awsx.NewMetrics(clients.CloudWatch, cfg.Metrics.Namespace),
		zlog,
	)

	// RUN_LOCAL=true simulates a single queue delivery for development.
	if cfg.Server.RunLocal {
		body := os.Getenv("LOCAL_SQS_BODY")
		if body == "" {
			body = `{"order_id":"ORD-0-LOCAL","owner_id":"guest"}`
		}
		ev := events.SQSEvent{
			Records: []events.SQSMessage{
				{MessageId: "local-1", Body: body},
			},
		}
		if err := p.Handle(context.Background(), ev); err != nil {
			zlog.Fatal("local handler error", zap.Error(err))
		}
		return
	}

	lambda.Start(p.Handle)
}
