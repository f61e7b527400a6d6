package awsx

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// OrderPlacedEvent is the payload sent from the API to the fulfillment
// worker queue when a checkout commits.
type OrderPlacedEvent struct {
	OrderID        string `json:"order_id"`
	OwnerID        string `json:"owner_id"`
	Total          string `json:"total"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
	CorrelationID  string `json:"correlation_id,omitempty"`
}

// Publisher wraps an SQS client and a queue URL.
type Publisher struct {
	SQS      SQSAPI
	QueueURL string
}

// NewPublisher returns a Publisher bound to a queue URL.
func NewPublisher(sqsClient SQSAPI, queueURL string) *Publisher {
	return &Publisher{
		SQS:      sqsClient,
		QueueURL: queueURL,
	}
}

// PublishOrderPlaced sends the order-placed event. The order id and
// idempotency key are mirrored into message attributes so consumers can
// filter without parsing the body.
func (p *Publisher) PublishOrderPlaced(ctx context.Context, ev OrderPlacedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal order placed event: %w", err)
	}

	attrs := map[string]sqstypes.MessageAttributeValue{
		"order_id": {
			DataType:    awsString("String"),
			StringValue: awsString(ev.OrderID),
		},
	}
	if ev.IdempotencyKey != "" {
		attrs["idempotency_key"] = sqstypes.MessageAttributeValue{
			DataType:    awsString("String"),
			StringValue: awsString(ev.IdempotencyKey),
		}
	}

	input := &sqs.SendMessageInput{
		QueueUrl:          &p.QueueURL,
		MessageBody:       awsString(string(body)),
		MessageAttributes: attrs,
	}

	if _, err := p.SQS.SendMessage(ctx, input); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func awsString(s string) *string { return &s }
