package awsx

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Metric names emitted under the service namespace.
const (
	MetricOrdersPlaced      = "OrdersPlaced"
	MetricCheckoutConflicts = "CheckoutConflicts"
	MetricOrdersFulfilled   = "OrdersFulfilled"
)

// Metrics records operational counters in CloudWatch. All emission is
// best-effort; callers log failures and move on.
type Metrics struct {
	client    CloudWatchAPI
	namespace string
	nowFunc   func() time.Time
}

// NewMetrics returns a recorder bound to a CloudWatch namespace.
func NewMetrics(client CloudWatchAPI, namespace string) *Metrics {
	return &Metrics{
		client:    client,
		namespace: namespace,
		nowFunc:   time.Now,
	}
}

// Count emits a count-of-one datum for the named metric.
func (m *Metrics) Count(ctx context.Context, name string) error {
	now := m.nowFunc()
	value := 1.0
	input := &cloudwatch.PutMetricDataInput{
		Namespace: &m.namespace,
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: &name,
				Timestamp:  &now,
				Unit:       cwtypes.StandardUnitCount,
				Value:      &value,
			},
		},
	}
	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		return fmt.Errorf("put metric %s: %w", name, err)
	}
	return nil
}
