package dok

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	domainErrors "github.com/HannahHaeusler/labor/internal/domain/errors"
	"github.com/HannahHaeusler/labor/internal/domain/model"
	"github.com/HannahHaeusler/labor/internal/metrics"
	"github.com/HannahHaeusler/labor/internal/telemetry"
)

// ObservableClient wraps a Client with a span and metrics per lookup.
// It forwards every call; nothing is cached.
type ObservableClient struct {
	next    Client
	metrics *metrics.Metrics
}

// NewObservableClient decorates next.
func NewObservableClient(next Client, m *metrics.Metrics) *ObservableClient {
	return &ObservableClient{next: next, metrics: m}
}

// FetchOwner runs the lookup inside a client span and records its outcome and latency.
func (c *ObservableClient) FetchOwner(ctx context.Context, ownerID string) (*model.Owner, error) {
	ctx, span := telemetry.StartSpanWithKind(ctx, "dok.FetchOwner", trace.SpanKindClient, attribute.String("owner.id", ownerID))
	defer span.End()

	start := time.Now()
	owner, err := c.next.FetchOwner(ctx, ownerID)
	c.metrics.RecordOwnerLookup(outcomeOf(err), time.Since(start))

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}
	telemetry.SetSpanSuccess(span)
	return owner, nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, domainErrors.ErrOwnerNotFound):
		return metrics.OutcomeNotFound
	default:
		return metrics.OutcomeUnavailable
	}
}
