// Package events publishes ledger domain events to RabbitMQ. Publishing
// is best effort: a broker failure is logged, never surfaced to the
// request that triggered it. The ledger tables stay the source of truth.
package events

import (
	"context"

	"github.com/foodtrace/foodtrace-backend/pkg/logger"
	"github.com/foodtrace/foodtrace-backend/pkg/messaging"
)

// Publisher emits ledger events after their transactions commit
type Publisher struct {
	pub *messaging.Publisher
	log *logger.Logger
}

// NewPublisher creates a ledger event publisher. A nil messaging publisher
// disables event emission, which keeps the service usable without a broker.
func NewPublisher(pub *messaging.Publisher, log *logger.Logger) *Publisher {
	return &Publisher{pub: pub, log: log.WithComponent("events")}
}

func (p *Publisher) publish(ctx context.Context, eventType string, data interface{}) {
	if p == nil || p.pub == nil {
		return
	}
	if err := p.pub.Publish(ctx, eventType, data); err != nil {
		p.log.Warn().Err(err).Str("event_type", eventType).Msg("failed to publish event")
	}
}

// StockReceived emits a stock received event
func (p *Publisher) StockReceived(ctx context.Context, data messaging.StockReceivedEvent) {
	p.publish(ctx, messaging.EventStockReceived, data)
}

// SaleRecorded emits a sale recorded event
func (p *Publisher) SaleRecorded(ctx context.Context, data messaging.SaleRecordedEvent) {
	p.publish(ctx, messaging.EventSaleRecorded, data)
}

// RecipeProduced emits a recipe produced event
func (p *Publisher) RecipeProduced(ctx context.Context, data messaging.RecipeProducedEvent) {
	p.publish(ctx, messaging.EventRecipeProduced, data)
}

// LotExpired emits a lot expired event
func (p *Publisher) LotExpired(ctx context.Context, data messaging.LotExpiredEvent) {
	p.publish(ctx, messaging.EventLotExpired, data)
}

// StockAdjusted emits a stock adjusted event
func (p *Publisher) StockAdjusted(ctx context.Context, data messaging.StockAdjustedEvent) {
	p.publish(ctx, messaging.EventStockAdjusted, data)
}

// QualityRecorded emits a quality recorded event
func (p *Publisher) QualityRecorded(ctx context.Context, data messaging.QualityRecordedEvent) {
	p.publish(ctx, messaging.EventQualityRecorded, data)
}
