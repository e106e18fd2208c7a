package events

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shareit-platform/service-booking/internal/platform/domain"
	"github.com/shareit-platform/service-booking/internal/platform/kafka"
	"github.com/shareit-platform/service-booking/internal/proto/events"
)

// UserSink applies users announced on the catalog topic.
type UserSink interface {
	UpsertFromCatalog(ctx context.Context, evt events.UserRegisteredEvent) error
}

// ItemSink applies items announced on the catalog topic.
type ItemSink interface {
	UpsertFromCatalog(ctx context.Context, evt events.ItemUpsertedEvent) error
}

// CatalogEventConsumer keeps the local user and item read model in step with
// the catalog topic.
type CatalogEventConsumer struct {
	consumer *kafka.Consumer
	users    UserSink
	items    ItemSink
	logger   *zap.Logger
}

// NewCatalogEventConsumer creates a new CatalogEventConsumer.
func NewCatalogEventConsumer(
	brokers []string,
	groupID string,
	users UserSink,
	items ItemSink,
	logger *zap.Logger,
) *CatalogEventConsumer {
	return &CatalogEventConsumer{
		consumer: kafka.NewConsumer(brokers, groupID, events.TopicCatalogEvents, logger),
		users:    users,
		items:    items,
		logger:   logger,
	}
}

// Start begins consuming catalog events. This blocks until the context is cancelled.
func (c *CatalogEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *CatalogEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *CatalogEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from catalog topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case events.UserRegistered:
		var evt events.UserRegisteredEvent
		if err := cloudEvent.ParseData(&evt); err != nil {
			c.logger.Error("failed to parse UserRegisteredEvent data", zap.Error(err))
			return nil
		}
		return c.settle(cloudEvent, c.users.UpsertFromCatalog(ctx, evt))

	case events.ItemUpserted:
		var evt events.ItemUpsertedEvent
		if err := cloudEvent.ParseData(&evt); err != nil {
			c.logger.Error("failed to parse ItemUpsertedEvent data", zap.Error(err))
			return nil
		}
		return c.settle(cloudEvent, c.items.UpsertFromCatalog(ctx, evt))

	default:
		c.logger.Debug("ignoring unhandled catalog event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

// settle decides whether a failed upsert is worth redelivering. Events the
// domain rejects are dropped; storage failures are returned.
func (c *CatalogEventConsumer) settle(evt kafka.CloudEvent, err error) error {
	if err == nil {
		c.logger.Debug("catalog event applied",
			zap.String("type", evt.Type),
			zap.String("subject", evt.Subject),
		)
		return nil
	}

	if _, classified := domain.KindOf(err); classified {
		c.logger.Warn("dropping rejected catalog event",
			zap.String("type", evt.Type),
			zap.String("subject", evt.Subject),
			zap.Error(err),
		)
		return nil
	}
	return err
}
