package outbox

import (
	"context"
	"time"

	"github.com/Tasheen2002/Security-Project/internal/repository"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	Topic     = "order-events"
	batchSize = 100
)

// messageWriter is the slice of kafka.Writer the poller needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Poller drains unpublished order events from the outbox collection to
// the broker. Publication is at-least-once: an event is marked only
// after the write succeeds, so consumers must tolerate duplicates.
type Poller struct {
	repo   repository.OutboxRepository
	writer messageWriter
	tick   time.Duration
	logger *zap.Logger
}

func NewPoller(repo repository.OutboxRepository, logger *zap.Logger, brokers ...string) *Poller {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  Topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &Poller{
		repo:   repo,
		writer: w,
		tick:   time.Second,
		logger: logger,
	}
}

func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.publishPending(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *Poller) publishPending(ctx context.Context) {
	events, err := p.repo.ListUnpublishedEvents(ctx, batchSize)
	if err != nil {
		p.logger.Error("failed to fetch outbox events", zap.Error(err))
		return
	}

	for _, event := range events {
		if err := p.publish(ctx, event); err != nil {
			p.logger.Error("failed to publish outbox event",
				zap.String("event_id", event.ID),
				zap.Error(err))
			continue
		}

		if err := p.repo.MarkEventPublished(ctx, event.ID); err != nil {
			p.logger.Error("failed to mark event published",
				zap.String("event_id", event.ID),
				zap.Error(err))
		}
	}
}

func (p *Poller) publish(ctx context.Context, event *repository.OutboxEvent) error {
	msg := kafka.Message{
		Key:   []byte(event.AggregateID), // order id keeps per-order ordering
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}

// Close flushes and closes the kafka writer if one is attached.
func (p *Poller) Close() error {
	if w, ok := p.writer.(*kafka.Writer); ok {
		return w.Close()
	}
	return nil
}
