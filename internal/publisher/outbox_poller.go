package publisher

import (
	"context"
	"log"
	"time"

	"github.com/fjod/go_shop/internal/checkout"
	"github.com/segmentio/kafka-go"
)

const topic = "order-events"

// EventSource is the outbox slice of the checkout repository.
type EventSource interface {
	GetUnpublishedEvents(ctx context.Context, limit int) ([]*checkout.OutboxEvent, error)
	MarkEventPublished(ctx context.Context, id int64) error
}

// Writer matches kafka.Writer so tests can capture messages.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// OutboxPoller drains the order_events table into kafka. At-least-once: an
// event is marked published only after the write succeeds, so consumers must
// tolerate duplicates.
type OutboxPoller struct {
	tick      time.Duration
	batchSize int
	source    EventSource
	writer    Writer
}

func NewOutboxPoller(source EventSource, brokers ...string) *OutboxPoller {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &OutboxPoller{tick: time.Second, batchSize: 100, source: source, writer: w}
}

func (p *OutboxPoller) Close() error {
	if c, ok := p.writer.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

func (p *OutboxPoller) Run(ctx context.Context) {
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

func (p *OutboxPoller) publishPending(ctx context.Context) {
	events, err := p.source.GetUnpublishedEvents(ctx, p.batchSize)
	if err != nil {
		log.Printf("failed to fetch outbox events: %v", err)
		return
	}

	for _, event := range events {
		if errPublish := p.publish(ctx, event); errPublish != nil {
			log.Printf("failed to publish event id = %v with error %v", event.ID, errPublish)
			continue
		}
		if errMark := p.source.MarkEventPublished(ctx, event.ID); errMark != nil {
			log.Printf("failed to mark event as published id = %v with error %v", event.ID, errMark)
		}
	}
}

func (p *OutboxPoller) publish(ctx context.Context, event *checkout.OutboxEvent) error {
	msg := kafka.Message{
		Key:   []byte(event.AggregateID), // order id for per-order ordering
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}
