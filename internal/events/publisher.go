package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"luxe-storefront/internal/domain"
)

// Publisher announces placed orders.
type Publisher interface {
	OrderPlaced(ctx context.Context, o domain.Order) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) OrderPlaced(context.Context, domain.Order) error { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher buffers events and writes them from a single goroutine so a
// slow broker never blocks checkout.
type KafkaPublisher struct {
	w        messageWriter
	producer string
	inbox    chan kafka.Message
	done     chan struct{}
	once     sync.Once
	logger   zerolog.Logger
}

func NewKafkaPublisher(brokers []string, topic, producer string, logger zerolog.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}
	return newKafkaPublisher(w, producer, 1024, logger)
}

func newKafkaPublisher(w messageWriter, producer string, buf int, logger zerolog.Logger) *KafkaPublisher {
	p := &KafkaPublisher{
		w:        w,
		producer: producer,
		inbox:    make(chan kafka.Message, buf),
		done:     make(chan struct{}),
		logger:   logger,
	}
	go p.loop()
	return p
}

// OrderPlaced enqueues the event keyed by order id. It fails only when the
// buffer is full or ctx ends first.
func (p *KafkaPublisher) OrderPlaced(ctx context.Context, o domain.Order) error {
	env, err := NewOrderPlaced(p.producer, o)
	if err != nil {
		return fmt.Errorf("build event: %w", err)
	}
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(o.ID),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.EventType)},
		},
	}
	select {
	case p.inbox <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("publish order %s: buffer full", o.ID)
	}
}

func (p *KafkaPublisher) loop() {
	defer close(p.done)
	for m := range p.inbox {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := p.w.WriteMessages(ctx, m); err != nil {
			p.logger.Error().Err(err).Str("key", string(m.Key)).Msg("publish event")
		}
		cancel()
	}
}

// Close flushes buffered events and closes the writer.
func (p *KafkaPublisher) Close() error {
	var err error
	p.once.Do(func() {
		close(p.inbox)
		<-p.done
		err = p.w.Close()
	})
	return err
}
