package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

const ActivityTopic = "bookstore.activity"

type Config struct {
	Addrs []string `envconfig:"KAFKA_ADDRS"`
}

// Enabled reports whether any broker is configured.
func (c Config) Enabled() bool {
	return len(c.Addrs) > 0
}

type EventType string

const (
	UserRegistered  EventType = "user.registered"
	CartItemAdded   EventType = "cart.item_added"
	CartItemUpdated EventType = "cart.item_updated"
	CartItemRemoved EventType = "cart.item_removed"
	CartCleared     EventType = "cart.cleared"
	BookCreated     EventType = "catalog.book_created"
	BookDeleted     EventType = "catalog.book_deleted"
)

type Event struct {
	Timestamp time.Time `json:"timestamp"`
	EventType EventType `json:"eventType"`
	UserID    string    `json:"userId,omitempty"`
	BookID    string    `json:"bookId,omitempty"`
	Quantity  int       `json:"quantity,omitempty"`
}

func NewAsyncProducer(cfg Config) (sarama.AsyncProducer, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.Producer.RequiredAcks = sarama.WaitForLocal
	defaultCfg.Producer.Return.Errors = true
	defaultCfg.Producer.Retry.Max = 3

	return sarama.NewAsyncProducer(cfg.Addrs, defaultCfg)
}

// Publisher writes events to a topic without blocking the caller on broker acks.
type Publisher struct {
	producer sarama.AsyncProducer
	topic    string
	log      *zap.Logger
	done     chan struct{}
}

func NewPublisher(producer sarama.AsyncProducer, topic string, log *zap.Logger) *Publisher {
	p := &Publisher{
		producer: producer,
		topic:    topic,
		log:      log.Named("kafka"),
		done:     make(chan struct{}),
	}
	go p.drainErrors()
	return p
}

func (p *Publisher) drainErrors() {
	defer close(p.done)
	for perr := range p.producer.Errors() {
		p.log.Error("publish event", zap.String("topic", perr.Msg.Topic), zap.Error(perr.Err))
	}
}

func (p *Publisher) Publish(ctx context.Context, e Event) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(e.UserID),
		Value: sarama.ByteEncoder(data),
	}
	select {
	case p.producer.Input() <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close flushes buffered messages and waits for the error drain to finish.
func (p *Publisher) Close() error {
	p.producer.AsyncClose()
	<-p.done
	return nil
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
