package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Type string

const (
	StakeOpened      Type = "stake.opened"
	StakeRefilled    Type = "stake.refilled"
	StakeTransferred Type = "stake.transferred"
)

// Event is published after the ledger change it describes has been committed.
type Event struct {
	Type           Type      `json:"type"`
	PurchaseID     int       `json:"purchase_id"`
	ProductID      int       `json:"product_id"`
	UserID         int       `json:"user_id"`
	CounterpartyID int       `json:"counterparty_id,omitempty"`
	Quantity       int       `json:"quantity"`
	Amount         string    `json:"amount"`
	OccurredAt     time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		Async:        true,
		RequiredAcks: kafka.RequireOne,
	}
	return &KafkaPublisher{writer: writer}
}

// New returns a Kafka publisher, or a no-op one when no brokers are configured.
func New(brokers []string, topic string) Publisher {
	if len(brokers) == 0 {
		zap.L().Info("kafka brokers not configured, ledger events disabled")
		return Noop{}
	}
	return NewKafkaPublisher(brokers, topic)
}

// Publish keys messages by purchase so events of one stake stay ordered.
func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(strconv.Itoa(e.PurchaseID)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(e.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		zap.L().Error("failed to send kafka message", zap.String("type", string(e.Type)), zap.Error(err))
		return err
	}
	zap.L().Debug("kafka message sent", zap.String("type", string(e.Type)), zap.Int("purchase_id", e.PurchaseID))
	return nil
}

func (p *KafkaPublisher) Close() error {
	if err := p.writer.Close(); err != nil {
		zap.L().Error("failed to close kafka writer", zap.Error(err))
		return err
	}
	return nil
}

type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }

func (Noop) Close() error { return nil }
