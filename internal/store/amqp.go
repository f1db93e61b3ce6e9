package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/agbru/hedgesweep/internal/logging"
	"github.com/agbru/hedgesweep/internal/orchestration"
)

// ResultsExchange is the topic exchange result events are published to.
const ResultsExchange = "hedgesweep.results"

// MessageType identifies the kind of event in a Message.
type MessageType string

// MessageTypeTaskResult carries one Record.
const MessageTypeTaskResult MessageType = "task.result"

// Message is the JSON envelope of every published event.
type Message struct {
	ID        string      `json:"id"`
	Type      MessageType `json:"type"`
	Payload   any         `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// RoutingKey returns the routing key of a strategy's results, so consumers
// can bind to "result.delta" or "result.#".
func RoutingKey(strategy string) string {
	return "result." + strategy
}

// AMQPSink publishes one persistent message per task result.
type AMQPSink struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  logging.Logger
}

// NewAMQPSink dials url and declares the durable results exchange.
func NewAMQPSink(url string, logger logging.Logger) (*AMQPSink, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(
		ResultsExchange, // name
		"topic",         // type
		true,            // durable
		false,           // auto-deleted
		false,           // internal
		false,           // no-wait
		nil,             // arguments
	); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", ResultsExchange, err)
	}
	return &AMQPSink{conn: conn, channel: ch, logger: logger}, nil
}

// Write publishes every result of the run.
func (s *AMQPSink) Write(ctx context.Context, runID uuid.UUID, results orchestration.ResultSet) error {
	for _, rec := range NewRecords(runID, results) {
		msg := newResultMessage(rec, time.Now())
		body, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("marshal message: %w", err)
		}
		key := RoutingKey(rec.Strategy)
		if err := s.channel.PublishWithContext(ctx, ResultsExchange, key, false, false, amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    msg.ID,
			Timestamp:    msg.Timestamp,
			Body:         body,
		}); err != nil {
			return fmt.Errorf("publish to %s/%s: %w", ResultsExchange, key, err)
		}
		s.logger.Debug("published result", logging.String("routing_key", key), logging.String("message_id", msg.ID))
	}
	s.logger.Info("results published", logging.String("run_id", runID.String()), logging.Int("messages", len(results)))
	return nil
}

// Close closes the channel and the connection.
func (s *AMQPSink) Close() error {
	if err := s.channel.Close(); err != nil {
		s.conn.Close()
		return fmt.Errorf("close channel: %w", err)
	}
	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("close connection: %w", err)
	}
	return nil
}

func newResultMessage(rec Record, now time.Time) Message {
	return Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeTaskResult,
		Payload:   rec,
		Timestamp: now,
	}
}
