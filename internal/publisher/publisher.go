package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	DefaultTopic          = "storefront-orders"
	EventTypeOrderPlaced  = "order.placed"
	eventTypeHeader       = "event_type"
	defaultPublishTimeout = 5 * time.Second
)

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OrderPlacedEvent is the payload published after a successful checkout.
type OrderPlacedEvent struct {
	EventID         string             `json:"event_id"`
	EventType       string             `json:"event_type"`
	OrderID         string             `json:"order_id"`
	UserID          string             `json:"user_id"`
	Items           []domain.OrderLine `json:"items"`
	Total           float64            `json:"total"`
	Status          domain.OrderStatus `json:"status"`
	ShippingAddress string             `json:"shipping_address"`
	PlacedAt        string             `json:"placed_at"`
}

type KafkaPublisher struct {
	writer  MessageWriter
	timeout time.Duration
	logger  *slog.Logger
}

func NewKafkaPublisher(topic string, logger *slog.Logger, brokers ...string) *KafkaPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return NewPublisher(w, logger)
}

func NewPublisher(w MessageWriter, logger *slog.Logger) *KafkaPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &KafkaPublisher{writer: w, timeout: defaultPublishTimeout, logger: logger.With("component", "publisher")}
}

// OrderPlaced publishes the order keyed by its ID so events for one order keep
// their relative order.
func (p *KafkaPublisher) OrderPlaced(ctx context.Context, order domain.Order) error {
	event := OrderPlacedEvent{
		EventID:         uuid.New().String(),
		EventType:       EventTypeOrderPlaced,
		OrderID:         order.ID,
		UserID:          order.UserID,
		Items:           order.Items,
		Total:           order.Total,
		Status:          order.EffectiveStatus(),
		ShippingAddress: order.ShippingAddress,
		PlacedAt:        order.Date,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(order.ID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: eventTypeHeader, Value: []byte(EventTypeOrderPlaced)},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.ErrorContext(ctx, "failed to publish event", "order_id", order.ID, "error", err)
		return fmt.Errorf("failed to publish order event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Nop publishes nothing. Used when no brokers are configured.
type Nop struct{}

func (Nop) OrderPlaced(context.Context, domain.Order) error { return nil }

func (Nop) Close() error { return nil }
