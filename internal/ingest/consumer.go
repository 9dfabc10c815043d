// Package ingest feeds meter readings published on Kafka into the pricing
// service. Each message carries the same JSON document as a store request.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Shopify/sarama"
	"go.uber.org/zap"

	pricingv1 "github.com/milad/joienergy/api/pricing/v1"
	"github.com/milad/joienergy/internal/domain"
	"github.com/milad/joienergy/internal/service"
)

// Config selects the brokers and topic to consume.
type Config struct {
	Enabled bool     `json:"enabled"`
	Brokers []string `json:"brokers"`
	Topic   string   `json:"topic"`
	GroupID string   `json:"group_id"`
	// InitialOffset is "newest" or "oldest".
	InitialOffset string `json:"initial_offset"`
	// Version is the Kafka protocol version, e.g. "2.8.0". Empty keeps the
	// client default.
	Version string `json:"version"`
}

func (c *Config) SetDefaults() {
	if c.Topic == "" {
		c.Topic = "meter-readings"
	}
	if c.GroupID == "" {
		c.GroupID = "joienergy-pricing"
	}
	if c.InitialOffset == "" {
		c.InitialOffset = "newest"
	}
}

func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if len(c.Brokers) == 0 {
		return errors.New("ingest.kafka.brokers is required when ingest is enabled")
	}
	if strings.TrimSpace(c.Topic) == "" {
		return errors.New("ingest.kafka.topic is required")
	}
	switch c.InitialOffset {
	case "newest", "oldest":
	default:
		return fmt.Errorf("ingest.kafka.initial_offset: unsupported %q (newest, oldest)", c.InitialOffset)
	}
	if c.Version != "" {
		if _, err := sarama.ParseKafkaVersion(c.Version); err != nil {
			return fmt.Errorf("ingest.kafka.version: %w", err)
		}
	}
	return nil
}

// ReadingSink receives decoded readings. *service.PricingService satisfies it.
type ReadingSink interface {
	StoreReadings(ctx context.Context, meterID string, readings []domain.Reading) error
}

// ErrMalformedMessage marks messages that can never be applied.
var ErrMalformedMessage = errors.New("malformed message")

// Handler applies messages to a ReadingSink. It implements
// sarama.ConsumerGroupHandler.
type Handler struct {
	sink ReadingSink
	log  *zap.Logger
}

func NewHandler(sink ReadingSink, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{sink: sink, log: log}
}

// Handle decodes one message and stores its readings.
func (h *Handler) Handle(ctx context.Context, value []byte) error {
	var msg pricingv1.StoreReadingsRequest
	if err := json.Unmarshal(value, &msg); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if err := h.sink.StoreReadings(ctx, msg.SmartMeterID, pricingv1.ToDomainReadings(msg.ElectricityReadings)); err != nil {
		if service.IsInvalidArgument(err) {
			return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		return err
	}
	return nil
}

func (h *Handler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *Handler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim skips malformed messages and stops on any other failure, so
// the unmarked message is redelivered after the next rebalance.
func (h *Handler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	ctx := session.Context()
	for message := range claim.Messages() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := h.Handle(ctx, message.Value)
		switch {
		case err == nil:
		case errors.Is(err, ErrMalformedMessage):
			h.log.Warn("skipping message",
				zap.String("topic", message.Topic),
				zap.Int32("partition", message.Partition),
				zap.Int64("offset", message.Offset),
				zap.Error(err),
			)
		default:
			return fmt.Errorf("apply message at %s/%d/%d: %w", message.Topic, message.Partition, message.Offset, err)
		}
		session.MarkMessage(message, "")
	}
	return nil
}

// Consumer runs a consumer group over the configured topic.
type Consumer struct {
	group   sarama.ConsumerGroup
	topic   string
	handler *Handler
	log     *zap.Logger
}

func NewConsumer(cfg Config, sink ReadingSink, log *zap.Logger) (*Consumer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	sc := sarama.NewConfig()
	sc.Consumer.Return.Errors = true
	sc.Consumer.Offsets.Initial = sarama.OffsetNewest
	if cfg.InitialOffset == "oldest" {
		sc.Consumer.Offsets.Initial = sarama.OffsetOldest
	}
	sc.Consumer.Group.Rebalance.Strategy = sarama.BalanceStrategyRoundRobin
	sc.Consumer.MaxWaitTime = 250 * time.Millisecond
	if cfg.Version != "" {
		v, err := sarama.ParseKafkaVersion(cfg.Version)
		if err != nil {
			return nil, fmt.Errorf("kafka version: %w", err)
		}
		sc.Version = v
	}

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, sc)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer group: %w", err)
	}
	return &Consumer{
		group:   group,
		topic:   cfg.Topic,
		handler: NewHandler(sink, log),
		log:     log,
	}, nil
}

// Run consumes until ctx is cancelled. Group errors are logged.
func (c *Consumer) Run(ctx context.Context) error {
	go func() {
		for err := range c.group.Errors() {
			c.log.Error("kafka consumer error", zap.Error(err))
		}
	}()

	for {
		if err := c.group.Consume(ctx, []string{c.topic}, c.handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) || errors.Is(err, context.Canceled) {
				return nil
			}
			c.log.Error("kafka session ended", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (c *Consumer) Close() error {
	return c.group.Close()
}
