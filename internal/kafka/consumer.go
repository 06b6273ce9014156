package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/phuslu/log"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stockview/stock-analysis-system/internal/models"
)

// PriceBarRepository defines the interface for persisting ingested bars
type PriceBarRepository interface {
	UpsertPriceBar(bar *models.PriceBar) error
}

// Consumer handles consuming bar events from Kafka.
// Note: ingestion is idempotent. The repository upserts on (symbol, date),
// so redelivered events overwrite the same row instead of duplicating it.
type Consumer struct {
	reader *kafka.Reader
	repo   PriceBarRepository
}

// NewConsumer creates a new Kafka consumer for bar events
func NewConsumer(brokers []string, topic, groupID string, repo PriceBarRepository) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
	})

	return &Consumer{
		reader: reader,
		repo:   repo,
	}
}

// Start begins consuming messages from Kafka
func (c *Consumer) Start(ctx context.Context) error {
	log.Info().Str("topic", c.reader.Config().Topic).Msg("starting kafka consumer")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("kafka consumer shutting down")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil // Context cancelled, normal shutdown
				}
				log.Error().Err(err).Msg("error reading kafka message")
				continue
			}

			if err := c.processMessage(msg); err != nil {
				log.Error().Err(err).Str("key", string(msg.Key)).Msg("error processing message")
				// Continue processing other messages
			}
		}
	}
}

// processMessage handles a single Kafka message
func (c *Consumer) processMessage(msg kafka.Message) error {
	var event models.BarEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal bar event: %w", err)
	}

	// Only process BAR_UPSERT events
	if event.EventType != models.EventBarUpsert {
		log.Debug().Str("event_type", event.EventType).Msg("ignoring event type")
		return nil
	}

	bar, err := c.convertEventToPriceBar(event)
	if err != nil {
		return fmt.Errorf("failed to convert event to price bar: %w", err)
	}

	if err := c.repo.UpsertPriceBar(bar); err != nil {
		return fmt.Errorf("failed to save price bar: %w", err)
	}

	log.Debug().
		Str("symbol", bar.Symbol).
		Str("date", bar.Date.Format("2006-01-02")).
		Str("close", bar.Close.String()).
		Msg("ingested price bar")

	return nil
}

// convertEventToPriceBar maps a BarEvent to a PriceBar model
func (c *Consumer) convertEventToPriceBar(event models.BarEvent) (*models.PriceBar, error) {
	if event.Symbol == "" {
		return nil, fmt.Errorf("bar event missing symbol")
	}

	date, err := time.Parse("2006-01-02", event.Date)
	if err != nil {
		// Try full timestamp
		date, err = time.Parse(time.RFC3339, event.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid bar date %q: %w", event.Date, err)
		}
	}

	open, err := decimal.NewFromString(event.Open)
	if err != nil {
		return nil, fmt.Errorf("invalid open %q: %w", event.Open, err)
	}
	high, err := decimal.NewFromString(event.High)
	if err != nil {
		return nil, fmt.Errorf("invalid high %q: %w", event.High, err)
	}
	low, err := decimal.NewFromString(event.Low)
	if err != nil {
		return nil, fmt.Errorf("invalid low %q: %w", event.Low, err)
	}
	closePrice, err := decimal.NewFromString(event.Close)
	if err != nil {
		return nil, fmt.Errorf("invalid close %q: %w", event.Close, err)
	}
	if !closePrice.IsPositive() {
		return nil, fmt.Errorf("non-positive close %s for %s", event.Close, event.Symbol)
	}

	volume := event.Volume
	if volume < 0 {
		volume = 0
	}

	return &models.PriceBar{
		Symbol: event.Symbol,
		Date:   date,
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closePrice,
		Volume: volume,
	}, nil
}

// Close closes the Kafka consumer
func (c *Consumer) Close() error {
	return c.reader.Close()
}
