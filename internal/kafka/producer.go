package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stockview/stock-analysis-system/internal/models"
)

// Producer handles publishing events to Kafka
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
	}
}

// PublishAnalysisCompleted publishes an event after an analysis run finishes
func (p *Producer) PublishAnalysisCompleted(ctx context.Context, payload *models.AnalysisPayload) error {
	event := models.AnalysisEvent{
		EventType:      models.EventAnalysisCompleted,
		Symbol:         payload.Symbol,
		Period:         payload.Period,
		Interval:       payload.Interval,
		Trend:          payload.Summary.Trend,
		Recommendation: payload.Summary.Recommendation,
		Score:          payload.Summary.RecommendScore,
		LastClose:      payload.Summary.LastClose,
		Timestamp:      time.Now(),
	}
	return p.publish(ctx, payload.Symbol, event)
}

// PublishForecastCompleted publishes an event after a forecast run finishes
func (p *Producer) PublishForecastCompleted(ctx context.Context, forecast *models.Forecast) error {
	event := models.ForecastEvent{
		EventType:      models.EventForecastCompleted,
		Symbol:         forecast.Symbol,
		TargetDate:     forecast.TargetDate.Format("2006-01-02"),
		PredictedPrice: forecast.PredictedPrice,
		PriceChangePct: forecast.PriceChangePct,
		RiskLevel:      forecast.RiskLevel,
		Timestamp:      time.Now(),
	}
	return p.publish(ctx, forecast.Symbol, event)
}

func (p *Producer) publish(ctx context.Context, key string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	return p.writer.Close()
}
