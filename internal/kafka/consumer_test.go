package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockview/stock-analysis-system/internal/models"
)

// MockRepository implements PriceBarRepository for testing
type MockRepository struct {
	bars map[string]*models.PriceBar // key: symbol:date

	// Track method calls for verification
	UpsertCalls int
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		bars: make(map[string]*models.PriceBar),
	}
}

func (m *MockRepository) UpsertPriceBar(bar *models.PriceBar) error {
	m.UpsertCalls++
	key := bar.Symbol + ":" + bar.Date.Format("2006-01-02")
	m.bars[key] = bar
	return nil
}

// Helper to build a BarEvent for testing
func createTestBarEvent(symbol, date, open, high, low, closePrice string, volume int64) models.BarEvent {
	return models.BarEvent{
		EventType: models.EventBarUpsert,
		Source:    "yahoo",
		Symbol:    symbol,
		Date:      date,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closePrice,
		Volume:    volume,
	}
}

func toMessage(t *testing.T, event models.BarEvent) kafka.Message {
	t.Helper()
	data, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Key: []byte(event.Symbol), Value: data}
}

// TestBarUpsertCreatesBar verifies a valid event lands in the repository
func TestBarUpsertCreatesBar(t *testing.T) {
	repo := NewMockRepository()
	consumer := &Consumer{repo: repo}

	event := createTestBarEvent("AAPL", "2026-01-05", "150.25", "152.10", "149.80", "151.50", 42000000)
	err := consumer.processMessage(toMessage(t, event))
	require.NoError(t, err)

	assert.Equal(t, 1, repo.UpsertCalls)
	bar := repo.bars["AAPL:2026-01-05"]
	require.NotNil(t, bar)
	assert.Equal(t, "AAPL", bar.Symbol)
	assert.Equal(t, "151.5", bar.Close.String())
	assert.Equal(t, int64(42000000), bar.Volume)
	assert.Equal(t, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), bar.Date)
}

// TestBarUpsertIsIdempotent verifies redelivery overwrites the same row
func TestBarUpsertIsIdempotent(t *testing.T) {
	repo := NewMockRepository()
	consumer := &Consumer{repo: repo}

	event := createTestBarEvent("MSFT", "2026-02-10", "400.00", "405.00", "398.00", "404.25", 18000000)

	err := consumer.processMessage(toMessage(t, event))
	require.NoError(t, err)
	err = consumer.processMessage(toMessage(t, event))
	require.NoError(t, err)

	// Two upserts, but still a single row
	assert.Equal(t, 2, repo.UpsertCalls)
	assert.Len(t, repo.bars, 1)
}

// TestRedeliveryWithCorrectionOverwrites verifies a corrected bar replaces the old one
func TestRedeliveryWithCorrectionOverwrites(t *testing.T) {
	repo := NewMockRepository()
	consumer := &Consumer{repo: repo}

	first := createTestBarEvent("MSFT", "2026-02-10", "400.00", "405.00", "398.00", "404.25", 18000000)
	err := consumer.processMessage(toMessage(t, first))
	require.NoError(t, err)

	corrected := createTestBarEvent("MSFT", "2026-02-10", "400.00", "406.00", "398.00", "405.75", 18500000)
	err = consumer.processMessage(toMessage(t, corrected))
	require.NoError(t, err)

	assert.Len(t, repo.bars, 1)
	bar := repo.bars["MSFT:2026-02-10"]
	require.NotNil(t, bar)
	assert.Equal(t, "405.75", bar.Close.String())
	assert.Equal(t, int64(18500000), bar.Volume)
}

// TestUnknownEventTypeIsIgnored verifies other event types are skipped without error
func TestUnknownEventTypeIsIgnored(t *testing.T) {
	repo := NewMockRepository()
	consumer := &Consumer{repo: repo}

	event := createTestBarEvent("AAPL", "2026-01-05", "150.25", "152.10", "149.80", "151.50", 1000)
	event.EventType = "SYMBOL_DELISTED"

	err := consumer.processMessage(toMessage(t, event))
	require.NoError(t, err)
	assert.Equal(t, 0, repo.UpsertCalls)
	assert.Empty(t, repo.bars)
}

// TestMalformedPayloadReturnsError verifies bad JSON surfaces an error
func TestMalformedPayloadReturnsError(t *testing.T) {
	repo := NewMockRepository()
	consumer := &Consumer{repo: repo}

	err := consumer.processMessage(kafka.Message{Value: []byte("{not json")})
	require.Error(t, err)
	assert.Empty(t, repo.bars)
}

// TestInvalidFieldsReturnError covers the per-field validation paths
func TestInvalidFieldsReturnError(t *testing.T) {
	repo := NewMockRepository()
	consumer := &Consumer{repo: repo}

	tests := []struct {
		name  string
		event models.BarEvent
	}{
		{
			name: "missing symbol",
			event: createTestBarEvent("", "2026-01-05",
				"150.25", "152.10", "149.80", "151.50", 1000),
		},
		{
			name: "bad date",
			event: createTestBarEvent("AAPL", "01/05/2026",
				"150.25", "152.10", "149.80", "151.50", 1000),
		},
		{
			name: "bad open",
			event: createTestBarEvent("AAPL", "2026-01-05",
				"abc", "152.10", "149.80", "151.50", 1000),
		},
		{
			name: "bad close",
			event: createTestBarEvent("AAPL", "2026-01-05",
				"150.25", "152.10", "149.80", "n/a", 1000),
		},
		{
			name: "zero close",
			event: createTestBarEvent("AAPL", "2026-01-05",
				"150.25", "152.10", "149.80", "0", 1000),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := consumer.processMessage(toMessage(t, tt.event))
			require.Error(t, err)
		})
	}

	assert.Equal(t, 0, repo.UpsertCalls)
}

// TestRFC3339DateAccepted verifies full timestamps are parsed as a fallback
func TestRFC3339DateAccepted(t *testing.T) {
	repo := NewMockRepository()
	consumer := &Consumer{repo: repo}

	event := createTestBarEvent("NVDA", "2026-03-02T00:00:00Z", "800.00", "812.00", "795.00", "810.10", 30000000)
	err := consumer.processMessage(toMessage(t, event))
	require.NoError(t, err)

	bar := repo.bars["NVDA:2026-03-02"]
	require.NotNil(t, bar)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), bar.Date)
}

// TestNegativeVolumeClampedToZero verifies bad feed volume is clamped, not rejected
func TestNegativeVolumeClampedToZero(t *testing.T) {
	repo := NewMockRepository()
	consumer := &Consumer{repo: repo}

	event := createTestBarEvent("AAPL", "2026-01-05", "150.25", "152.10", "149.80", "151.50", -500)
	err := consumer.processMessage(toMessage(t, event))
	require.NoError(t, err)

	bar := repo.bars["AAPL:2026-01-05"]
	require.NotNil(t, bar)
	assert.Equal(t, int64(0), bar.Volume)
}
