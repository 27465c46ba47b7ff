// internal/infrastructure/persistence/postgres/repository/context_history/repository_test.go
package context_history_repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-market-context/internal/core/domain/marketcontext"
)

func sampleSnapshot() *marketcontext.Snapshot {
	eventTime := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mc := marketcontext.NewMarketContext("BTCUSDT", "1h", "binance")
	mc.Timestamp = eventTime
	mc.SetCurrentPrice(100.5)
	mc.SetSwingHigh(marketcontext.SwingPoint{Price: 105, Index: 3, Timestamp: eventTime})
	mc.SetSwingLow(marketcontext.SwingPoint{Price: 95, Index: 5, Timestamp: eventTime})
	mc.SetTrend(marketcontext.TrendUp)
	mc.SetRange(110, 100, 30, eventTime)

	return mc.ToSnapshot()
}

func TestToRowDenormalizes(t *testing.T) {
	snap := sampleSnapshot()

	row, err := toRow(snap)
	require.NoError(t, err)

	assert.Equal(t, "binance", row.Exchange)
	assert.Equal(t, "BTCUSDT", row.Symbol)
	assert.Equal(t, "1h", row.Timeframe)
	assert.Equal(t, "up", row.Trend)

	require.NotNil(t, row.CurrentPrice)
	assert.Equal(t, 100.5, *row.CurrentPrice)
	require.NotNil(t, row.SwingHigh)
	assert.Equal(t, 105.0, *row.SwingHigh)
	require.NotNil(t, row.SwingLow)
	assert.Equal(t, 95.0, *row.SwingLow)
	require.NotNil(t, row.RangeHigh)
	assert.Equal(t, 110.0, *row.RangeHigh)
	require.NotNil(t, row.RangeLow)
	assert.Equal(t, 100.0, *row.RangeLow)

	assert.True(t, row.EventTime.Equal(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)))
	assert.NotEmpty(t, row.Snapshot)
}

func TestToRowSparseSnapshot(t *testing.T) {
	mc := marketcontext.NewMarketContext("BTCUSDT", "1h", "binance")
	snap := mc.ToSnapshot()

	row, err := toRow(snap)
	require.NoError(t, err)

	// Недостроенный контекст допустим: опциональные колонки пусты
	assert.Nil(t, row.CurrentPrice)
	assert.Nil(t, row.SwingHigh)
	assert.Nil(t, row.SwingLow)
	assert.Nil(t, row.RangeHigh)
	assert.Nil(t, row.RangeLow)
	assert.Equal(t, "unknown", row.Trend)
}

func TestToRowRejectsBadInput(t *testing.T) {
	_, err := toRow(nil)
	assert.Error(t, err)

	snap := sampleSnapshot()
	snap.Timestamp = "not-a-time"
	_, err = toRow(snap)
	assert.Error(t, err)
}
