// internal/core/domain/marketcontext/context_test.go
package marketcontext

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-market-context/pkg/timeframe"
)

func TestNewMarketContext(t *testing.T) {
	mc := NewMarketContext("BTCUSDT", "1h", "binance")

	assert.Equal(t, "BTCUSDT", mc.Symbol)
	assert.Equal(t, "1h", mc.Timeframe)
	assert.Equal(t, "binance", mc.Exchange)
	assert.Equal(t, timeframe.CategoryMTF, mc.Category)
	assert.Equal(t, TrendUnknown, mc.Trend)
	assert.Nil(t, mc.SwingHigh)
	assert.Nil(t, mc.Range)
	assert.False(t, mc.IsInRange)
	assert.False(t, mc.IsComplete())
}

func TestSetSwingHighReplacesByIndex(t *testing.T) {
	mc := NewMarketContext("BTCUSDT", "1h", "binance")
	ts := time.Now()

	require.True(t, mc.SetSwingHigh(SwingPoint{Price: 105, Index: 3, Timestamp: ts}))
	require.NotNil(t, mc.SwingHigh)
	assert.Equal(t, 105.0, mc.SwingHigh.Price)

	// Тот же индекс — замены нет, даже при другой цене
	assert.False(t, mc.SetSwingHigh(SwingPoint{Price: 999, Index: 3, Timestamp: ts}))
	assert.Equal(t, 105.0, mc.SwingHigh.Price)

	// Другой индекс заменяет точку, даже если новая цена ниже
	assert.True(t, mc.SetSwingHigh(SwingPoint{Price: 103, Index: 7, Timestamp: ts}))
	assert.Equal(t, 103.0, mc.SwingHigh.Price)
	assert.Equal(t, 7, mc.SwingHigh.Index)
}

func TestSetSwingLowMirrors(t *testing.T) {
	mc := NewMarketContext("BTCUSDT", "1h", "binance")
	ts := time.Now()

	require.True(t, mc.SetSwingLow(SwingPoint{Price: 95, Index: 5, Timestamp: ts}))
	assert.False(t, mc.SetSwingLow(SwingPoint{Price: 94, Index: 5, Timestamp: ts}))
	assert.True(t, mc.SetSwingLow(SwingPoint{Price: 97, Index: 9, Timestamp: ts}))
	assert.Equal(t, 97.0, mc.SwingLow.Price)
}

func TestSwingHistoryBounded(t *testing.T) {
	mc := NewMarketContext("BTCUSDT", "1h", "binance")

	for i := 0; i < maxSwingHistory+5; i++ {
		mc.SetSwingHigh(SwingPoint{Price: float64(100 + i), Index: i})
	}

	require.Len(t, mc.SwingHighHistory, maxSwingHistory)
	// Остаются самые свежие точки в хронологическом порядке
	assert.Equal(t, 5, mc.SwingHighHistory[0].Index)
	assert.Equal(t, maxSwingHistory+4, mc.SwingHighHistory[maxSwingHistory-1].Index)
}

func TestSetTrend(t *testing.T) {
	mc := NewMarketContext("BTCUSDT", "1h", "binance")

	assert.True(t, mc.SetTrend(TrendUp))
	assert.False(t, mc.SetTrend(TrendUp))
	assert.True(t, mc.SetTrend(TrendNeutral))
	assert.Equal(t, TrendNeutral, mc.Trend)
}

func TestRangeGroupAtomicity(t *testing.T) {
	mc := NewMarketContext("BTCUSDT", "1h", "binance")
	detectedAt := time.Now()

	mc.SetRange(110, 100, 45, detectedAt)

	require.NotNil(t, mc.Range)
	assert.True(t, mc.IsInRange)
	assert.Equal(t, 110.0, mc.Range.High)
	assert.Equal(t, 100.0, mc.Range.Low)
	assert.Equal(t, 105.0, mc.Range.Equilibrium)
	assert.InDelta(t, 0.1, mc.Range.Size, 1e-9)
	assert.Equal(t, 45.0, mc.Range.Strength)

	mc.ClearRange()
	assert.Nil(t, mc.Range)
	assert.False(t, mc.IsInRange)
}

func TestCheckIfInRange(t *testing.T) {
	mc := NewMarketContext("BTCUSDT", "1h", "binance")

	// Без диапазона — всегда false
	assert.False(t, mc.CheckIfInRange(105, 0.01))

	mc.SetRange(110, 100, 30, time.Now())

	assert.True(t, mc.CheckIfInRange(105, 0))
	assert.True(t, mc.CheckIfInRange(100, 0))
	assert.True(t, mc.CheckIfInRange(110, 0))
	assert.False(t, mc.CheckIfInRange(99.9, 0))
	assert.False(t, mc.CheckIfInRange(110.1, 0))

	// Допуск симметричный и включительный
	assert.True(t, mc.CheckIfInRange(99, 0.02))
	assert.True(t, mc.CheckIfInRange(111, 0.01))
	assert.False(t, mc.CheckIfInRange(98.9, 0.01))
}

func TestIsComplete(t *testing.T) {
	mc := NewMarketContext("BTCUSDT", "1h", "binance")
	assert.False(t, mc.IsComplete())

	mc.SetSwingHigh(SwingPoint{Price: 105, Index: 3})
	mc.SetSwingLow(SwingPoint{Price: 95, Index: 5})
	assert.False(t, mc.IsComplete())

	mc.SetFibLevels(&FibLevels{})
	assert.False(t, mc.IsComplete())

	mc.SetCurrentPrice(100)
	assert.True(t, mc.IsComplete())
}

func TestCloneIsDeep(t *testing.T) {
	mc := NewMarketContext("BTCUSDT", "1h", "binance")
	mc.SetCurrentPrice(100)
	mc.SetSwingHigh(SwingPoint{Price: 105, Index: 3})
	mc.SetSwingLow(SwingPoint{Price: 95, Index: 5})
	mc.SetRange(110, 100, 30, time.Now())
	mc.SetFibLevels(&FibLevels{
		Support: []FibLevel{{Price: 98.82, Level: 0.618, Type: FibRetracement}},
	})

	clone := mc.Clone()

	// Мутация клона не видна в оригинале
	clone.SetCurrentPrice(200)
	clone.SwingHigh.Price = 999
	clone.Range.High = 999
	clone.FibLevels.Support[0].Price = 999
	clone.SwingHighHistory[0].Price = 999

	assert.Equal(t, 100.0, *mc.CurrentPrice)
	assert.Equal(t, 105.0, mc.SwingHigh.Price)
	assert.Equal(t, 110.0, mc.Range.High)
	assert.Equal(t, 98.82, mc.FibLevels.Support[0].Price)
	assert.Equal(t, 105.0, mc.SwingHighHistory[0].Price)
}

func TestFibLevelsEqual(t *testing.T) {
	a := &FibLevels{
		Support:    []FibLevel{{Price: 95, Level: 1.0, Type: FibRetracement}},
		Resistance: []FibLevel{{Price: 105, Level: 0, Type: FibRetracement}},
	}
	b := &FibLevels{
		Support:    []FibLevel{{Price: 95, Level: 1.0, Type: FibRetracement}},
		Resistance: []FibLevel{{Price: 105, Level: 0, Type: FibRetracement}},
	}

	assert.True(t, a.Equal(b))

	b.Support[0].Price = 94
	assert.False(t, a.Equal(b))

	var nilLevels *FibLevels
	assert.False(t, nilLevels.Equal(a))
	assert.False(t, a.Equal(nil))
	assert.True(t, nilLevels.Equal(nil))
}
