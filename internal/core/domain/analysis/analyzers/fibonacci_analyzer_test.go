// internal/core/domain/analysis/analyzers/fibonacci_analyzer_test.go
package analyzers

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-market-context/internal/core/domain/marketcontext"
)

func TestFibonacciComputeUptrend(t *testing.T) {
	f := NewFibonacciAnalyzer(FibonacciConfig{BufferPercent: 0.002})

	// high > low — восходящее соглашение, цена в середине хода
	levels := f.Compute(105, 95, 100)

	// 0% — сама вершина, строго как уровень сопротивления
	assert.True(t, hasLevel(levels.Resistance, 105.0, 0))
	// 100% — само дно, поддержка, без потери точности
	assert.True(t, hasLevel(levels.Support, 95.0, 1.0))
	// 50% (цена 100) попадает в буфер вокруг текущей цены и отброшен
	assert.False(t, hasLevel(levels.Support, 100.0, 0.5))
	assert.False(t, hasLevel(levels.Resistance, 100.0, 0.5))

	// Расширения всегда выше вершины хода
	for _, lvl := range levels.Resistance {
		if lvl.Type == marketcontext.FibExtension {
			assert.Greater(t, lvl.Price, 105.0)
		}
	}

	// Поддержка по убыванию цены, сопротивление по возрастанию
	assert.True(t, sort.SliceIsSorted(levels.Support, func(i, j int) bool {
		return levels.Support[i].Price > levels.Support[j].Price
	}))
	assert.True(t, sort.SliceIsSorted(levels.Resistance, func(i, j int) bool {
		return levels.Resistance[i].Price < levels.Resistance[j].Price
	}))

	// Вся поддержка ниже цены, всё сопротивление выше
	for _, lvl := range levels.Support {
		assert.Less(t, lvl.Price, 100.0)
	}
	for _, lvl := range levels.Resistance {
		assert.Greater(t, lvl.Price, 100.0)
	}
}

func TestFibonacciComputeDowntrend(t *testing.T) {
	f := NewFibonacciAnalyzer(FibonacciConfig{BufferPercent: 0.002})

	// high < low — нисходящее соглашение
	levels := f.Compute(95, 105, 100)

	// Расширения нисходящего хода всегда ниже дна
	for _, lvl := range levels.Support {
		if lvl.Type == marketcontext.FibExtension {
			assert.Less(t, lvl.Price, 95.0)
		}
	}
	assert.NotEmpty(t, levels.Support)
	assert.NotEmpty(t, levels.Resistance)
}

func TestFibonacciDegenerateRange(t *testing.T) {
	f := NewFibonacciAnalyzer(FibonacciConfig{BufferPercent: 0.002})

	levels := f.Compute(100, 100, 100)
	assert.Empty(t, levels.Support)
	assert.Empty(t, levels.Resistance)
}

func TestFibonacciUpdateContextFromSwings(t *testing.T) {
	f := NewFibonacciAnalyzer(FibonacciConfig{BufferPercent: 0.002})

	mc := marketcontext.NewMarketContext("BTCUSDT", "1h", "binance")
	mc.SetSwingHigh(marketcontext.SwingPoint{Price: 105, Index: 3})
	mc.SetSwingLow(marketcontext.SwingPoint{Price: 95, Index: 5})

	candles := makeCandles([]float64{101}, []float64{99})

	changed, err := f.UpdateMarketContext(mc, candles)
	require.NoError(t, err)
	assert.True(t, changed)
	require.NotNil(t, mc.FibLevels)
	assert.True(t, hasLevel(mc.FibLevels.Support, 95.0, 1.0))

	// Те же входы — тот же набор, мутации нет
	changed, err = f.UpdateMarketContext(mc, candles)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestFibonacciUpdateContextFallsBackToWindow(t *testing.T) {
	f := NewFibonacciAnalyzer(FibonacciConfig{BufferPercent: 0.002})

	mc := marketcontext.NewMarketContext("BTCUSDT", "1h", "binance")

	// Свингов нет — диапазон берётся из экстремумов окна
	candles := makeCandles([]float64{104, 105, 103}, []float64{96, 97, 95})

	changed, err := f.UpdateMarketContext(mc, candles)
	require.NoError(t, err)
	assert.True(t, changed)
	require.NotNil(t, mc.FibLevels)
	assert.True(t, hasLevel(mc.FibLevels.Resistance, 105.0, 0))
}

func TestFibonacciEmptyWindow(t *testing.T) {
	f := NewFibonacciAnalyzer(FibonacciConfig{BufferPercent: 0.002})
	mc := marketcontext.NewMarketContext("BTCUSDT", "1h", "binance")

	changed, err := f.UpdateMarketContext(mc, nil)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Nil(t, mc.FibLevels)
}

func hasLevel(levels []marketcontext.FibLevel, price, ratio float64) bool {
	for _, lvl := range levels {
		if lvl.Price == price && lvl.Level == ratio {
			return true
		}
	}
	return false
}
