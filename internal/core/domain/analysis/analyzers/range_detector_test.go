// internal/core/domain/analysis/analyzers/range_detector_test.go
package analyzers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-market-context/internal/core/domain/marketcontext"
	"crypto-market-context/internal/types"
)

// rangeWindow — окно с подтверждённым диапазоном 100..110:
// свечи 0-4 строят границы, 5-я остаётся внутри,
// 6-я и 7-я дают по касанию границ
func rangeWindow() []types.Candle {
	highs := []float64{110, 108, 109, 110, 107, 108, 109.9, 107}
	lows := []float64{100, 102, 100, 101, 103, 102, 103, 100.05}
	return makeCandles(highs, lows)
}

func TestRangeDetectorInsufficientData(t *testing.T) {
	d := NewRangeDetector(RangeConfig{MinTouches: 2, MinRangeSize: 0.02, MaxLookback: 100})

	mc := marketcontext.NewMarketContext("BTCUSDT", "1h", "binance")
	changed, err := d.UpdateMarketContext(mc, makeCandles(
		[]float64{110, 108, 109}, []float64{100, 102, 100}))

	require.NoError(t, err)
	assert.False(t, changed)
	assert.Nil(t, mc.Range)
}

func TestRangeDetectorSixthCandleConfirms(t *testing.T) {
	d := NewRangeDetector(RangeConfig{MinTouches: 2, MinRangeSize: 0.02, MaxLookback: 100})

	result, err := d.Analyze(rangeWindow())
	require.NoError(t, err)

	require.NotNil(t, result)
	assert.Equal(t, 110.0, result.High)
	assert.Equal(t, 100.0, result.Low)
	assert.Equal(t, 2, result.Touches)
	assert.Equal(t, 30.0, result.Strength)
	// Момент подтверждения — шестая свеча кандидата
	assert.True(t, rangeWindow()[5].Timestamp.Equal(result.DetectedAt))
}

func TestRangeDetectorSixthCandleBreaksOut(t *testing.T) {
	d := NewRangeDetector(RangeConfig{MinTouches: 2, MinRangeSize: 0.02, MaxLookback: 100})

	// Шестая свеча выходит за верхнюю границу — кандидат отклонён
	highs := []float64{110, 108, 109, 110, 107, 111}
	lows := []float64{100, 102, 100, 101, 103, 104}

	result, err := d.Analyze(makeCandles(highs, lows))
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestRangeDetectorCandidateBoundary(t *testing.T) {
	// Прямая проверка шестисвечного окна без форвард-валидации
	d := &RangeDetector{config: RangeConfig{MinTouches: 0, MinRangeSize: 0.05, MaxLookback: 100}}

	inside := makeCandles(
		[]float64{110, 109, 110, 108, 109, 108},
		[]float64{100, 101, 102, 100, 101, 102})
	result := d.checkCandidate(inside, 0)
	require.NotNil(t, result)
	assert.Equal(t, 110.0, result.High)
	assert.Equal(t, 100.0, result.Low)

	// Шестая свеча пробивает верхнюю границу
	breakout := makeCandles(
		[]float64{110, 109, 110, 108, 109, 111},
		[]float64{100, 101, 102, 100, 101, 104})
	assert.Nil(t, d.checkCandidate(breakout, 0))
}

func TestRangeDetectorTooNarrow(t *testing.T) {
	// Диапазон 0.1% при пороге 2% — отклоняется
	d := NewRangeDetector(RangeConfig{MinTouches: 2, MinRangeSize: 0.02, MaxLookback: 100})

	highs := []float64{100.1, 100.05, 100.08, 100.1, 100.06, 100.07, 100.09, 100.05}
	lows := []float64{100, 100.01, 100, 100.02, 100.01, 100.02, 100.01, 100}

	result, err := d.Analyze(makeCandles(highs, lows))
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestRangeDetectorEscapeInvalidatesCandidate(t *testing.T) {
	d := NewRangeDetector(RangeConfig{MinTouches: 2, MinRangeSize: 0.02, MaxLookback: 100})

	// Последняя свеча пробивает 110 больше чем на 2% — все кандидаты гибнут
	window := rangeWindow()
	window = append(window, makeCandles([]float64{113}, []float64{105})...)

	result, err := d.Analyze(window)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestRangeDetectorUpdatesContext(t *testing.T) {
	d := NewRangeDetector(RangeConfig{MinTouches: 2, MinRangeSize: 0.02, MaxLookback: 100})
	mc := marketcontext.NewMarketContext("BTCUSDT", "1h", "binance")

	changed, err := d.UpdateMarketContext(mc, rangeWindow())
	require.NoError(t, err)
	assert.True(t, changed)
	require.NotNil(t, mc.Range)
	assert.True(t, mc.IsInRange)
	assert.Equal(t, 110.0, mc.Range.High)
	assert.Equal(t, 100.0, mc.Range.Low)
	assert.Equal(t, 105.0, mc.Range.Equilibrium)

	// Тот же диапазон повторно — без изменений
	changed, err = d.UpdateMarketContext(mc, rangeWindow())
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestRangeDetectorClearsOnEscape(t *testing.T) {
	d := NewRangeDetector(RangeConfig{MinTouches: 2, MinRangeSize: 0.02, MaxLookback: 100})
	mc := marketcontext.NewMarketContext("BTCUSDT", "1h", "binance")

	_, err := d.UpdateMarketContext(mc, rangeWindow())
	require.NoError(t, err)
	require.NotNil(t, mc.Range)

	// Пробой вверх: диапазона в окне больше нет, хранимый сбрасывается
	window := append(rangeWindow(), makeCandles([]float64{113}, []float64{105})...)
	changed, err := d.UpdateMarketContext(mc, window)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Nil(t, mc.Range)
	assert.False(t, mc.IsInRange)
}

func TestRangeDetectorKeepsRangeWithoutEscape(t *testing.T) {
	d := NewRangeDetector(RangeConfig{MinTouches: 2, MinRangeSize: 0.02, MaxLookback: 100})
	mc := marketcontext.NewMarketContext("BTCUSDT", "1h", "binance")

	_, err := d.UpdateMarketContext(mc, rangeWindow())
	require.NoError(t, err)
	require.NotNil(t, mc.Range)

	// Окно без подтверждённого диапазона, но и без пробоя —
	// хранимый диапазон переживает вызов
	quiet := makeCandles(
		[]float64{106, 107, 106, 108, 107, 106},
		[]float64{104, 105, 104, 105, 104, 105})
	changed, err := d.UpdateMarketContext(mc, quiet)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.NotNil(t, mc.Range)
}
