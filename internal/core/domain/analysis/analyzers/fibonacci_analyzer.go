// internal/core/domain/analysis/analyzers/fibonacci_analyzer.go
package analyzers

import (
	"math"
	"sort"

	"crypto-market-context/internal/core/domain/analysis"
	"crypto-market-context/internal/core/domain/marketcontext"
	"crypto-market-context/internal/types"
)

// Коэффициенты Фибоначчи
var (
	retracementRatios = []float64{0, 0.236, 0.382, 0.5, 0.618, 0.786, 1.0}
	extensionRatios   = []float64{1.272, 1.618, 2.0, 2.618}
)

// FibonacciAnalyzer - расчёт уровней Фибоначчи от свинг-диапазона.
// Направление определяется только позиционным соглашением
// high > low, независимо от поля trend контекста.
type FibonacciAnalyzer struct {
	config FibonacciConfig
}

// NewFibonacciAnalyzer создает анализатор Фибоначчи
func NewFibonacciAnalyzer(config FibonacciConfig) *FibonacciAnalyzer {
	if config.BufferPercent < 0 {
		config.BufferPercent = 0
	}
	return &FibonacciAnalyzer{config: config}
}

// Name возвращает имя анализатора
func (f *FibonacciAnalyzer) Name() string {
	return NameFibonacci
}

// Compute строит набор уровней от пары (high, low) и текущей цены.
// Вырожденный диапазон (high == low) даёт пустой набор — ни один
// расчётный уровень не может быть NaN или бесконечностью.
func (f *FibonacciAnalyzer) Compute(high, low, currentPrice float64) *marketcontext.FibLevels {
	levels := &marketcontext.FibLevels{}

	rng := math.Abs(high - low)
	if rng == 0 || currentPrice <= 0 {
		return levels
	}

	uptrend := high > low
	top := math.Max(high, low)
	bottom := math.Min(high, low)

	if uptrend {
		// Откаты сверху вниз: поддержка ниже цены, сопротивление выше
		for _, ratio := range retracementRatios {
			price := top - rng*ratio
			f.emit(levels, price, ratio, marketcontext.FibRetracement, currentPrice, price < currentPrice)
		}
		// Расширения от low вверх: всегда сопротивление
		for _, ratio := range extensionRatios {
			price := bottom + rng*ratio
			f.emit(levels, price, ratio, marketcontext.FibExtension, currentPrice, false)
		}
	} else {
		// Зеркальный случай: откаты от low вверх,
		// сопротивление выше цены, поддержка ниже
		for _, ratio := range retracementRatios {
			price := bottom + rng*ratio
			f.emit(levels, price, ratio, marketcontext.FibRetracement, currentPrice, price <= currentPrice)
		}
		// Расширения от high вниз: всегда поддержка
		for _, ratio := range extensionRatios {
			price := top - rng*ratio
			f.emit(levels, price, ratio, marketcontext.FibExtension, currentPrice, true)
		}
	}

	// Поддержка по убыванию цены, сопротивление по возрастанию
	sort.Slice(levels.Support, func(i, j int) bool {
		return levels.Support[i].Price > levels.Support[j].Price
	})
	sort.Slice(levels.Resistance, func(i, j int) bool {
		return levels.Resistance[i].Price < levels.Resistance[j].Price
	})

	return levels
}

// emit добавляет уровень на сторону поддержки или сопротивления.
// Уровень в буферной зоне вокруг текущей цены отбрасывается целиком.
func (f *FibonacciAnalyzer) emit(levels *marketcontext.FibLevels, price, ratio float64,
	levelType string, currentPrice float64, support bool) {

	if math.IsNaN(price) || math.IsInf(price, 0) {
		return
	}
	if math.Abs(price-currentPrice)/currentPrice < f.config.BufferPercent {
		return
	}

	level := marketcontext.FibLevel{Price: price, Level: ratio, Type: levelType}
	if support {
		levels.Support = append(levels.Support, level)
	} else {
		levels.Resistance = append(levels.Resistance, level)
	}
}

// UpdateMarketContext пересчитывает fib_levels целиком.
// Диапазон берётся из свинг-точек контекста, при их отсутствии —
// из min/max переданного окна.
func (f *FibonacciAnalyzer) UpdateMarketContext(mc *marketcontext.MarketContext, candles []types.Candle) (bool, error) {
	if len(candles) == 0 {
		return false, nil
	}

	var high, low float64
	if mc.SwingHigh != nil && mc.SwingLow != nil {
		high = mc.SwingHigh.Price
		low = mc.SwingLow.Price
	} else {
		high, low = windowExtremes(candles)
	}

	currentPrice := candles[len(candles)-1].Close
	if currentPrice <= 0 {
		return false, analysis.NewAnalysisError("некорректная цена закрытия: %v", currentPrice)
	}

	levels := f.Compute(high, low, currentPrice)
	if mc.FibLevels.Equal(levels) {
		return false, nil
	}

	mc.SetFibLevels(levels)
	return true, nil
}

// windowExtremes возвращает max high и min low окна
func windowExtremes(candles []types.Candle) (high, low float64) {
	high = candles[0].High
	low = candles[0].Low
	for _, c := range candles[1:] {
		high = math.Max(high, c.High)
		low = math.Min(low, c.Low)
	}
	return high, low
}
