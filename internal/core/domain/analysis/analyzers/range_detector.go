// internal/core/domain/analysis/analyzers/range_detector.go
package analyzers

import (
	"errors"
	"math"
	"time"

	"crypto-market-context/internal/core/domain/analysis"
	"crypto-market-context/internal/core/domain/marketcontext"
	"crypto-market-context/internal/types"
)

const (
	// rangeWindowSize — размер окна правила шести свечей:
	// 5 свечей строят границы, 6-я подтверждает
	rangeWindowSize = 6

	// touchTolerance — касание границы: high/low в пределах 0.1% от неё
	touchTolerance = 0.001

	// escapeTolerance — выход за границу более чем на 2%
	// аннулирует кандидата целиком
	escapeTolerance = 0.02
)

// RangeDetector - детектор диапазонов консолидации ("правило шести
// свечей"). Пересчитывает диапазон по всему переданному окну на каждом
// вызове, инкрементального состояния не держит; остаётся только
// последний подтверждённый валидный диапазон.
type RangeDetector struct {
	config RangeConfig
}

// NewRangeDetector создает детектор диапазонов
func NewRangeDetector(config RangeConfig) *RangeDetector {
	if config.MinTouches <= 0 {
		config.MinTouches = 2
	}
	if config.MinRangeSize <= 0 {
		config.MinRangeSize = 0.02
	}
	if config.MaxLookback <= 0 {
		config.MaxLookback = 100
	}
	return &RangeDetector{config: config}
}

// Name возвращает имя анализатора
func (d *RangeDetector) Name() string {
	return NameRange
}

// RangeResult - подтверждённый диапазон
type RangeResult struct {
	High       float64
	Low        float64
	Touches    int
	Strength   float64
	DetectedAt time.Time
}

// Analyze ищет последний подтверждённый диапазон в окне
func (d *RangeDetector) Analyze(candles []types.Candle) (*RangeResult, error) {
	if len(candles) > d.config.MaxLookback {
		candles = candles[len(candles)-d.config.MaxLookback:]
	}

	n := len(candles)
	if n < rangeWindowSize {
		return nil, analysis.ErrInsufficientData
	}

	var latest *RangeResult

	for start := 0; start+rangeWindowSize <= n; start++ {
		candidate := d.checkCandidate(candles, start)
		if candidate != nil {
			latest = candidate
		}
	}

	return latest, nil
}

// checkCandidate проверяет одно 6-свечное окно начиная с start:
// границы по первым 5 свечам, 6-я должна остаться внутри,
// затем форвард-валидация касаниями по остатку окна
func (d *RangeDetector) checkCandidate(candles []types.Candle, start int) *RangeResult {
	bandHigh := candles[start].High
	bandLow := candles[start].Low
	for i := start + 1; i < start+rangeWindowSize-1; i++ {
		bandHigh = math.Max(bandHigh, candles[i].High)
		bandLow = math.Min(bandLow, candles[i].Low)
	}
	if bandLow <= 0 {
		return nil
	}

	sixth := candles[start+rangeWindowSize-1]
	if sixth.High > bandHigh || sixth.Low < bandLow {
		return nil
	}

	if (bandHigh-bandLow)/bandLow < d.config.MinRangeSize {
		return nil
	}

	// Форвард-валидация: считаем касания границ, отбрасываем
	// кандидата при выходе за границу более чем на escapeTolerance
	touches := 0
	for k := start + rangeWindowSize; k < len(candles); k++ {
		c := candles[k]
		if c.High > bandHigh*(1+escapeTolerance) || c.Low < bandLow*(1-escapeTolerance) {
			return nil
		}
		if nearLevel(c.High, bandHigh) || nearLevel(c.Low, bandLow) ||
			nearLevel(c.High, bandLow) || nearLevel(c.Low, bandHigh) {
			touches++
		}
	}

	if touches < d.config.MinTouches {
		return nil
	}

	// Скоринг как у зон S/R: вклад каждого касания — 15 баллов, макс 100
	strength := math.Min(100, float64(touches)*15)

	return &RangeResult{
		High:       bandHigh,
		Low:        bandLow,
		Touches:    touches,
		Strength:   strength,
		DetectedAt: sixth.Timestamp,
	}
}

// nearLevel — цена в пределах touchTolerance от уровня
func nearLevel(price, level float64) bool {
	if level <= 0 {
		return false
	}
	return math.Abs(price-level)/level <= touchTolerance
}

// UpdateMarketContext записывает подтверждённый диапазон в контекст.
// Если диапазон в окне не найден, а последняя свеча пробила хранимый
// диапазон больше чем на escapeTolerance — группа полей диапазона
// сбрасывается целиком.
func (d *RangeDetector) UpdateMarketContext(mc *marketcontext.MarketContext, candles []types.Candle) (bool, error) {
	result, err := d.Analyze(candles)
	if err != nil {
		if errors.Is(err, analysis.ErrInsufficientData) {
			return false, nil
		}
		return false, err
	}

	if result == nil {
		if mc.Range != nil && len(candles) > 0 {
			last := candles[len(candles)-1]
			if last.High > mc.Range.High*(1+escapeTolerance) ||
				last.Low < mc.Range.Low*(1-escapeTolerance) {
				mc.ClearRange()
				return true, nil
			}
		}
		return false, nil
	}

	if mc.Range != nil &&
		mc.Range.High == result.High &&
		mc.Range.Low == result.Low &&
		mc.Range.DetectedAt.Equal(result.DetectedAt) {
		return false, nil
	}

	mc.SetRange(result.High, result.Low, result.Strength, result.DetectedAt)
	return true, nil
}
