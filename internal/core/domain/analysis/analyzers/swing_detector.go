// internal/core/domain/analysis/analyzers/swing_detector.go
package analyzers

import (
	"errors"

	"crypto-market-context/internal/core/domain/analysis"
	"crypto-market-context/internal/core/domain/marketcontext"
	"crypto-market-context/internal/types"
)

// SwingDetector - детектор разворотных экстремумов (pivot).
//
// Индекс i — свинг-хай, если high[i] не ниже high всех соседей на
// расстоянии до lookback с обеих сторон. Сила пивота — относительный
// ход цены от предшествующего локального экстремума противоположной
// стороны. Из всех принятых пивотов за вызов сообщается только
// хронологически последний каждого вида.
type SwingDetector struct {
	config SwingConfig
}

// NewSwingDetector создает детектор свингов
func NewSwingDetector(config SwingConfig) *SwingDetector {
	if config.Lookback <= 0 {
		config.Lookback = 2
	}
	if config.MinStrength < 0 {
		config.MinStrength = 0
	}
	return &SwingDetector{config: config}
}

// Name возвращает имя анализатора
func (d *SwingDetector) Name() string {
	return NameSwing
}

// SwingResult - результат одного прохода детектора
type SwingResult struct {
	High *marketcontext.SwingPoint
	Low  *marketcontext.SwingPoint
}

// Analyze находит последние принятые свинг-хай и свинг-лоу окна.
// Чистая функция окна, состояния не держит.
func (d *SwingDetector) Analyze(candles []types.Candle) (SwingResult, error) {
	n := len(candles)
	lb := d.config.Lookback

	if n < 2*lb+1 {
		return SwingResult{}, analysis.ErrInsufficientData
	}

	var result SwingResult

	for i := lb; i < n-lb; i++ {
		if isPivotHigh(candles, i, lb) {
			if point, ok := d.acceptHigh(candles, i); ok {
				result.High = &point
			}
		}
		if isPivotLow(candles, i, lb) {
			if point, ok := d.acceptLow(candles, i); ok {
				result.Low = &point
			}
		}
	}

	return result, nil
}

// isPivotHigh: high[i] >= high[i±j] для всех j из [1, lb]
func isPivotHigh(candles []types.Candle, i, lb int) bool {
	for j := 1; j <= lb; j++ {
		if candles[i].High < candles[i-j].High || candles[i].High < candles[i+j].High {
			return false
		}
	}
	return true
}

// isPivotLow: low[i] <= low[i±j] для всех j из [1, lb]
func isPivotLow(candles []types.Candle, i, lb int) bool {
	for j := 1; j <= lb; j++ {
		if candles[i].Low > candles[i-j].Low || candles[i].Low > candles[i+j].Low {
			return false
		}
	}
	return true
}

// acceptHigh считает силу пивота-максимума от минимального low
// предшествующего окна и применяет порог MinStrength
func (d *SwingDetector) acceptHigh(candles []types.Candle, i int) (marketcontext.SwingPoint, bool) {
	lb := d.config.Lookback

	minLow := candles[i-lb].Low
	for k := i - lb + 1; k < i; k++ {
		if candles[k].Low < minLow {
			minLow = candles[k].Low
		}
	}
	if minLow <= 0 {
		return marketcontext.SwingPoint{}, false
	}

	strength := (candles[i].High - minLow) / minLow
	if strength < d.config.MinStrength {
		return marketcontext.SwingPoint{}, false
	}

	return marketcontext.SwingPoint{
		Price:     candles[i].High,
		Index:     i,
		Timestamp: candles[i].Timestamp,
		Strength:  strength,
	}, true
}

// acceptLow — зеркало acceptHigh: сила от максимального high
// предшествующего окна
func (d *SwingDetector) acceptLow(candles []types.Candle, i int) (marketcontext.SwingPoint, bool) {
	lb := d.config.Lookback

	maxHigh := candles[i-lb].High
	for k := i - lb + 1; k < i; k++ {
		if candles[k].High > maxHigh {
			maxHigh = candles[k].High
		}
	}
	if maxHigh <= 0 {
		return marketcontext.SwingPoint{}, false
	}

	strength := (maxHigh - candles[i].Low) / maxHigh
	if strength < d.config.MinStrength {
		return marketcontext.SwingPoint{}, false
	}

	return marketcontext.SwingPoint{
		Price:     candles[i].Low,
		Index:     i,
		Timestamp: candles[i].Timestamp,
		Strength:  strength,
	}, true
}

// UpdateMarketContext записывает найденные пивоты в контекст.
// Хранимая точка заменяется, когда индекс нового пивота отличается
// от хранимого — без сравнения экстремальности цен.
func (d *SwingDetector) UpdateMarketContext(mc *marketcontext.MarketContext, candles []types.Candle) (bool, error) {
	result, err := d.Analyze(candles)
	if err != nil {
		if errors.Is(err, analysis.ErrInsufficientData) {
			return false, nil
		}
		return false, err
	}

	changed := false
	if result.High != nil {
		if mc.SetSwingHigh(*result.High) {
			changed = true
		}
	}
	if result.Low != nil {
		if mc.SetSwingLow(*result.Low) {
			changed = true
		}
	}
	return changed, nil
}
