// internal/core/domain/marketcontext/context.go
package marketcontext

import (
	"time"

	"crypto-market-context/pkg/timeframe"
)

// MarketContext — структурное состояние рынка для одного ключа
// (symbol, timeframe, exchange). Мутируется анализаторами по очереди;
// эксклюзивность по ключу гарантирует ContextEngine.
type MarketContext struct {
	Symbol    string
	Timeframe string
	Exchange  string

	// Category всегда пересчитывается из Timeframe, не хранится
	Category timeframe.Category

	// Timestamp — логическое (событийное) время последней свечи,
	// LastUpdated — настенные часы последней мутации
	Timestamp   time.Time
	LastUpdated time.Time

	CurrentPrice *float64

	SwingHigh *SwingPoint
	SwingLow  *SwingPoint

	// Истории принятых пивотов (хронологические, не длиннее maxSwingHistory).
	// Владелец — SwingDetector; TrendAnalyzer только читает.
	SwingHighHistory []SwingPoint
	SwingLowHistory  []SwingPoint

	Trend TrendDirection

	Range     *PriceRange
	IsInRange bool

	FibLevels *FibLevels
}

// NewMarketContext создает свежий контекст для ключа
func NewMarketContext(symbol, tf, exchange string) *MarketContext {
	now := time.Now()
	return &MarketContext{
		Symbol:      symbol,
		Timeframe:   tf,
		Exchange:    exchange,
		Category:    timeframe.CategoryOf(tf),
		Timestamp:   now,
		LastUpdated: now,
		Trend:       TrendUnknown,
	}
}

// touch фиксирует настенное время мутации
func (mc *MarketContext) touch() {
	mc.LastUpdated = time.Now()
}

// SetCurrentPrice обновляет последнюю цену закрытия
func (mc *MarketContext) SetCurrentPrice(price float64) {
	mc.CurrentPrice = &price
	mc.touch()
}

// SetSwingHigh заменяет свинг-хай, если индекс пивота отличается от
// хранимого. Принятый пивот добавляется в историю.
// Возвращает true, если точка была заменена.
func (mc *MarketContext) SetSwingHigh(point SwingPoint) bool {
	if mc.SwingHigh != nil && mc.SwingHigh.Index == point.Index {
		return false
	}
	mc.SwingHigh = &point
	mc.SwingHighHistory = appendSwing(mc.SwingHighHistory, point)
	mc.touch()
	return true
}

// SetSwingLow — зеркало SetSwingHigh для свинг-лоу
func (mc *MarketContext) SetSwingLow(point SwingPoint) bool {
	if mc.SwingLow != nil && mc.SwingLow.Index == point.Index {
		return false
	}
	mc.SwingLow = &point
	mc.SwingLowHistory = appendSwing(mc.SwingLowHistory, point)
	mc.touch()
	return true
}

func appendSwing(history []SwingPoint, point SwingPoint) []SwingPoint {
	history = append(history, point)
	if len(history) > maxSwingHistory {
		history = history[len(history)-maxSwingHistory:]
	}
	return history
}

// SetTrend выставляет тренд. Возвращает true при смене значения.
func (mc *MarketContext) SetTrend(trend TrendDirection) bool {
	if mc.Trend == trend {
		return false
	}
	mc.Trend = trend
	mc.touch()
	return true
}

// SetRange выставляет всю группу полей диапазона как единое целое
func (mc *MarketContext) SetRange(high, low, strength float64, detectedAt time.Time) {
	size := 0.0
	if low > 0 {
		size = (high - low) / low
	}
	mc.Range = &PriceRange{
		High:        high,
		Low:         low,
		Equilibrium: (high + low) / 2,
		Size:        size,
		Strength:    strength,
		DetectedAt:  detectedAt,
	}
	mc.IsInRange = true
	mc.touch()
}

// ClearRange сбрасывает всю группу полей диапазона атомарно
func (mc *MarketContext) ClearRange() {
	mc.Range = nil
	mc.IsInRange = false
	mc.touch()
}

// SetFibLevels заменяет набор уровней Фибоначчи целиком
func (mc *MarketContext) SetFibLevels(levels *FibLevels) {
	mc.FibLevels = levels
	mc.touch()
}

// CheckIfInRange проверяет, лежит ли цена внутри диапазона с
// симметричным относительным допуском (включительно)
func (mc *MarketContext) CheckIfInRange(price, tolerance float64) bool {
	if mc.Range == nil {
		return false
	}
	lower := mc.Range.Low * (1 - tolerance)
	upper := mc.Range.High * (1 + tolerance)
	return price >= lower && price <= upper
}

// IsComplete сообщает, собран ли контекст полностью.
// Чисто диагностический признак — персистентность не блокирует.
func (mc *MarketContext) IsComplete() bool {
	return mc.Symbol != "" &&
		mc.Timeframe != "" &&
		mc.Exchange != "" &&
		mc.SwingHigh != nil &&
		mc.SwingLow != nil &&
		mc.FibLevels != nil &&
		mc.CurrentPrice != nil
}

// Clone возвращает глубокую копию контекста.
// Используется движком для снимка состояния до мутации.
func (mc *MarketContext) Clone() *MarketContext {
	out := *mc

	if mc.CurrentPrice != nil {
		price := *mc.CurrentPrice
		out.CurrentPrice = &price
	}
	if mc.SwingHigh != nil {
		point := *mc.SwingHigh
		out.SwingHigh = &point
	}
	if mc.SwingLow != nil {
		point := *mc.SwingLow
		out.SwingLow = &point
	}
	if mc.Range != nil {
		rng := *mc.Range
		out.Range = &rng
	}
	if mc.FibLevels != nil {
		levels := FibLevels{
			Support:    append([]FibLevel(nil), mc.FibLevels.Support...),
			Resistance: append([]FibLevel(nil), mc.FibLevels.Resistance...),
		}
		out.FibLevels = &levels
	}
	out.SwingHighHistory = append([]SwingPoint(nil), mc.SwingHighHistory...)
	out.SwingLowHistory = append([]SwingPoint(nil), mc.SwingLowHistory...)

	return &out
}
