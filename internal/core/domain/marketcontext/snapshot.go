// internal/core/domain/marketcontext/snapshot.go
package marketcontext

import (
	"fmt"
	"time"

	"crypto-market-context/pkg/timeframe"
)

// timestampLayout — каноническая текстовая форма временных меток снапшота
const timestampLayout = time.RFC3339Nano

// Snapshot — сериализуемое представление MarketContext для кэша и
// исторического хранилища. Timestamp хранится каноническим текстом,
// LastUpdated — числовой эпохой в миллисекундах.
type Snapshot struct {
	Symbol    string `json:"symbol"`
	Timeframe string `json:"timeframe"`
	Exchange  string `json:"exchange"`

	Timestamp   string `json:"timestamp"`
	LastUpdated int64  `json:"last_updated"`

	CurrentPrice *float64 `json:"current_price,omitempty"`

	SwingHigh *SwingPoint `json:"swing_high,omitempty"`
	SwingLow  *SwingPoint `json:"swing_low,omitempty"`

	SwingHighHistory []SwingPoint `json:"swing_high_history,omitempty"`
	SwingLowHistory  []SwingPoint `json:"swing_low_history,omitempty"`

	Trend string `json:"trend"`

	Range     *PriceRange `json:"range,omitempty"`
	IsInRange bool        `json:"is_in_range"`

	FibLevels *FibLevels `json:"fib_levels,omitempty"`
}

// ToSnapshot сериализует контекст. Категория таймфрейма в снапшот
// не попадает — при восстановлении она пересчитывается заново.
func (mc *MarketContext) ToSnapshot() *Snapshot {
	clone := mc.Clone()

	return &Snapshot{
		Symbol:           clone.Symbol,
		Timeframe:        clone.Timeframe,
		Exchange:         clone.Exchange,
		Timestamp:        clone.Timestamp.Format(timestampLayout),
		LastUpdated:      clone.LastUpdated.UnixMilli(),
		CurrentPrice:     clone.CurrentPrice,
		SwingHigh:        clone.SwingHigh,
		SwingLow:         clone.SwingLow,
		SwingHighHistory: clone.SwingHighHistory,
		SwingLowHistory:  clone.SwingLowHistory,
		Trend:            string(clone.Trend),
		Range:            clone.Range,
		IsInRange:        clone.IsInRange,
		FibLevels:        clone.FibLevels,
	}
}

// FromSnapshot восстанавливает контекст из снапшота.
// timeframe_category пересчитывается по статической таблице, а не
// берётся из снапшота — старые таблицы категорий не должны
// переживать десериализацию.
func FromSnapshot(snap *Snapshot) (*MarketContext, error) {
	if snap == nil {
		return nil, fmt.Errorf("пустой снапшот")
	}
	if snap.Symbol == "" || snap.Timeframe == "" || snap.Exchange == "" {
		return nil, fmt.Errorf("снапшот без идентификатора: %q/%q/%q",
			snap.Exchange, snap.Symbol, snap.Timeframe)
	}

	ts, err := time.Parse(timestampLayout, snap.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("некорректная временная метка %q: %w", snap.Timestamp, err)
	}

	trend := TrendDirection(snap.Trend)
	switch trend {
	case TrendUp, TrendDown, TrendNeutral, TrendUnknown:
	case "":
		trend = TrendUnknown
	default:
		return nil, fmt.Errorf("неизвестный тренд в снапшоте: %q", snap.Trend)
	}

	mc := &MarketContext{
		Symbol:           snap.Symbol,
		Timeframe:        snap.Timeframe,
		Exchange:         snap.Exchange,
		Category:         timeframe.CategoryOf(snap.Timeframe),
		Timestamp:        ts,
		LastUpdated:      time.UnixMilli(snap.LastUpdated),
		CurrentPrice:     snap.CurrentPrice,
		SwingHigh:        snap.SwingHigh,
		SwingLow:         snap.SwingLow,
		SwingHighHistory: snap.SwingHighHistory,
		SwingLowHistory:  snap.SwingLowHistory,
		Trend:            trend,
		Range:            snap.Range,
		IsInRange:        snap.IsInRange,
		FibLevels:        snap.FibLevels,
	}

	// Инвариант: is_in_range истинно тогда и только тогда, когда
	// группа полей диапазона выставлена
	mc.IsInRange = mc.Range != nil

	return mc, nil
}
