// internal/core/domain/analysis/analyzers/trend_analyzer.go
package analyzers

import (
	"crypto-market-context/internal/core/domain/marketcontext"
	"crypto-market-context/internal/types"
)

// TrendAnalyzer - классификатор тренда по историям свинг-точек.
// Тренд выводится только из последовательностей пивотов,
// никогда — из сырых свечей.
type TrendAnalyzer struct {
	config TrendConfig
}

// NewTrendAnalyzer создает анализатор тренда
func NewTrendAnalyzer(config TrendConfig) *TrendAnalyzer {
	if config.Lookback < 2 {
		config.Lookback = 2
	}
	return &TrendAnalyzer{config: config}
}

// Name возвращает имя анализатора
func (t *TrendAnalyzer) Name() string {
	return NameTrend
}

// Classify определяет направление тренда по историям пивотов.
// Меньше двух точек в любой из историй — UNKNOWN.
func (t *TrendAnalyzer) Classify(highs, lows []marketcontext.SwingPoint) marketcontext.TrendDirection {
	if len(highs) < 2 || len(lows) < 2 {
		return marketcontext.TrendUnknown
	}

	highs = lastSwings(highs, t.config.Lookback)
	lows = lastSwings(lows, t.config.Lookback)

	switch {
	case strictlyIncreasing(highs) && strictlyIncreasing(lows):
		return marketcontext.TrendUp
	case strictlyDecreasing(highs) && strictlyDecreasing(lows):
		return marketcontext.TrendDown
	default:
		return marketcontext.TrendNeutral
	}
}

// lastSwings берёт последние n точек в хронологическом порядке
func lastSwings(points []marketcontext.SwingPoint, n int) []marketcontext.SwingPoint {
	if len(points) <= n {
		return points
	}
	return points[len(points)-n:]
}

func strictlyIncreasing(points []marketcontext.SwingPoint) bool {
	for i := 1; i < len(points); i++ {
		if points[i].Price <= points[i-1].Price {
			return false
		}
	}
	return true
}

func strictlyDecreasing(points []marketcontext.SwingPoint) bool {
	for i := 1; i < len(points); i++ {
		if points[i].Price >= points[i-1].Price {
			return false
		}
	}
	return true
}

// UpdateMarketContext классифицирует тренд по историям пивотов
// контекста. Пока историй недостаточно, контекст не мутируется —
// прежний тренд (изначально UNKNOWN) остаётся как есть.
func (t *TrendAnalyzer) UpdateMarketContext(mc *marketcontext.MarketContext, candles []types.Candle) (bool, error) {
	if len(mc.SwingHighHistory) < 2 || len(mc.SwingLowHistory) < 2 {
		return false, nil
	}

	trend := t.Classify(mc.SwingHighHistory, mc.SwingLowHistory)
	return mc.SetTrend(trend), nil
}
