// internal/core/domain/analysis/analyzers/types.go
package analyzers

import (
	"crypto-market-context/internal/core/domain/marketcontext"
	"crypto-market-context/internal/types"
)

// Analyzer - интерфейс анализатора рыночного контекста.
//
// Контракт для всех реализаций:
//   - свечи отсортированы по возрастанию времени;
//   - при нехватке данных возвращается (false, nil) без мутации
//     контекста — это штатный no-op, а не ошибка;
//   - анализатор не трогает поля, которыми владеет другой анализатор.
type Analyzer interface {
	Name() string
	UpdateMarketContext(mc *marketcontext.MarketContext, candles []types.Candle) (bool, error)
}

// Имена анализаторов (закрытый набор)
const (
	NameSwing     = "swing"
	NameTrend     = "trend"
	NameRange     = "range"
	NameFibonacci = "fibonacci"
)

// SwingConfig - конфигурация детектора свингов
type SwingConfig struct {
	Lookback    int     `json:"lookback"`
	MinStrength float64 `json:"min_strength"`
}

// TrendConfig - конфигурация анализатора тренда.
// Lookback — количество свинг-точек, не свечей.
type TrendConfig struct {
	Lookback int `json:"lookback"`
}

// RangeConfig - конфигурация детектора диапазонов
type RangeConfig struct {
	MinTouches   int     `json:"min_touches"`
	MinRangeSize float64 `json:"min_range_size"`
	MaxLookback  int     `json:"max_lookback"`
}

// FibonacciConfig - конфигурация анализатора Фибоначчи
type FibonacciConfig struct {
	BufferPercent float64 `json:"buffer_percent"`
}

// PipelineConfig - конфигурация всего пайплайна анализа.
// Order — явный упорядоченный список включённых анализаторов;
// порядок исполнения определяется только им.
type PipelineConfig struct {
	Order     []string        `json:"order"`
	Swing     SwingConfig     `json:"swing"`
	Trend     TrendConfig     `json:"trend"`
	Range     RangeConfig     `json:"range"`
	Fibonacci FibonacciConfig `json:"fibonacci"`
}

// DefaultPipelineConfig - конфигурация пайплайна по умолчанию
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Order: []string{NameSwing, NameTrend, NameRange, NameFibonacci},
		Swing: SwingConfig{
			Lookback:    2,
			MinStrength: 0.01,
		},
		Trend: TrendConfig{
			Lookback: 3,
		},
		Range: RangeConfig{
			MinTouches:   2,
			MinRangeSize: 0.02,
			MaxLookback:  100,
		},
		Fibonacci: FibonacciConfig{
			BufferPercent: 0.002,
		},
	}
}
