// internal/core/domain/analysis/analyzers/factory.go
package analyzers

import (
	"fmt"

	"crypto-market-context/internal/core/domain/analysis"
)

// BuildPipeline собирает упорядоченный набор анализаторов по
// конфигурации. Порядок исполнения — ровно порядок cfg.Order,
// никакой зависимости от итерации по map.
//
// Набор анализаторов закрыт и перечислим на этапе компиляции;
// неизвестное имя — типизированная ошибка, а не молчаливый nil.
func BuildPipeline(cfg PipelineConfig) ([]Analyzer, error) {
	if len(cfg.Order) == 0 {
		cfg.Order = DefaultPipelineConfig().Order
	}

	pipeline := make([]Analyzer, 0, len(cfg.Order))
	for _, name := range cfg.Order {
		a, err := newAnalyzer(name, cfg)
		if err != nil {
			return nil, err
		}
		pipeline = append(pipeline, a)
	}
	return pipeline, nil
}

// newAnalyzer создает один анализатор по имени
func newAnalyzer(name string, cfg PipelineConfig) (Analyzer, error) {
	switch name {
	case NameSwing:
		return NewSwingDetector(cfg.Swing), nil
	case NameTrend:
		return NewTrendAnalyzer(cfg.Trend), nil
	case NameRange:
		return NewRangeDetector(cfg.Range), nil
	case NameFibonacci:
		return NewFibonacciAnalyzer(cfg.Fibonacci), nil
	default:
		return nil, fmt.Errorf("%s: %w", name, analysis.ErrUnknownAnalyzer)
	}
}
