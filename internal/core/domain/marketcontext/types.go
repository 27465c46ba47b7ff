// internal/core/domain/marketcontext/types.go
package marketcontext

import "time"

// TrendDirection — классификация тренда
type TrendDirection string

const (
	TrendUp      TrendDirection = "up"
	TrendDown    TrendDirection = "down"
	TrendNeutral TrendDirection = "neutral"
	TrendUnknown TrendDirection = "unknown"
)

// Типы уровней Фибоначчи
const (
	FibRetracement = "retracement"
	FibExtension   = "extension"
)

// maxSwingHistory — сколько последних пивотов каждого вида хранится
// в контексте для классификации тренда
const maxSwingHistory = 10

// SwingPoint — принятый разворотный экстремум (pivot)
type SwingPoint struct {
	Price     float64   `json:"price"`
	Index     int       `json:"index"`
	Timestamp time.Time `json:"timestamp"`
	Strength  float64   `json:"strength"`
}

// PriceRange — подтверждённый диапазон консолидации.
// Поля выставляются и сбрасываются только как единое целое.
type PriceRange struct {
	High        float64   `json:"high"`
	Low         float64   `json:"low"`
	Equilibrium float64   `json:"equilibrium"`
	Size        float64   `json:"size"` // (high-low)/low
	Strength    float64   `json:"strength"`
	DetectedAt  time.Time `json:"detected_at"`
}

// FibLevel — один уровень Фибоначчи
type FibLevel struct {
	Price float64 `json:"price"`
	Level float64 `json:"level"` // коэффициент (0.382, 1.618, ...)
	Type  string  `json:"type"`  // retracement | extension
}

// FibLevels — полный набор уровней.
// Support отсортирован по убыванию цены, Resistance — по возрастанию.
type FibLevels struct {
	Support    []FibLevel `json:"support"`
	Resistance []FibLevel `json:"resistance"`
}

// Equal сравнивает наборы уровней поэлементно
func (f *FibLevels) Equal(other *FibLevels) bool {
	if f == nil || other == nil {
		return f == other
	}
	if len(f.Support) != len(other.Support) || len(f.Resistance) != len(other.Resistance) {
		return false
	}
	for i := range f.Support {
		if f.Support[i] != other.Support[i] {
			return false
		}
	}
	for i := range f.Resistance {
		if f.Resistance[i] != other.Resistance[i] {
			return false
		}
	}
	return true
}
