// pkg/timeframe/category.go
package timeframe

// Category — категория таймфрейма (старшинство)
type Category string

const (
	CategoryHTF     Category = "HTF" // старшие: от 6h и выше
	CategoryMTF     Category = "MTF" // средние: 1h-4h
	CategoryLTF     Category = "LTF" // младшие: до 30m включительно
	CategoryUnknown Category = "UNKNOWN"
)

var categoryByTimeframe = map[string]Category{
	Timeframe1m:  CategoryLTF,
	Timeframe5m:  CategoryLTF,
	Timeframe15m: CategoryLTF,
	Timeframe30m: CategoryLTF,
	Timeframe1h:  CategoryMTF,
	Timeframe2h:  CategoryMTF,
	Timeframe4h:  CategoryMTF,
	Timeframe6h:  CategoryHTF,
	Timeframe12h: CategoryHTF,
	Timeframe1d:  CategoryHTF,
	Timeframe1w:  CategoryHTF,
}

// CategoryOf возвращает категорию таймфрейма по статической таблице.
// Категория всегда пересчитывается из таймфрейма и никогда не хранится.
func CategoryOf(tf string) Category {
	if cat, ok := categoryByTimeframe[tf]; ok {
		return cat
	}

	// Пользовательские минутные таймфреймы раскладываем по длительности
	minutes, err := StringToMinutes(tf)
	if err != nil {
		return CategoryUnknown
	}
	switch {
	case minutes <= Minutes30:
		return CategoryLTF
	case minutes <= Minutes240:
		return CategoryMTF
	default:
		return CategoryHTF
	}
}
