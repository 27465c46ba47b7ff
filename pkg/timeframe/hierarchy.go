// pkg/timeframe/hierarchy.go
package timeframe

// hierarchy — статическая таблица: базовый таймфрейм -> набор таймфреймов
// (включая сам базовый), контексты которых должны быть проанализированы
// до запуска стратегии на базовом.
var hierarchy = map[string][]string{
	Timeframe5m:  {Timeframe5m, Timeframe1h, Timeframe4h},
	Timeframe15m: {Timeframe15m, Timeframe1h, Timeframe4h},
	Timeframe30m: {Timeframe30m, Timeframe4h, Timeframe1d},
	Timeframe1h:  {Timeframe1h, Timeframe4h, Timeframe1d},
	Timeframe4h:  {Timeframe4h, Timeframe1d},
	Timeframe1d:  {Timeframe1d, Timeframe1w},
}

// Hierarchy возвращает требуемый набор таймфреймов для базового.
// Для неизвестного базового таймфрейма возвращается он сам —
// стратегия в этом случае опирается только на собственный контекст.
func Hierarchy(base string) []string {
	if required, ok := hierarchy[base]; ok {
		out := make([]string, len(required))
		copy(out, required)
		return out
	}
	return []string{base}
}
