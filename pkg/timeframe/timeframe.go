// pkg/timeframe/timeframe.go
package timeframe

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Строковые таймфреймы
const (
	Timeframe1m  = "1m"
	Timeframe5m  = "5m"
	Timeframe15m = "15m"
	Timeframe30m = "30m"
	Timeframe1h  = "1h"
	Timeframe2h  = "2h"
	Timeframe4h  = "4h"
	Timeframe6h  = "6h"
	Timeframe12h = "12h"
	Timeframe1d  = "1d"
	Timeframe1w  = "1w"
)

// Таймфреймы в минутах
const (
	Minutes1     = 1
	Minutes5     = 5
	Minutes15    = 15
	Minutes30    = 30
	Minutes60    = 60
	Minutes120   = 120
	Minutes240   = 240
	Minutes360   = 360
	Minutes720   = 720
	Minutes1440  = 1440
	Minutes10080 = 10080
)

var minutesByTimeframe = map[string]int{
	Timeframe1m:  Minutes1,
	Timeframe5m:  Minutes5,
	Timeframe15m: Minutes15,
	Timeframe30m: Minutes30,
	Timeframe1h:  Minutes60,
	Timeframe2h:  Minutes120,
	Timeframe4h:  Minutes240,
	Timeframe6h:  Minutes360,
	Timeframe12h: Minutes720,
	Timeframe1d:  Minutes1440,
	Timeframe1w:  Minutes10080,
}

// StringToMinutes конвертирует строковый таймфрейм в минуты
func StringToMinutes(tf string) (int, error) {
	tf = strings.ToLower(strings.TrimSpace(tf))

	if minutes, ok := minutesByTimeframe[tf]; ok {
		return minutes, nil
	}

	// Пробуем распарсить как число минут
	if strings.HasSuffix(tf, "m") {
		minutesStr := strings.TrimSuffix(tf, "m")
		minutes, err := strconv.Atoi(minutesStr)
		if err == nil && minutes > 0 {
			return minutes, nil
		}
	}
	return 0, fmt.Errorf("неизвестный формат таймфрейма: %s", tf)
}

// Duration конвертирует строковый таймфрейм в time.Duration (без ошибки)
func Duration(tf string) time.Duration {
	if minutes, err := StringToMinutes(tf); err == nil {
		return time.Duration(minutes) * time.Minute
	}
	// Если не удалось распарсить, возвращаем дефолт
	return 15 * time.Minute
}

// IsValid проверяет, является ли таймфрейм валидным
func IsValid(tf string) bool {
	_, err := StringToMinutes(tf)
	return err == nil
}
