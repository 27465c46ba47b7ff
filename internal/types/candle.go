// internal/types/candle.go
package types

import "time"

// Candle — закрытая OHLCV-свеча от коллектора данных.
// Окна свечей всегда отсортированы по возрастанию Timestamp
// и уже дедуплицированы на стороне коллектора.
type Candle struct {
	Symbol    string    `json:"symbol"`
	Exchange  string    `json:"exchange"`
	Timeframe string    `json:"timeframe"`
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
	IsClosed  bool      `json:"is_closed"`
}

// CandleClosedData — данные события закрытия свечи.
// Candles — окно закрытых свечей для анализа (старые -> новые).
type CandleClosedData struct {
	Symbol    string
	Timeframe string
	Exchange  string
	Candles   []Candle
}
