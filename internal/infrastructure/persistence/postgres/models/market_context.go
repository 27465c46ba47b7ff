// internal/infrastructure/persistence/postgres/models/market_context.go
package models

import "time"

// MarketContextHistory - строка истории контекста.
// Snapshot — полный JSON-снапшот; отдельные колонки денормализованы
// для выборок бэктестера без разбора JSON.
type MarketContextHistory struct {
	ID           int64     `db:"id"`
	Exchange     string    `db:"exchange"`
	Symbol       string    `db:"symbol"`
	Timeframe    string    `db:"timeframe"`
	Trend        string    `db:"trend"`
	CurrentPrice *float64  `db:"current_price"`
	SwingHigh    *float64  `db:"swing_high"`
	SwingLow     *float64  `db:"swing_low"`
	RangeHigh    *float64  `db:"range_high"`
	RangeLow     *float64  `db:"range_low"`
	Snapshot     []byte    `db:"snapshot"`
	EventTime    time.Time `db:"event_time"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}
