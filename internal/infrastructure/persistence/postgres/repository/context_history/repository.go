// internal/infrastructure/persistence/postgres/repository/context_history/repository.go
package context_history_repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"crypto-market-context/internal/core/domain/marketcontext"
	"crypto-market-context/internal/infrastructure/persistence/postgres/models"
)

type contextHistoryRepoImpl struct {
	db *sqlx.DB
}

// Repository - репозиторий истории контекстов
type Repository interface {
	Upsert(ctx context.Context, snap *marketcontext.Snapshot) error
}

// NewRepository создаёт реализацию репозитория истории
func NewRepository(db *sqlx.DB) Repository {
	return &contextHistoryRepoImpl{db: db}
}

// Upsert записывает до-мутационный снимок контекста по ключу
// (exchange, symbol, timeframe)
func (r *contextHistoryRepoImpl) Upsert(ctx context.Context, snap *marketcontext.Snapshot) error {
	row, err := toRow(snap)
	if err != nil {
		return fmt.Errorf("ContextHistoryRepo.Upsert: %w", err)
	}

	query := `
		INSERT INTO market_context_history
			(exchange, symbol, timeframe, trend, current_price,
			 swing_high, swing_low, range_high, range_low,
			 snapshot, event_time, updated_at)
		VALUES
			(:exchange, :symbol, :timeframe, :trend, :current_price,
			 :swing_high, :swing_low, :range_high, :range_low,
			 :snapshot, :event_time, NOW())
		ON CONFLICT (exchange, symbol, timeframe) DO UPDATE SET
			trend = EXCLUDED.trend,
			current_price = EXCLUDED.current_price,
			swing_high = EXCLUDED.swing_high,
			swing_low = EXCLUDED.swing_low,
			range_high = EXCLUDED.range_high,
			range_low = EXCLUDED.range_low,
			snapshot = EXCLUDED.snapshot,
			event_time = EXCLUDED.event_time,
			updated_at = NOW()
	`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("ContextHistoryRepo.Upsert: %w", err)
	}
	return nil
}

// toRow разворачивает снапшот в строку таблицы
func toRow(snap *marketcontext.Snapshot) (*models.MarketContextHistory, error) {
	if snap == nil {
		return nil, fmt.Errorf("пустой снапшот")
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("маршалинг снапшота: %w", err)
	}

	eventTime, err := time.Parse(time.RFC3339Nano, snap.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("временная метка снапшота: %w", err)
	}

	row := &models.MarketContextHistory{
		Exchange:     snap.Exchange,
		Symbol:       snap.Symbol,
		Timeframe:    snap.Timeframe,
		Trend:        snap.Trend,
		CurrentPrice: snap.CurrentPrice,
		Snapshot:     raw,
		EventTime:    eventTime,
	}

	if snap.SwingHigh != nil {
		price := snap.SwingHigh.Price
		row.SwingHigh = &price
	}
	if snap.SwingLow != nil {
		price := snap.SwingLow.Price
		row.SwingLow = &price
	}
	if snap.Range != nil {
		high := snap.Range.High
		low := snap.Range.Low
		row.RangeHigh = &high
		row.RangeLow = &low
	}

	return row, nil
}
