// internal/infrastructure/persistence/postgres/schema.go
package postgres

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"crypto-market-context/pkg/logger"
)

// EnsureSchema создаёт таблицу истории контекстов, если её ещё нет.
// История пишется апсертом по ключу (exchange, symbol, timeframe) —
// один актуальный до-мутационный снимок на ключ.
func EnsureSchema(db *sqlx.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS market_context_history (
		id SERIAL PRIMARY KEY,
		exchange VARCHAR(64) NOT NULL,
		symbol VARCHAR(64) NOT NULL,
		timeframe VARCHAR(16) NOT NULL,
		trend VARCHAR(16) NOT NULL,
		current_price DOUBLE PRECISION,
		swing_high DOUBLE PRECISION,
		swing_low DOUBLE PRECISION,
		range_high DOUBLE PRECISION,
		range_low DOUBLE PRECISION,
		snapshot JSONB NOT NULL,
		event_time TIMESTAMP WITH TIME ZONE NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE (exchange, symbol, timeframe)
	);

	CREATE INDEX IF NOT EXISTS idx_context_history_symbol
		ON market_context_history(symbol, timeframe);
	CREATE INDEX IF NOT EXISTS idx_context_history_event_time
		ON market_context_history(event_time);
	`

	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to create market_context_history: %w", err)
	}

	logger.Info("✅ Схема market_context_history готова")
	return nil
}
