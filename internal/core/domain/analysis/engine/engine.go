// internal/core/domain/analysis/engine/engine.go
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"crypto-market-context/internal/core/domain/analysis/analyzers"
	"crypto-market-context/internal/core/domain/marketcontext"
	"crypto-market-context/internal/types"
	"crypto-market-context/pkg/logger"
	"crypto-market-context/pkg/timeframe"
)

// ContextCache - коллаборатор-кэш (key-value с TTL).
// Промах возвращается как (nil, nil), ошибки транспорта — как err.
type ContextCache interface {
	GetContext(ctx context.Context, key string) (*marketcontext.Snapshot, error)
	SetContext(ctx context.Context, key string, snap *marketcontext.Snapshot, ttl time.Duration) error
}

// HistoryRepository - долговременное хранилище истории контекстов.
// Пишется только как аудит-канал, движком никогда не читается.
type HistoryRepository interface {
	Upsert(ctx context.Context, snap *marketcontext.Snapshot) error
}

// Config - конфигурация движка
type Config struct {
	CacheTTL       time.Duration
	OpTimeout      time.Duration
	HistoryRetries int
	RetryDelay     time.Duration
}

// DefaultConfig - конфигурация движка по умолчанию
func DefaultConfig() Config {
	return Config{
		CacheTTL:       24 * time.Hour,
		OpTimeout:      3 * time.Second,
		HistoryRetries: 2,
		RetryDelay:     100 * time.Millisecond,
	}
}

// ContextEngine - оркестратор пайплайна анализа: загрузка контекста
// из кэша, прогон анализаторов в заданном порядке, запись результата
// и условная фиксация до-мутационного снимка в историю.
type ContextEngine struct {
	analyzers []analyzers.Analyzer
	cache     ContextCache
	history   HistoryRepository
	config    Config

	// Не более одного обновления на ключ одновременно;
	// разные ключи полностью параллельны
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewContextEngine создает движок контекста
func NewContextEngine(pipeline []analyzers.Analyzer, cache ContextCache,
	history HistoryRepository, cfg Config) *ContextEngine {

	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultConfig().CacheTTL
	}
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = DefaultConfig().OpTimeout
	}
	if cfg.HistoryRetries < 0 {
		cfg.HistoryRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultConfig().RetryDelay
	}

	return &ContextEngine{
		analyzers: pipeline,
		cache:     cache,
		history:   history,
		config:    cfg,
		locks:     make(map[string]*sync.Mutex),
	}
}

// CacheKey — детерминированный ключ кэша для (exchange, symbol, timeframe)
func CacheKey(exchange, symbol, tf string) string {
	return fmt.Sprintf("ctx:%s:%s:%s", exchange, symbol, tf)
}

// keyLock возвращает мьютекс ключа, создавая его при первом обращении
func (e *ContextEngine) keyLock(key string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	lock, ok := e.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[key] = lock
	}
	return lock
}

// UpdateContext прогоняет окно закрытых свечей через пайплайн.
//
// Пустое окно — единственный видимый снаружи отрицательный исход
// (nil, nil). Ошибки анализаторов и персистентности наружу не
// выходят: анализатор пропускается, запись логируется и глотается.
func (e *ContextEngine) UpdateContext(ctx context.Context, symbol, tf string,
	candles []types.Candle, exchange string) (*marketcontext.MarketContext, error) {

	if len(candles) == 0 {
		return nil, nil
	}

	key := CacheKey(exchange, symbol, tf)
	lock := e.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	mc, isFirstTime := e.loadContext(ctx, key, symbol, tf, exchange)

	// Снимок до мутации — именно он уходит в историю при изменении
	var preUpdate *marketcontext.Snapshot
	if !isFirstTime {
		preUpdate = mc.ToSnapshot()
	}

	anyChanged := false
	for _, a := range e.analyzers {
		changed, err := e.runAnalyzer(a, mc, candles)
		if err != nil {
			// Изоляция частичного отказа: упавший анализатор
			// пропускаем, остальные продолжают работу
			logger.Warn("⚠️ Анализатор %s упал для %s: %v", a.Name(), key, err)
			continue
		}
		if changed {
			anyChanged = true
		}
	}

	// Логическое время и текущая цена обновляются безусловно
	last := candles[len(candles)-1]
	mc.Timestamp = last.Timestamp
	mc.SetCurrentPrice(last.Close)

	if !mc.IsComplete() {
		logger.Debug("🧩 Контекст %s ещё не полон", key)
	}

	switch {
	case isFirstTime:
		// Первый раз — пишем в кэш безусловно
		e.writeCache(ctx, key, mc)
	case anyChanged:
		e.writeCache(ctx, key, mc)
		e.writeHistory(ctx, key, preUpdate)
	default:
		// Тик без структурных изменений: кэш не перезаписываем,
		// обновлённая цена видна только в возвращаемом значении
	}

	logger.ContextUpdate(exchange, symbol, tf, string(mc.Trend), anyChanged)
	return mc, nil
}

// runAnalyzer вызывает анализатор, перехватывая панику как ошибку
func (e *ContextEngine) runAnalyzer(a analyzers.Analyzer,
	mc *marketcontext.MarketContext, candles []types.Candle) (changed bool, err error) {

	defer func() {
		if r := recover(); r != nil {
			changed = false
			err = fmt.Errorf("паника в анализаторе: %v", r)
		}
	}()

	return a.UpdateMarketContext(mc, candles)
}

// loadContext загружает контекст из кэша.
// Недоступный кэш и битый снапшот равносильны промаху:
// контекст пересоздается заново (isFirstTime=true).
func (e *ContextEngine) loadContext(ctx context.Context, key, symbol, tf, exchange string) (*marketcontext.MarketContext, bool) {
	opCtx, cancel := context.WithTimeout(ctx, e.config.OpTimeout)
	defer cancel()

	snap, err := e.cache.GetContext(opCtx, key)
	if err != nil {
		logger.Warn("⚠️ Кэш недоступен для %s, создаём контекст заново: %v", key, err)
		return marketcontext.NewMarketContext(symbol, tf, exchange), true
	}
	if snap == nil {
		return marketcontext.NewMarketContext(symbol, tf, exchange), true
	}

	mc, err := marketcontext.FromSnapshot(snap)
	if err != nil {
		logger.Warn("⚠️ Битый снапшот %s, пересоздаём контекст: %v", key, err)
		return marketcontext.NewMarketContext(symbol, tf, exchange), true
	}
	return mc, false
}

// writeCache пишет снапшот в кэш. Ошибка записи логируется,
// вызов всё равно возвращает обновлённый контекст.
func (e *ContextEngine) writeCache(ctx context.Context, key string, mc *marketcontext.MarketContext) {
	opCtx, cancel := context.WithTimeout(ctx, e.config.OpTimeout)
	defer cancel()

	if err := e.cache.SetContext(opCtx, key, mc.ToSnapshot(), e.config.CacheTTL); err != nil {
		logger.Error("❌ Не удалось записать контекст %s в кэш: %v", key, err)
	}
}

// writeHistory отправляет до-мутационный снимок в историю с небольшим
// числом повторов. Отказ логируется и глотается — история это
// аудит-канал, а не часть основного контракта.
func (e *ContextEngine) writeHistory(ctx context.Context, key string, snap *marketcontext.Snapshot) {
	if e.history == nil || snap == nil {
		return
	}

	var lastErr error
	for attempt := 0; attempt <= e.config.HistoryRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(e.config.RetryDelay)
		}

		opCtx, cancel := context.WithTimeout(ctx, e.config.OpTimeout)
		lastErr = e.history.Upsert(opCtx, snap)
		cancel()

		if lastErr == nil {
			return
		}
	}

	logger.Error("❌ История контекста %s не записана после %d попыток: %v",
		key, e.config.HistoryRetries+1, lastErr)
}

// GetMultiTimeframeContexts собирает контексты всех таймфреймов,
// требуемых иерархией для базового.
//
// Контракт частичного результата: отсутствующие в кэше таймфреймы
// молча пропускаются; список короче требуемого набора вызывающая
// сторона обязана трактовать как "ещё не готово".
func (e *ContextEngine) GetMultiTimeframeContexts(ctx context.Context,
	symbol, baseTimeframe, exchange string) ([]*marketcontext.MarketContext, error) {

	required := timeframe.Hierarchy(baseTimeframe)
	out := make([]*marketcontext.MarketContext, 0, len(required))

	for _, tf := range required {
		key := CacheKey(exchange, symbol, tf)

		opCtx, cancel := context.WithTimeout(ctx, e.config.OpTimeout)
		snap, err := e.cache.GetContext(opCtx, key)
		cancel()

		if err != nil || snap == nil {
			if err != nil {
				logger.Debug("🔍 Контекст %s недоступен: %v", key, err)
			}
			continue
		}

		mc, err := marketcontext.FromSnapshot(snap)
		if err != nil {
			logger.Debug("🔍 Снапшот %s не восстановился: %v", key, err)
			continue
		}
		out = append(out, mc)
	}

	return out, nil
}

// RequiredTimeframes возвращает набор таймфреймов иерархии для базового
func (e *ContextEngine) RequiredTimeframes(baseTimeframe string) []string {
	return timeframe.Hierarchy(baseTimeframe)
}
