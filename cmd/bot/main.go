// cmd/bot/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"crypto-market-context/internal/core/domain/analysis/analyzers"
	"crypto-market-context/internal/core/domain/analysis/engine"
	rediscache "crypto-market-context/internal/infrastructure/cache/redis"
	"crypto-market-context/internal/infrastructure/config"
	"crypto-market-context/internal/infrastructure/persistence/postgres"
	context_history_repo "crypto-market-context/internal/infrastructure/persistence/postgres/repository/context_history"
	events "crypto-market-context/internal/infrastructure/transport/event_bus"
	"crypto-market-context/internal/types"
	"crypto-market-context/pkg/logger"
)

func main() {
	// ======================
	// КОНФИГУРАЦИЯ
	// ======================
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	// ======================
	// ЛОГИРОВАНИЕ
	// ======================
	if err := logger.InitGlobal(cfg.Logging.File, cfg.Logging.Level, cfg.Logging.DebugMode); err != nil {
		log.Fatalf("❌ Ошибка инициализации логгера: %v", err)
	}
	defer logger.GetLogger().Close()

	logger.Info("🚀 Запуск движка рыночного контекста (env=%s, exchange=%s)",
		cfg.Environment, cfg.Exchange)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ======================
	// REDIS (КЭШ КОНТЕКСТОВ)
	// ======================
	cache := rediscache.NewContextCache(rediscache.Options{
		Addr:         cfg.Redis.Addr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	defer cache.Close()

	if err := cache.Ping(ctx); err != nil {
		logger.GetLogger().Fatal("❌ Redis недоступен: %v", err)
	}
	logger.Info("✅ Redis подключен (%s)", cfg.Redis.Addr())

	// ======================
	// POSTGRES (ИСТОРИЯ КОНТЕКСТОВ)
	// ======================
	var history engine.HistoryRepository
	if cfg.Database.Enabled {
		db, err := postgres.Connect(&postgres.Config{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			Database:        cfg.Database.Name,
			SSLMode:         cfg.Database.SSLMode,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		})
		if err != nil {
			logger.GetLogger().Fatal("❌ Postgres недоступен: %v", err)
		}
		defer db.Close()

		if err := postgres.EnsureSchema(db); err != nil {
			logger.GetLogger().Fatal("❌ Не удалось подготовить схему: %v", err)
		}

		history = context_history_repo.NewRepository(db)
		logger.Info("✅ Postgres подключен (%s:%d/%s)",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)
	} else {
		logger.Warn("⚠️ История контекстов выключена (DB_ENABLED=false)")
	}

	// ======================
	// ПАЙПЛАЙН АНАЛИЗА
	// ======================
	pipeline, err := analyzers.BuildPipeline(analyzers.PipelineConfig{
		Order: cfg.Analyzers.Order,
		Swing: analyzers.SwingConfig{
			Lookback:    cfg.Analyzers.Swing.Lookback,
			MinStrength: cfg.Analyzers.Swing.MinStrength,
		},
		Trend: analyzers.TrendConfig{
			Lookback: cfg.Analyzers.Trend.Lookback,
		},
		Range: analyzers.RangeConfig{
			MinTouches:   cfg.Analyzers.Range.MinTouches,
			MinRangeSize: cfg.Analyzers.Range.MinRangeSize,
			MaxLookback:  cfg.Analyzers.Range.MaxLookback,
		},
		Fibonacci: analyzers.FibonacciConfig{
			BufferPercent: cfg.Analyzers.Fibonacci.BufferPercent,
		},
	})
	if err != nil {
		logger.GetLogger().Fatal("❌ Ошибка сборки пайплайна: %v", err)
	}
	logger.Info("✅ Пайплайн собран: %v", cfg.Analyzers.Order)

	contextEngine := engine.NewContextEngine(pipeline, cache, history, engine.Config{
		CacheTTL:       cfg.Redis.ContextTTL,
		OpTimeout:      cfg.Engine.OpTimeout,
		HistoryRetries: cfg.Engine.HistoryRetries,
		RetryDelay:     cfg.Engine.RetryDelay,
	})

	// ======================
	// ШИНА СОБЫТИЙ
	// ======================
	eventBus := events.NewEventBus(events.Config{
		BufferSize:  cfg.EventBus.BufferSize,
		WorkerCount: cfg.EventBus.WorkerCount,
		MaxRetries:  cfg.EventBus.MaxRetries,
		RetryDelay:  cfg.EventBus.RetryDelay,
	})

	contextUpdater := events.NewBaseSubscriber(
		"context_engine",
		[]types.EventType{types.EventCandleClosed},
		func(event types.Event) error {
			data, ok := event.Data.(types.CandleClosedData)
			if !ok {
				logger.Warn("⚠️ Неожиданный тип данных в %s: %T", event.Type, event.Data)
				return nil
			}

			mc, err := contextEngine.UpdateContext(ctx,
				data.Symbol, data.Timeframe, data.Candles, data.Exchange)
			if err != nil {
				return err
			}
			if mc == nil {
				return nil
			}

			return eventBus.Publish(events.NewEvent(
				types.EventContextUpdated, "context_engine", mc))
		},
	)
	eventBus.Subscribe(types.EventCandleClosed, contextUpdater)

	eventBus.Start()
	defer eventBus.Stop()

	if err := eventBus.Publish(events.NewEvent(types.EventSystemStarted, "main", nil)); err != nil {
		logger.Warn("⚠️ Событие запуска не опубликовано: %v", err)
	}

	// ======================
	// ОЖИДАНИЕ ЗАВЕРШЕНИЯ
	// ======================
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	logger.Info("🛑 Получен сигнал %v, останавливаемся", sig)

	if err := eventBus.PublishSync(events.NewEvent(types.EventSystemStopped, "main", nil)); err != nil {
		logger.Warn("⚠️ Событие остановки не опубликовано: %v", err)
	}
}
