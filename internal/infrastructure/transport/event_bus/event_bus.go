// internal/infrastructure/transport/event_bus/event_bus.go
package events

import (
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"crypto-market-context/internal/types"
	"crypto-market-context/pkg/logger"
)

// EventBus - центральная шина событий: транспорт "свеча закрыта" ->
// движок контекста и "контекст обновлён" -> подписчики-стратегии
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[types.EventType][]types.EventSubscriber
	eventBuffer chan types.Event
	metrics     *types.EventBusMetrics
	config      Config
	running     bool
	stopChan    chan struct{}
	wg          sync.WaitGroup
}

// Config - конфигурация EventBus
type Config struct {
	BufferSize  int           `json:"buffer_size"`
	WorkerCount int           `json:"worker_count"`
	MaxRetries  int           `json:"max_retries"`
	RetryDelay  time.Duration `json:"retry_delay"`
}

// DefaultConfig - конфигурация по умолчанию
var DefaultConfig = Config{
	BufferSize:  1000,
	WorkerCount: 10,
	MaxRetries:  3,
	RetryDelay:  100 * time.Millisecond,
}

// NewEventBus создает новую шину событий
func NewEventBus(config ...Config) *EventBus {
	cfg := DefaultConfig
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultConfig.BufferSize
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = DefaultConfig.WorkerCount
	}

	return &EventBus{
		subscribers: make(map[types.EventType][]types.EventSubscriber),
		eventBuffer: make(chan types.Event, cfg.BufferSize),
		metrics: &types.EventBusMetrics{
			SubscribersCount: make(map[types.EventType]int),
		},
		config:   cfg,
		stopChan: make(chan struct{}),
	}
}

// NewEvent собирает событие с uuid и текущим временем
func NewEvent(eventType types.EventType, source string, data interface{}) types.Event {
	return types.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    source,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// Start запускает EventBus
func (b *EventBus) Start() {
	if b.running {
		return
	}
	b.running = true

	for i := 0; i < b.config.WorkerCount; i++ {
		b.wg.Add(1)
		go b.eventWorker(i)
	}

	logger.Info("🚀 EventBus запущен с %d обработчиками", b.config.WorkerCount)
}

// Stop останавливает EventBus
func (b *EventBus) Stop() {
	if !b.running {
		return
	}
	b.running = false

	close(b.stopChan)
	b.wg.Wait()

	logger.Info("🛑 EventBus остановлен")
}

// Subscribe подписывает обработчик на тип события
func (b *EventBus) Subscribe(eventType types.EventType, subscriber types.EventSubscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers[eventType] = append(b.subscribers[eventType], subscriber)

	b.metrics.Mu.Lock()
	b.metrics.SubscribersCount[eventType] = len(b.subscribers[eventType])
	b.metrics.Mu.Unlock()

	logger.Debug("📬 %s подписался на %s", subscriber.GetName(), eventType)
}

// Unsubscribe отписывает обработчика от типа события
func (b *EventBus) Unsubscribe(eventType types.EventType, subscriber types.EventSubscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[eventType]
	for i, s := range subs {
		if s == subscriber {
			b.subscribers[eventType] = append(subs[:i], subs[i+1:]...)
			break
		}
	}

	b.metrics.Mu.Lock()
	b.metrics.SubscribersCount[eventType] = len(b.subscribers[eventType])
	b.metrics.Mu.Unlock()
}

// Publish публикует событие асинхронно
func (b *EventBus) Publish(event types.Event) error {
	if !b.running {
		return fmt.Errorf("EventBus не запущен")
	}

	select {
	case b.eventBuffer <- event:
		b.metrics.Mu.Lock()
		b.metrics.EventsPublished++
		b.metrics.Mu.Unlock()
		return nil
	default:
		return fmt.Errorf("буфер событий переполнен (size=%d)", b.config.BufferSize)
	}
}

// PublishSync публикует событие синхронно, минуя буфер
func (b *EventBus) PublishSync(event types.Event) error {
	b.metrics.Mu.Lock()
	b.metrics.EventsPublished++
	b.metrics.Mu.Unlock()

	b.dispatch(event)
	return nil
}

// GetMetrics возвращает метрики шины
func (b *EventBus) GetMetrics() *types.EventBusMetrics {
	return b.metrics
}

// eventWorker обрабатывает события из буфера
func (b *EventBus) eventWorker(id int) {
	defer b.wg.Done()

	for {
		select {
		case event := <-b.eventBuffer:
			b.dispatch(event)
		case <-b.stopChan:
			logger.Debug("🔄 EventBus: воркер %d остановлен", id)
			return
		}
	}
}

// dispatch доставляет событие всем подписчикам типа с повторами
func (b *EventBus) dispatch(event types.Event) {
	b.mu.RLock()
	subs := append([]types.EventSubscriber(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	for _, sub := range subs {
		if err := b.deliver(event, sub); err != nil {
			b.metrics.Mu.Lock()
			b.metrics.EventsFailed++
			b.metrics.Mu.Unlock()

			logger.Error("❌ Событие %s (%s) не доставлено %s: %v",
				event.Type, event.ID, sub.GetName(), err)
			continue
		}

		b.metrics.Mu.Lock()
		b.metrics.EventsProcessed++
		b.metrics.Mu.Unlock()
	}
}

// deliver вызывает обработчик с повторами и перехватом паники
func (b *EventBus) deliver(event types.Event, sub types.EventSubscriber) error {
	var lastErr error

	for attempt := 0; attempt <= b.config.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(b.config.RetryDelay)
		}

		lastErr = b.safeHandle(event, sub)
		if lastErr == nil {
			return nil
		}
	}

	return lastErr
}

// safeHandle перехватывает панику обработчика
func (b *EventBus) safeHandle(event types.Event, sub types.EventSubscriber) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("паника в подписчике %s: %v\n%s",
				sub.GetName(), r, debug.Stack())
		}
	}()

	return sub.HandleEvent(event)
}
