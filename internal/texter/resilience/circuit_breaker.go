// Package resilience содержит механизмы отказоустойчивости внешних вызовов.
package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"texter/pkg/logger"
)

// CircuitState представляет состояние Circuit Breaker.
type CircuitState int

// Состояния Circuit Breaker.
const (
	StateClosed CircuitState = iota
	StateOpen
	StateHalfOpen
)

var stateNames = map[CircuitState]string{
	StateClosed:   "closed",
	StateOpen:     "open",
	StateHalfOpen: "half-open",
}

func (s CircuitState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Константы для логирования.
const (
	LogCircuitStateChange = "circuit breaker state changed"
	LogCircuitReject      = "circuit breaker rejected request"
	LogCircuitProbe       = "circuit breaker sending probe request"
)

// ErrCircuitOpen возвращается, пока Circuit Breaker не пропускает запросы.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerConfig содержит настройки Circuit Breaker.
type CircuitBreakerConfig struct {
	// ErrorThreshold - количество ошибок подряд до размыкания.
	ErrorThreshold int
	// Timeout - время в разомкнутом состоянии до пробного запроса.
	Timeout time.Duration
	// SuccessThreshold - количество успешных пробных запросов до замыкания.
	SuccessThreshold int
}

// DefaultCircuitBreakerConfig возвращает конфигурацию Circuit Breaker по умолчанию.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		ErrorThreshold:   5,
		Timeout:          30 * time.Second,
		SuccessThreshold: 2,
	}
}

// CircuitBreaker размыкается после серии ошибок зависимости. В полуоткрытом
// состоянии одновременно выполняется не более одного пробного запроса.
// Ошибки, помеченные ErrPermanent, не считаются отказом зависимости.
type CircuitBreaker struct {
	name   string
	config CircuitBreakerConfig
	now    func() time.Time

	mu        sync.Mutex
	state     CircuitState
	changedAt time.Time
	failures  int
	successes int
	probing   bool
}

// NewCircuitBreaker создает Circuit Breaker.
func NewCircuitBreaker(name string, config CircuitBreakerConfig) *CircuitBreaker {
	return NewCircuitBreakerWithClock(name, config, time.Now)
}

// NewCircuitBreakerWithClock создает Circuit Breaker с заданными часами.
func NewCircuitBreakerWithClock(name string, config CircuitBreakerConfig, now func() time.Time) *CircuitBreaker {
	config.ErrorThreshold = max(config.ErrorThreshold, 1)
	config.SuccessThreshold = max(config.SuccessThreshold, 1)
	return &CircuitBreaker{
		name:      name,
		config:    config,
		now:       now,
		state:     StateClosed,
		changedAt: now(),
	}
}

// Execute выполняет fn, если Circuit Breaker пропускает запрос, и учитывает результат.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func() error) error {
	if !cb.AllowRequest(ctx) {
		return ErrCircuitOpen
	}

	err := fn()
	cb.RecordResult(ctx, err)
	return err
}

// AllowRequest решает, пропустить ли запрос. Каждый пропущенный запрос
// должен завершаться вызовом RecordResult.
func (cb *CircuitBreaker) AllowRequest(ctx context.Context) bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen && cb.now().Sub(cb.changedAt) > cb.config.Timeout {
		cb.transition(ctx, StateHalfOpen)
	}

	switch cb.state {
	case StateClosed:
		return true
	case StateHalfOpen:
		if cb.probing {
			return false
		}
		cb.probing = true
		cb.log(ctx).Debug(ctx, LogCircuitProbe)
		return true
	default:
		cb.log(ctx).Debug(ctx, LogCircuitReject)
		return false
	}
}

// RecordResult учитывает результат запроса, пропущенного AllowRequest.
func (cb *CircuitBreaker) RecordResult(ctx context.Context, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.probing = false

	switch {
	case err == nil:
		cb.successes++
		cb.failures = 0
		if cb.state == StateHalfOpen && cb.successes >= cb.config.SuccessThreshold {
			cb.transition(ctx, StateClosed)
		}
	case errors.Is(err, ErrPermanent):
		// Зависимость ответила, отказ на стороне запроса.
	default:
		cb.failures++
		if cb.state == StateHalfOpen || cb.failures >= cb.config.ErrorThreshold {
			cb.transition(ctx, StateOpen)
		}
	}
}

func (cb *CircuitBreaker) transition(ctx context.Context, state CircuitState) {
	cb.log(ctx).Info(ctx, LogCircuitStateChange,
		zap.Stringer("new_state", state),
		zap.Int("failures", cb.failures))

	cb.state = state
	cb.changedAt = cb.now()
	cb.failures = 0
	cb.successes = 0
}

func (cb *CircuitBreaker) log(ctx context.Context) *logger.Logger {
	return logger.Log(ctx).With(
		zap.String("circuit_breaker", cb.name),
		zap.Stringer("circuit_state", cb.state),
	)
}

// GetState возвращает текущее состояние Circuit Breaker.
func (cb *CircuitBreaker) GetState() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
