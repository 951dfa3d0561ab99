package resilience

import (
	"context"

	"go.uber.org/zap"

	"texter/pkg/logger"
)

// Config объединяет настройки повторов и Circuit Breaker.
type Config struct {
	Retry   RetryConfig
	Breaker CircuitBreakerConfig
}

// DefaultConfig возвращает настройки по умолчанию.
func DefaultConfig() Config {
	return Config{
		Retry:   DefaultRetryConfig(),
		Breaker: DefaultCircuitBreakerConfig(),
	}
}

// ServiceResilience обеспечивает отказоустойчивость вызовов внешней зависимости.
type ServiceResilience struct {
	serviceName    string
	circuitBreaker *CircuitBreaker
	retry          *Retry
}

// NewServiceResilience создает обертку отказоустойчивости для сервиса.
func NewServiceResilience(serviceName string, cfg Config) *ServiceResilience {
	return &ServiceResilience{
		serviceName:    serviceName,
		circuitBreaker: NewCircuitBreaker(serviceName, cfg.Breaker),
		retry:          NewRetry(serviceName, cfg.Retry),
	}
}

// State возвращает состояние Circuit Breaker сервиса.
func (r *ServiceResilience) State() CircuitState {
	return r.circuitBreaker.GetState()
}

// ExecuteWithResilience выполняет операцию с повторами под защитой Circuit Breaker.
// Серия неудачных повторов считается одной ошибкой.
func (r *ServiceResilience) ExecuteWithResilience(
	ctx context.Context,
	operationName string,
	operation func(ctx context.Context) error,
) error {
	log := logger.Log(ctx).With(
		zap.String("service", r.serviceName),
		zap.String("operation", operationName),
	)
	log.Debug(ctx, "executing operation with resilience")

	return r.circuitBreaker.Execute(ctx, func() error {
		return r.retry.Execute(ctx, func() error {
			return operation(ctx)
		})
	})
}

// ExecuteWithResult выполняет операцию с результатом под защитой ServiceResilience.
func ExecuteWithResult[T any](
	ctx context.Context,
	r *ServiceResilience,
	operationName string,
	operation func(ctx context.Context) (T, error),
) (T, error) {
	var result T
	err := r.ExecuteWithResilience(ctx, operationName, func(ctx context.Context) error {
		var err error
		result, err = operation(ctx)
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
