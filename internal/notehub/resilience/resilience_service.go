package resilience

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"notehub/internal/notehub/config"
	"notehub/internal/notehub/ports/api"
	"notehub/pkg/logger"
)

// LogExecuteOperation сообщение о запуске операции с отказоустойчивостью.
const LogExecuteOperation = "executing operation with resilience"

// ServiceResilience объединяет Circuit Breaker и повторы для вызовов одного сервиса.
type ServiceResilience struct {
	serviceName    string
	circuitBreaker *CircuitBreaker
	retry          *Retry
}

// NewServiceResilience создает обертку с явными настройками.
func NewServiceResilience(serviceName string, cb CircuitBreakerConfig, retry RetryConfig) *ServiceResilience {
	return &ServiceResilience{
		serviceName:    serviceName,
		circuitBreaker: NewCircuitBreaker(serviceName, cb),
		retry:          NewRetry(serviceName, retry),
	}
}

// FromConfig строит обертку из конфигурации клиента.
func FromConfig(serviceName string, cfg config.ResilienceConfig) *ServiceResilience {
	retry := DefaultRetryConfig()
	retry.MaxAttempts = cfg.RetryMaxAttempts
	retry.InitialBackoff = cfg.RetryInitialBackoff
	retry.MaxBackoff = cfg.RetryMaxBackoff

	cb := CircuitBreakerConfig{
		ErrorThreshold:   cfg.BreakerErrorThreshold,
		Timeout:          cfg.BreakerTimeout,
		SuccessThreshold: cfg.BreakerSuccessThreshold,
		IsFailure:        isServiceFailure,
	}
	return NewServiceResilience(serviceName, cb, retry)
}

// isServiceFailure не считает отказом клиентские ошибки вроде 404 или отмены контекста.
func isServiceFailure(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	return api.IsRetryable(err)
}

// State возвращает состояние Circuit Breaker.
func (r *ServiceResilience) State() CircuitState {
	return r.circuitBreaker.State()
}

// Execute выполняет операцию с отказоустойчивостью.
func (r *ServiceResilience) Execute(ctx context.Context, operationName string, operation func() error) error {
	logger.Log(ctx).Debug(ctx, LogExecuteOperation,
		zap.String("service", r.serviceName),
		zap.String("operation", operationName))

	return r.circuitBreaker.Execute(ctx, func() error {
		return r.retry.Execute(ctx, operation)
	})
}

// Do выполняет операцию с результатом.
func Do[T any](ctx context.Context, r *ServiceResilience, operationName string, operation func() (T, error)) (T, error) {
	var result T
	err := r.Execute(ctx, operationName, func() error {
		var err error
		result, err = operation()
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
