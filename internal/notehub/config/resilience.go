package config

import "time"

// ResilienceConfig представляет настройки повторов и Circuit Breaker.
// По умолчанию запрос выполняется один раз.
type ResilienceConfig struct {
	RetryMaxAttempts        int           `yaml:"retry_max_attempts" env:"NOTEHUB_RETRY_MAX_ATTEMPTS" env-default:"1"`
	RetryInitialBackoff     time.Duration `yaml:"retry_initial_backoff" env:"NOTEHUB_RETRY_INITIAL_BACKOFF" env-default:"100ms"`
	RetryMaxBackoff         time.Duration `yaml:"retry_max_backoff" env:"NOTEHUB_RETRY_MAX_BACKOFF" env-default:"1s"`
	BreakerErrorThreshold   int           `yaml:"breaker_error_threshold" env:"NOTEHUB_BREAKER_ERROR_THRESHOLD" env-default:"5"`
	BreakerTimeout          time.Duration `yaml:"breaker_timeout" env:"NOTEHUB_BREAKER_TIMEOUT" env-default:"10s"`
	BreakerSuccessThreshold int           `yaml:"breaker_success_threshold" env:"NOTEHUB_BREAKER_SUCCESS_THRESHOLD" env-default:"2"`
}
