package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Категории ошибок клиента.
var (
	ErrNetwork         = errors.New("network error")
	ErrServer          = errors.New("server error")
	ErrInvalidResponse = errors.New("invalid response body")
	ErrInvalidArgument = errors.New("invalid argument")
)

// NetworkError ошибка транспорта: запрос не получил HTTP-ответа.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrNetwork, e.Err)
}

func (e *NetworkError) Unwrap() []error {
	return []error{ErrNetwork, e.Err}
}

// ServerError ответ сервера с кодом вне диапазона 2xx.
type ServerError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s: %s: status %d: %s", e.Op, ErrServer, e.StatusCode, msg)
}

func (e *ServerError) Unwrap() error {
	return ErrServer
}

// Temporary сообщает, имеет ли смысл повторить запрос.
func (e *ServerError) Temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError
}

// IsRetryable истинно для сетевых ошибок и временных ответов сервера.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrNetwork) {
		return true
	}
	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return serverErr.Temporary()
	}
	return false
}
