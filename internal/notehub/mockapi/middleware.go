package mockapi

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"notehub/pkg/logger"
)

// Константы для логирования.
const (
	LogRequestStarted   = "mock api: request started"
	LogRequestCompleted = "mock api: request completed"
	LogRequestFailed    = "mock api: request failed"
	LogServerPanic      = "mock api: server panic"

	LogStoreFailure     = "mock api: store failure"

	MsgUnauthorized = "Unauthorized"
	MsgInternal     = "Internal Server Error"
)

// requestContextKey ключ Locals для контекста с request id.
const requestContextKey = "requestContext"

// requestContext возвращает контекст запроса с request id, сохраненный логирующим middleware.
func requestContext(ctx fiber.Ctx) context.Context {
	if requestCtx, ok := ctx.Locals(requestContextKey).(context.Context); ok {
		return requestCtx
	}
	return ctx.Context()
}

// newLoggerMiddleware логирует каждый запрос с request id и передает его обработчикам.
func newLoggerMiddleware(base *logger.Logger) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		requestCtx := logger.NewRequestIDContext(ctx.Context(), ctx.Get("X-Request-ID"))
		ctx.Locals(requestContextKey, requestCtx)
		start := time.Now()

		log := base.With(
			zap.String("path", ctx.Path()),
			zap.String("method", ctx.Method()),
		)
		log.Debug(requestCtx, LogRequestStarted)

		err := ctx.Next()

		fields := []zap.Field{
			zap.Int("status", ctx.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
		}
		if err != nil {
			log.Error(requestCtx, LogRequestFailed, append(fields, zap.Error(err))...)
			return fmt.Errorf("request processing error: %w", err)
		}

		log.Info(requestCtx, LogRequestCompleted, fields...)
		return nil
	}
}

// newRecoveryMiddleware превращает панику обработчика в ответ 500.
func newRecoveryMiddleware(base *logger.Logger) fiber.Handler {
	return func(ctx fiber.Ctx) (err error) {
		requestCtx := requestContext(ctx)

		defer func() {
			if r := recover(); r != nil {
				base.Error(requestCtx, LogServerPanic,
					zap.String("error", fmt.Sprintf("%v", r)),
					zap.String("stack", string(debug.Stack())),
				)
				err = writeError(ctx, fiber.StatusInternalServerError, MsgInternal)
			}
		}()

		return ctx.Next()
	}
}

// newAuthMiddleware требует Bearer-токен, если он задан.
func newAuthMiddleware(token string) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		if token == "" {
			return ctx.Next()
		}

		got, ok := strings.CutPrefix(ctx.Get("Authorization"), "Bearer ")
		if !ok || got != token {
			return writeError(ctx, fiber.StatusUnauthorized, MsgUnauthorized)
		}
		return ctx.Next()
	}
}

func writeError(ctx fiber.Ctx, status int, msg string) error {
	if err := ctx.Status(status).JSON(fiber.Map{"message": msg}); err != nil {
		return fmt.Errorf("failed to send error response: %w", err)
	}
	return nil
}
