package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"notehub/pkg/logger"
)

// Константы для переменных окружения.
const (
	EnvLoggerMode  = "NOTEHUB_LOGGER_MODE"
	EnvLoggerLevel = "NOTEHUB_LOGGER_LEVEL"
)

// Константы для сообщений об ошибках.
const (
	ErrInitLogger    = "failed to initialize logger"
	ErrSyncLogger    = "failed to sync logger"
	ErrCommandFailed = "command failed"
)

// Константы для игнорируемых ошибок.
const (
	ErrSyncStderr = "sync /dev/stderr: invalid argument"
	ErrSyncStdout = "sync /dev/stdout: invalid argument"
)

func main() {
	env := logger.Production
	if strings.ToLower(os.Getenv(EnvLoggerMode)) == "development" {
		env = logger.Development
	}

	log, err := logger.NewLogger(env, os.Getenv(EnvLoggerLevel))
	if err != nil {
		panic(ErrInitLogger + ": " + err.Error())
	}
	logger.SetGlobalLogger(log)

	var exitCode int

	func() {
		defer func() {
			if err := logger.Log(context.Background()).Sync(); err != nil {
				errMsg := err.Error()
				if strings.Contains(errMsg, ErrSyncStderr) || strings.Contains(errMsg, ErrSyncStdout) {
					return
				}
				if _, writeErr := fmt.Fprintf(os.Stderr, "%s: %v\n", ErrSyncLogger, err); writeErr != nil {
					panic(writeErr)
				}
			}
		}()

		ctx := logger.NewRequestIDContext(context.Background(), "")
		if err := rootCmd.ExecuteContext(ctx); err != nil {
			logger.Log(ctx).Debug(ctx, ErrCommandFailed, zap.Error(err))
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = 1
		}
	}()

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
