package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"discord-chat-importer/cmd/bot/config"
	"discord-chat-importer/internal/bot"
	"discord-chat-importer/internal/httpapi"
	"discord-chat-importer/internal/log"
	"discord-chat-importer/internal/pkg/term"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application run failed", "error", err)
		os.Exit(1)
	}
}

// run инкапсулирует всю логику инициализации и запуска приложения.
func run() error {
	// 1. Загрузка и валидация конфигурации
	cfg, err := config.LoadBotConfig("bot_config.yml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load bot config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to validate bot config: %v\n", err)
		os.Exit(1)
	}

	// 2. Инициализация логгера с маскировкой токенов
	var level slog.Level
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	switch cfg.Logging.Format {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	default:
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	logger := log.NewMaskedLogger(handler)
	slog.SetDefault(logger)

	// 3. Получение токена: конфигурация/окружение, иначе интерактивный запрос
	token := cfg.Token
	if token == "" {
		terminal := term.NewTerminal()
		token, err = terminal.Token()
		if err != nil {
			return fmt.Errorf("failed to acquire token: %w", err)
		}
		if err := term.SaveToken(".env", token); err != nil {
			logger.Warn("не удалось сохранить токен в .env", "error", err)
		}
	}

	// 4. Инициализация бота
	delay := time.Duration(cfg.MessageDelayMS) * time.Millisecond
	b, err := bot.NewBot(token, delay, logger)
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	appCtx, appCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer appCancel()

	// 5. Статусный HTTP-сервер (опционально)
	if cfg.HTTP.Enabled {
		statusServer := httpapi.New(cfg.HTTP.Addr, b.Registry(), logger)
		go func() {
			if err := statusServer.Start(); err != nil {
				logger.Error("статусный сервер завершился с ошибкой", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = statusServer.Shutdown(shutdownCtx)
		}()
	}

	// 6. Запуск бота до сигнала завершения
	if err := b.Start(appCtx); err != nil {
		return fmt.Errorf("bot stopped with error: %w", err)
	}
	return nil
}
