// Package config предоставляет управление конфигурацией бота
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Logging содержит конфигурацию логирования
type Logging struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// HTTP содержит конфигурацию статусного HTTP-сервера
type HTTP struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// BotConfig содержит конфигурацию Discord-бота
type BotConfig struct {
	Token          string  `yaml:"token"`
	MessageDelayMS int     `yaml:"message_delay_ms"`
	Logging        Logging `yaml:"logging"`
	HTTP           HTTP    `yaml:"http"`
}

// Config является оберткой для соответствия структуре YAML файла.
type Config struct {
	Bot BotConfig `yaml:"bot"`
}

// LoadBotConfig загружает конфигурацию бота: сначала .env (если есть),
// затем YAML-файл, затем переменные окружения поверх.
func LoadBotConfig(filename string) (*BotConfig, error) {
	// .env файла может не быть — тогда полагаемся на окружение и YAML
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(filename)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read bot config file %s: %w", filename, err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bot config: %w", err)
	}

	botCfg := &cfg.Bot

	// Переменная окружения имеет приоритет над файлом
	if token := os.Getenv("DISCORD_TOKEN"); token != "" {
		botCfg.Token = token
	}

	// Устанавливаем значения по умолчанию
	if botCfg.MessageDelayMS == 0 {
		botCfg.MessageDelayMS = DefaultMessageDelayMS
	}
	if botCfg.Logging.Level == "" {
		botCfg.Logging.Level = DefaultLogLevel
	}
	if botCfg.Logging.Format == "" {
		botCfg.Logging.Format = DefaultLogFormat
	}
	if botCfg.HTTP.Addr == "" {
		botCfg.HTTP.Addr = DefaultHTTPAddr
	}

	return botCfg, nil
}

// Validate проверяет корректность конфигурации бота. Отсутствие токена не
// считается ошибкой: он может быть запрошен интерактивно.
func (c *BotConfig) Validate() error {
	if c.MessageDelayMS < 0 {
		return fmt.Errorf("bot.message_delay_ms must not be negative")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("bot.logging.level must be one of debug, info, warn, error")
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("bot.logging.format must be json or text")
	}
	return nil
}
