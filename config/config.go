package config

import (
	"fmt"
	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"rollhook-bot/logging"
	"time"
)

type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN" validate:"required"`

	// Имя вебхука, через который прокси-бот (Tupperbox) публикует персонажей
	ProxyHookName string `env:"PROXY_HOOK_NAME" envDefault:"Tupperhook" validate:"required"`
	// Имя собственного вебхука; пустое значение означает "<имя приложения>hook"
	RelayHookName string `env:"RELAY_HOOK_NAME"`

	CommandPrefix     string `env:"COMMAND_PREFIX" envDefault:";;" validate:"required"`
	EditCommandPrefix string `env:"EDIT_COMMAND_PREFIX" envDefault:"tul!edit" validate:"required"`
	ProxyBotID        string `env:"PROXY_BOT_ID" envDefault:"431544605209788416" validate:"required,numeric"`
	ProxyBotErrorText string `env:"PROXY_BOT_ERROR_TEXT" envDefault:"That message was not sent by one of your registered characters."`

	EditTimeout  time.Duration `env:"EDIT_TIMEOUT" envDefault:"300s" validate:"min=1s"`
	ProbeTimeout time.Duration `env:"PROBE_TIMEOUT" envDefault:"10s" validate:"min=100ms"`

	DatabasePath     string `env:"DATABASE_PATH" envDefault:"rollhook.db" validate:"required"`
	HistoryWorkers   int    `env:"HISTORY_WORKERS" envDefault:"2" validate:"min=1,max=32"`
	HistoryQueueSize int    `env:"HISTORY_QUEUE_SIZE" envDefault:"256" validate:"min=1"`
	HistoryAttempts  int    `env:"HISTORY_ATTEMPTS" envDefault:"2" validate:"min=1,max=10"`

	MetricsAddr string `env:"METRICS_ADDR" validate:"omitempty,hostname_port"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	LogDir      string `env:"LOG_DIR" envDefault:"logs"`
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		logging.Log("Система", logrus.WarnLevel, "Файл .env не найден, используются переменные окружения")
	}

	config, err := Parse()
	if err != nil {
		logging.Log("Система", logrus.PanicLevel, fmt.Sprintf("Ошибка загрузки конфигурации: %v", err))
	}

	return config
}

// Parse читает конфигурацию из окружения и проверяет ее.
func Parse() (*Config, error) {
	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("разбор окружения: %w", err)
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("проверка конфигурации: %w", err)
	}

	return config, nil
}
