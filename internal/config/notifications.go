package config

import (
	"fmt"
	"log/slog"
	"time"
)

type Notifications struct {
	RabbitMQURL     string
	LogLevel        slog.Level
	ShutdownTimeout time.Duration
}

func LoadNotifications() (Notifications, error) {
	level, err := LoadLogLevel()
	if err != nil {
		return Notifications{}, err
	}

	cfg := Notifications{
		RabbitMQURL:     getEnv("RABBITMQ_URL", ""),
		LogLevel:        level,
		ShutdownTimeout: defaultShutdownTimeout,
	}

	if cfg.RabbitMQURL == "" {
		return Notifications{}, fmt.Errorf("RABBITMQ_URL is required")
	}

	return cfg, nil
}
