package database

import (
	"fmt"
	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"os"
	"rollhook-bot/internal/lib/database/handlers"
	"rollhook-bot/internal/lib/database/handlers/guildconfig"
	"rollhook-bot/internal/lib/database/handlers/history"
	modeldb "rollhook-bot/internal/lib/database/model"
	"rollhook-bot/logging"
	"time"
)

func InitDB(dbFilePath string) (*handlers.DBHandlers, error) {
	// Создаем файл базы данных, если он не существует
	if _, err := os.Stat(dbFilePath); os.IsNotExist(err) {
		logging.Log("Database", logrus.InfoLevel, fmt.Sprintf("Создание базы данных по адресу: %s", dbFilePath))
		file, err := os.Create(dbFilePath)
		if err != nil {
			return nil, fmt.Errorf("создание файла базы данных: %w", err)
		}
		file.Close()
	}

	// Запросы GORM пишем в общий лог, только медленные и ошибочные
	newLogger := logger.New(
		logging.Writer("Database"),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(dbFilePath), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("подключение к базе данных: %w", err)
	}

	// Автомиграция моделей
	err = db.AutoMigrate(&modeldb.GuildConfig{}, &modeldb.RollHistory{})
	if err != nil {
		return nil, fmt.Errorf("автомиграция моделей: %w", err)
	}

	logging.Log("Database", logrus.InfoLevel, "База данных готова к работе")

	return &handlers.DBHandlers{
		DB:              db,
		ConfigHandlers:  guildconfig.NewHandlerDBGuildConfig(db),
		HistoryHandlers: history.NewHandlerDBHistory(db),
	}, nil
}

// Close закрывает пул соединений.
func Close(h *handlers.DBHandlers) error {
	sqlDB, err := h.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
