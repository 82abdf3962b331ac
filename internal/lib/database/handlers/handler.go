package handlers

import (
	"gorm.io/gorm"
	"rollhook-bot/internal/lib/database/handlers/guildconfig"
	"rollhook-bot/internal/lib/database/handlers/history"
)

type DBHandlers struct {
	DB              *gorm.DB
	ConfigHandlers  *guildconfig.HandlerDBGuildConfig
	HistoryHandlers *history.HandlerDBHistory
}
