package guildconfig

import "gorm.io/gorm"

type HandlerDBGuildConfig struct {
	DB *gorm.DB
}

func NewHandlerDBGuildConfig(db *gorm.DB) *HandlerDBGuildConfig {
	return &HandlerDBGuildConfig{DB: db}
}
