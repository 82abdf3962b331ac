package guildconfig

import (
	"errors"
	"gorm.io/gorm"
	modeldb "rollhook-bot/internal/lib/database/model"
)

// GetConfig возвращает nil без ошибки, если сервер еще не настроен.
func (h *HandlerDBGuildConfig) GetConfig(guildID string) (*modeldb.GuildConfig, error) {
	var config modeldb.GuildConfig
	err := h.DB.Where("guild_id = ?", guildID).First(&config).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &config, nil
}
