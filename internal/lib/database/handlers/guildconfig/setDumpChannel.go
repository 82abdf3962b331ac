package guildconfig

import (
	"gorm.io/gorm/clause"
	modeldb "rollhook-bot/internal/lib/database/model"
)

func (h *HandlerDBGuildConfig) SetDumpChannel(guildID string, dumpChannelID string) error {
	return h.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"dump_channel_id", "updated_at"}),
	}).Create(&modeldb.GuildConfig{GuildID: guildID, DumpChannelID: dumpChannelID}).Error
}
