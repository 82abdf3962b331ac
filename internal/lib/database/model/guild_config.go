package modeldb

import "time"

type GuildConfig struct {
	GuildID       string `gorm:"primaryKey"`
	DumpChannelID string `gorm:"not null"`
	UpdatedAt     time.Time
}
