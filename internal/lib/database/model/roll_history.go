package modeldb

import "time"

// RollHistory только дописывается, бот никогда не меняет и не удаляет строки.
type RollHistory struct {
	ID            uint   `gorm:"primaryKey"`
	GuildID       string `gorm:"not null;index"`
	CharacterName string `gorm:"not null"`
	RoomName      string `gorm:"not null"`
	DiceRoll      string `gorm:"not null"`
	Expression    string `gorm:"not null"`
	Result        int    `gorm:"not null"`
	Crit          int    `gorm:"not null;default:0"`
	CreatedAt     time.Time
}
