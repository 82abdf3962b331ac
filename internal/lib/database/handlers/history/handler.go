package history

import "gorm.io/gorm"

type HandlerDBHistory struct {
	DB *gorm.DB
}

func NewHandlerDBHistory(db *gorm.DB) *HandlerDBHistory {
	return &HandlerDBHistory{DB: db}
}
