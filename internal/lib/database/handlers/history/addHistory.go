package history

import modeldb "rollhook-bot/internal/lib/database/model"

func (h *HandlerDBHistory) AddHistory(record modeldb.RollHistory) error {
	return h.DB.Create(&record).Error
}
