package history

import modeldb "rollhook-bot/internal/lib/database/model"

// GetHistoryByGuild отдает последние броски сервера, новые первыми.
// limit <= 0 снимает ограничение.
func (h *HandlerDBHistory) GetHistoryByGuild(guildID string, limit int) ([]modeldb.RollHistory, error) {
	var records []modeldb.RollHistory
	query := h.DB.Where("guild_id = ?", guildID).Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
