package model

// Destination описывает, куда относится сообщение: обычный канал или ветка.
// Вебхуки живут только на каналах, поэтому ветка всегда помнит родителя.
type Destination struct {
	// ChannelID канал, которому принадлежит вебхук (для ветки это родитель)
	ChannelID string
	// ThreadID пустой для обычного канала
	ThreadID string
}

func ChannelDestination(channelID string) Destination {
	return Destination{ChannelID: channelID}
}

func ThreadDestination(threadID, parentID string) Destination {
	return Destination{ChannelID: parentID, ThreadID: threadID}
}

func (d Destination) IsThread() bool {
	return d.ThreadID != ""
}

// MessageChannelID возвращает id, под которым сообщения видны в чате:
// id ветки для ветки, id канала иначе.
func (d Destination) MessageChannelID() string {
	if d.IsThread() {
		return d.ThreadID
	}
	return d.ChannelID
}
