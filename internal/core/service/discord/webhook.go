package discord

import (
	"context"
	"fmt"
	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
	"rollhook-bot/internal/core/model"
	"rollhook-bot/internal/lib/keylock"
	"rollhook-bot/logging"
)

// HookManager находит или создает именной вебхук канала и публикует через него.
type HookManager struct {
	platform Platform
	locks    *keylock.KeyLock
}

func NewHookManager(platform Platform) *HookManager {
	return &HookManager{platform: platform, locks: keylock.New()}
}

// ResolveOrCreate возвращает первый вебхук канала с нужным именем и токеном,
// иначе создает новый. Вызовы для одного канала выполняются по очереди,
// поэтому дубликаты не появляются. channelID всегда канал, не ветка.
func (h *HookManager) ResolveOrCreate(ctx context.Context, channelID, name string) (*discordgo.Webhook, error) {
	unlock := h.locks.Lock(channelID)
	defer unlock()

	hooks, err := h.platform.ChannelWebhooks(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("%w: список вебхуков канала %s: %v", model.ErrIdentityUnavailable, channelID, err)
	}
	for _, hook := range hooks {
		if hook.Name == name && hook.Token != "" {
			return hook, nil
		}
	}

	hook, err := h.platform.WebhookCreate(ctx, channelID, name)
	if err != nil {
		return nil, fmt.Errorf("%w: создание вебхука в канале %s: %v", model.ErrIdentityUnavailable, channelID, err)
	}
	logging.Log("Discord", logrus.InfoLevel, fmt.Sprintf("Создан вебхук %s в канале %s", name, channelID))
	return hook, nil
}

// Lookup получает вебхук по id. Если Discord отдал его без токена,
// токен ищется в списке вебхуков канала.
func (h *HookManager) Lookup(ctx context.Context, webhookID string) (*discordgo.Webhook, error) {
	hook, err := h.platform.Webhook(ctx, webhookID)
	if err != nil {
		return nil, fmt.Errorf("%w: вебхук %s: %v", model.ErrIdentityUnavailable, webhookID, err)
	}
	if hook.Token != "" || hook.ChannelID == "" {
		return hook, nil
	}

	hooks, err := h.platform.ChannelWebhooks(ctx, hook.ChannelID)
	if err != nil {
		return hook, nil
	}
	for _, candidate := range hooks {
		if candidate.ID == hook.ID && candidate.Token != "" {
			return candidate, nil
		}
	}
	return hook, nil
}

// Publish публикует content от имени персонажа; для ветки используется
// вебхук родительского канала.
func (h *HookManager) Publish(ctx context.Context, hook *discordgo.Webhook, dest model.Destination, content, username, avatarURL string) (*discordgo.Message, error) {
	return h.platform.WebhookExecute(ctx, hook, dest.ThreadID, &discordgo.WebhookParams{
		Content:   content,
		Username:  username,
		AvatarURL: avatarURL,
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeUsers, discordgo.AllowedMentionTypeRoles},
		},
	})
}

func (h *HookManager) Edit(ctx context.Context, hook *discordgo.Webhook, dest model.Destination, messageID, content string) error {
	if hook.Token == "" {
		return fmt.Errorf("%w: у вебхука %s нет токена", model.ErrIdentityUnavailable, hook.ID)
	}
	return h.platform.WebhookMessageEdit(ctx, hook, dest.ThreadID, messageID, content)
}

func (h *HookManager) Delete(ctx context.Context, hook *discordgo.Webhook, dest model.Destination, messageID string) error {
	if hook.Token == "" {
		return fmt.Errorf("%w: у вебхука %s нет токена", model.ErrIdentityUnavailable, hook.ID)
	}
	return h.platform.WebhookMessageDelete(ctx, hook, dest.ThreadID, messageID)
}
