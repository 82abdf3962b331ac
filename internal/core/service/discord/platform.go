package discord

import (
	"context"
	"github.com/bwmarrin/discordgo"
)

// Platform минимальный набор вызовов Discord, нужный боту.
// В бою это сессия discordgo, в тестах подделка.
type Platform interface {
	Channel(ctx context.Context, channelID string) (*discordgo.Channel, error)
	ChannelMessage(ctx context.Context, channelID, messageID string) (*discordgo.Message, error)
	ChannelMessageSend(ctx context.Context, channelID, content string) (*discordgo.Message, error)
	ChannelMessageDelete(ctx context.Context, channelID, messageID string) error
	MessageReactionsRemoveAll(ctx context.Context, channelID, messageID string) error
	UserChannelCreate(ctx context.Context, userID string) (*discordgo.Channel, error)

	Webhook(ctx context.Context, webhookID string) (*discordgo.Webhook, error)
	ChannelWebhooks(ctx context.Context, channelID string) ([]*discordgo.Webhook, error)
	WebhookCreate(ctx context.Context, channelID, name string) (*discordgo.Webhook, error)
	// threadID пустой, если сообщение не в ветке
	WebhookExecute(ctx context.Context, hook *discordgo.Webhook, threadID string, params *discordgo.WebhookParams) (*discordgo.Message, error)
	WebhookMessageEdit(ctx context.Context, hook *discordgo.Webhook, threadID, messageID, content string) error
	WebhookMessageDelete(ctx context.Context, hook *discordgo.Webhook, threadID, messageID string) error
}

type sessionPlatform struct {
	session *discordgo.Session
}

func NewSessionPlatform(session *discordgo.Session) Platform {
	return &sessionPlatform{session: session}
}

func (p *sessionPlatform) Channel(ctx context.Context, channelID string) (*discordgo.Channel, error) {
	if ch, err := p.session.State.Channel(channelID); err == nil {
		return ch, nil
	}
	return p.session.Channel(channelID, discordgo.WithContext(ctx))
}

func (p *sessionPlatform) ChannelMessage(ctx context.Context, channelID, messageID string) (*discordgo.Message, error) {
	return p.session.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
}

func (p *sessionPlatform) ChannelMessageSend(ctx context.Context, channelID, content string) (*discordgo.Message, error) {
	return p.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
}

func (p *sessionPlatform) ChannelMessageDelete(ctx context.Context, channelID, messageID string) error {
	return p.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx))
}

func (p *sessionPlatform) MessageReactionsRemoveAll(ctx context.Context, channelID, messageID string) error {
	return p.session.MessageReactionsRemoveAll(channelID, messageID, discordgo.WithContext(ctx))
}

func (p *sessionPlatform) UserChannelCreate(ctx context.Context, userID string) (*discordgo.Channel, error) {
	return p.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
}

func (p *sessionPlatform) Webhook(ctx context.Context, webhookID string) (*discordgo.Webhook, error) {
	return p.session.Webhook(webhookID, discordgo.WithContext(ctx))
}

func (p *sessionPlatform) ChannelWebhooks(ctx context.Context, channelID string) ([]*discordgo.Webhook, error) {
	return p.session.ChannelWebhooks(channelID, discordgo.WithContext(ctx))
}

func (p *sessionPlatform) WebhookCreate(ctx context.Context, channelID, name string) (*discordgo.Webhook, error) {
	return p.session.WebhookCreate(channelID, name, "", discordgo.WithContext(ctx))
}

func (p *sessionPlatform) WebhookExecute(ctx context.Context, hook *discordgo.Webhook, threadID string, params *discordgo.WebhookParams) (*discordgo.Message, error) {
	if threadID != "" {
		return p.session.WebhookThreadExecute(hook.ID, hook.Token, true, threadID, params, discordgo.WithContext(ctx))
	}
	return p.session.WebhookExecute(hook.ID, hook.Token, true, params, discordgo.WithContext(ctx))
}

// В discordgo нет версий правки и удаления с thread_id, поэтому для веток
// запрос собирается вручную на тот же эндпоинт.
func (p *sessionPlatform) WebhookMessageEdit(ctx context.Context, hook *discordgo.Webhook, threadID, messageID, content string) error {
	data := &discordgo.WebhookEdit{Content: &content}
	if threadID == "" {
		_, err := p.session.WebhookMessageEdit(hook.ID, hook.Token, messageID, data, discordgo.WithContext(ctx))
		return err
	}

	uri := discordgo.EndpointWebhookMessage(hook.ID, hook.Token, messageID) + "?thread_id=" + threadID
	_, err := p.session.RequestWithBucketID("PATCH", uri, data, discordgo.EndpointWebhookToken("", ""), discordgo.WithContext(ctx))
	return err
}

func (p *sessionPlatform) WebhookMessageDelete(ctx context.Context, hook *discordgo.Webhook, threadID, messageID string) error {
	if threadID == "" {
		return p.session.WebhookMessageDelete(hook.ID, hook.Token, messageID, discordgo.WithContext(ctx))
	}

	uri := discordgo.EndpointWebhookMessage(hook.ID, hook.Token, messageID) + "?thread_id=" + threadID
	_, err := p.session.RequestWithBucketID("DELETE", uri, nil, discordgo.EndpointWebhookToken("", ""), discordgo.WithContext(ctx))
	return err
}
