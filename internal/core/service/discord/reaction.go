package discord

import (
	"context"
	"errors"
	"fmt"
	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
	"rollhook-bot/internal/core/model"
	"rollhook-bot/logging"
	"strings"
)

// relayTarget сообщение, опубликованное нашим вебхуком, и все, что нужно для его правки.
type relayTarget struct {
	message *discordgo.Message
	hook    *discordgo.Webhook
	dest    model.Destination
}

// resolveRelayTarget находит сообщение и проверяет, что его опубликовал
// вебхук бота. Любое другое сообщение дает ErrNotEligible.
func (r *Relay) resolveRelayTarget(ctx context.Context, channelID, messageID string) (*relayTarget, error) {
	msg, err := r.platform.ChannelMessage(ctx, channelID, messageID)
	if err != nil {
		return nil, fmt.Errorf("%w: сообщение %s недоступно: %v", model.ErrNotEligible, messageID, err)
	}
	if msg.WebhookID == "" {
		return nil, model.ErrNotEligible
	}

	hook, err := r.hooks.Lookup(ctx, msg.WebhookID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrNotEligible, err)
	}
	if hook.Name != r.opts.RelayHookName {
		return nil, fmt.Errorf("%w: вебхук %q", model.ErrNotEligible, hook.Name)
	}

	channel, err := r.platform.Channel(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("канал %s: %w", channelID, err)
	}

	return &relayTarget{message: msg, hook: hook, dest: destinationOf(channel)}, nil
}

// DeleteByReaction удаляет сообщение бота по реакции ❌. Запись в дампе остается.
func (r *Relay) DeleteByReaction(ctx context.Context, reaction *discordgo.MessageReaction) error {
	target, err := r.resolveRelayTarget(ctx, reaction.ChannelID, reaction.MessageID)
	if err != nil {
		return err
	}
	if err := r.hooks.Delete(ctx, target.hook, target.dest, target.message.ID); err != nil {
		return fmt.Errorf("удаление %s: %w", target.message.ID, err)
	}
	logging.Log("Relay", logrus.InfoLevel, fmt.Sprintf("Сообщение %s удалено по реакции пользователя %s", target.message.ID, reaction.UserID))
	return nil
}

// EditByReaction правка по реакции 📝: бот пишет пользователю в личные
// сообщения и ждет новый текст не дольше EditTimeout.
func (r *Relay) EditByReaction(ctx context.Context, reaction *discordgo.MessageReaction) error {
	target, err := r.resolveRelayTarget(ctx, reaction.ChannelID, reaction.MessageID)
	if err != nil {
		return err
	}

	unlock, ok := r.edits.TryLock(target.message.ID)
	if !ok {
		r.directMessage(ctx, reaction.UserID, msgEditBusy)
		return fmt.Errorf("%w: %s", model.ErrEditInProgress, target.message.ID)
	}
	defer unlock()

	body, suffix, ok := SplitDumpLink(target.message.Content)
	if !ok {
		r.directMessage(ctx, reaction.UserID, msgNotEditable)
		return fmt.Errorf("%w: %s", model.ErrNotEditable, target.message.ID)
	}

	dm, err := r.platform.UserChannelCreate(ctx, reaction.UserID)
	if err != nil {
		return fmt.Errorf("личный канал пользователя %s: %w", reaction.UserID, err)
	}

	userID := reaction.UserID
	pending := r.waiter.Register(func(m *discordgo.Message) bool {
		return m.ChannelID == dm.ID && m.Author != nil && m.Author.ID == userID
	})

	jump := JumpURL(reaction.GuildID, target.dest.MessageChannelID(), target.message.ID)
	if _, err := r.platform.ChannelMessageSend(ctx, dm.ID, EditPrompt(jump, body, r.opts.EditTimeout)); err != nil {
		pending.Cancel()
		return fmt.Errorf("запрос правки пользователю %s: %w", userID, err)
	}

	reply, err := pending.Wait(ctx, r.opts.EditTimeout)
	if err != nil {
		if errors.Is(err, model.ErrTimeout) {
			r.notify(ctx, dm.ID, msgEditTimeout)
			r.clearReactions(ctx, reaction.ChannelID, target.message.ID)
		}
		return fmt.Errorf("правка %s: %w", target.message.ID, err)
	}

	r.clearReactions(ctx, reaction.ChannelID, target.message.ID)
	if err := r.hooks.Edit(ctx, target.hook, target.dest, target.message.ID, strings.TrimSpace(reply.Content)+suffix); err != nil {
		return fmt.Errorf("правка %s: %w", target.message.ID, err)
	}
	r.notify(ctx, dm.ID, msgEdited)

	logging.Log("Relay", logrus.InfoLevel, fmt.Sprintf("Сообщение %s изменено пользователем %s", target.message.ID, userID))
	return nil
}

func (r *Relay) clearReactions(ctx context.Context, channelID, messageID string) {
	if err := r.platform.MessageReactionsRemoveAll(ctx, channelID, messageID); err != nil {
		logging.Log("Relay", logrus.WarnLevel, fmt.Sprintf("Не удалось снять реакции с %s: %v", messageID, err))
	}
}

func (r *Relay) directMessage(ctx context.Context, userID, text string) {
	dm, err := r.platform.UserChannelCreate(ctx, userID)
	if err != nil {
		logging.Log("Relay", logrus.WarnLevel, fmt.Sprintf("Не удалось открыть личный канал с %s: %v", userID, err))
		return
	}
	r.notify(ctx, dm.ID, text)
}
