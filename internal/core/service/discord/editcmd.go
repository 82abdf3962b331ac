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

// EditByCommand правка ответом с префиксом команды прокси-бота.
// Прокси-бот тоже видит команду и отвечает ошибкой, раз сообщение не его;
// этот ответ ловится и удаляется.
func (r *Relay) EditByCommand(ctx context.Context, m *discordgo.Message) error {
	channelID := m.ChannelID
	// ответ прокси-бота может прийти раньше, чем мы проверим цель
	probe := r.waiter.Register(func(reply *discordgo.Message) bool {
		return reply.Author != nil && reply.Author.ID == r.opts.ProxyBotID &&
			reply.ChannelID == channelID && reply.Content == r.opts.ProxyBotErrorText
	})

	refChannel := m.MessageReference.ChannelID
	if refChannel == "" {
		refChannel = channelID
	}
	target, err := r.resolveRelayTarget(ctx, refChannel, m.MessageReference.MessageID)
	if err != nil {
		probe.Cancel()
		return err
	}

	text := strings.TrimSpace(strings.TrimPrefix(m.Content, r.opts.EditCommandPrefix))
	if text == "" {
		probe.Cancel()
		return fmt.Errorf("%w: пустой текст правки", model.ErrNotEditable)
	}

	unlock, ok := r.edits.TryLock(target.message.ID)
	if !ok {
		probe.Cancel()
		r.directMessage(ctx, m.Author.ID, msgEditBusy)
		return fmt.Errorf("%w: %s", model.ErrEditInProgress, target.message.ID)
	}
	defer unlock()

	if err := r.platform.ChannelMessageDelete(ctx, channelID, m.ID); err != nil {
		logging.Log("Relay", logrus.WarnLevel, fmt.Sprintf("Не удалось удалить команду правки %s: %v", m.ID, err))
	}

	r.suppressProxyError(ctx, probe, channelID)

	_, suffix, ok := SplitDumpLink(target.message.Content)
	if !ok {
		r.directMessage(ctx, m.Author.ID, msgNotEditable)
		return fmt.Errorf("%w: %s", model.ErrNotEditable, target.message.ID)
	}
	if err := r.hooks.Edit(ctx, target.hook, target.dest, target.message.ID, text+suffix); err != nil {
		return fmt.Errorf("правка %s: %w", target.message.ID, err)
	}

	logging.Log("Relay", logrus.InfoLevel, fmt.Sprintf("Сообщение %s изменено командой пользователя %s", target.message.ID, m.Author.ID))
	return nil
}

// suppressProxyError ждет ответ прокси-бота не дольше ProbeTimeout и удаляет его.
// Если ответа нет, правка продолжается.
func (r *Relay) suppressProxyError(ctx context.Context, probe *Pending, channelID string) {
	reply, err := probe.Wait(ctx, r.opts.ProbeTimeout)
	if err != nil {
		if !errors.Is(err, model.ErrTimeout) {
			logging.Log("Relay", logrus.DebugLevel, fmt.Sprintf("Ожидание ответа прокси-бота прервано: %v", err))
		}
		return
	}
	if err := r.platform.ChannelMessageDelete(ctx, channelID, reply.ID); err != nil {
		logging.Log("Relay", logrus.WarnLevel, fmt.Sprintf("Не удалось удалить ответ прокси-бота %s: %v", reply.ID, err))
	}
}
