package discord

import (
	"context"
	"errors"
	"fmt"
	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
	"rollhook-bot/internal/core/model"
	"rollhook-bot/internal/core/service/roll"
	modeldb "rollhook-bot/internal/lib/database/model"
	"rollhook-bot/internal/lib/metrics"
	"rollhook-bot/logging"
	"strings"
)

var errNoRolls = errors.New("no inline rolls")

var errAlreadyProcessing = errors.New("message is already being processed")

// ResolveDumpChannel явная настройка сервера главнее родителя ветки.
// Пустая строка означает, что писать дамп некуда.
func ResolveDumpChannel(dest model.Destination, config *modeldb.GuildConfig) string {
	if config != nil && config.DumpChannelID != "" {
		return config.DumpChannelID
	}
	if dest.IsThread() {
		return dest.ChannelID
	}
	return ""
}

// RewriteMessage заменяет инлайн-броски в сообщении прокси-бота результатами:
// пишет дамп, публикует новый текст от имени персонажа и удаляет оригинал.
// Пока не опубликован дамп, сообщение остается нетронутым при любой ошибке.
func (r *Relay) RewriteMessage(ctx context.Context, m *discordgo.Message) (err error) {
	defer func() { observeRewrite(err) }()

	if m.WebhookID == "" {
		return model.ErrNotEligible
	}
	tokens := roll.FindInlineRolls(m.Content)
	if len(tokens) == 0 {
		return errNoRolls
	}

	unlock, ok := r.inflight.TryLock(m.ID)
	if !ok {
		return errAlreadyProcessing
	}
	defer unlock()

	proxyHook, err := r.platform.Webhook(ctx, m.WebhookID)
	if err != nil {
		return fmt.Errorf("%w: вебхук %s: %v", model.ErrIdentityUnavailable, m.WebhookID, err)
	}
	if proxyHook.Name != r.opts.ProxyHookName {
		return fmt.Errorf("%w: вебхук %q", model.ErrNotEligible, proxyHook.Name)
	}

	channel, err := r.platform.Channel(ctx, m.ChannelID)
	if err != nil {
		return fmt.Errorf("канал %s: %w", m.ChannelID, err)
	}
	dest := destinationOf(channel)
	guildID := m.GuildID
	if guildID == "" {
		guildID = channel.GuildID
	}

	config, err := r.configs.GetConfig(guildID)
	if err != nil {
		return fmt.Errorf("%w: настройки сервера %s: %v", model.ErrStoreUnavailable, guildID, err)
	}
	dumpChannelID := ResolveDumpChannel(dest, config)
	if dumpChannelID == "" {
		r.notify(ctx, m.ChannelID, fmt.Sprintf(msgMisconfigured, r.opts.CommandPrefix))
		return model.ErrMisconfigured
	}

	outcomes := make([]model.RollOutcome, 0, len(tokens))
	for _, token := range tokens {
		outcome, err := r.evaluator.Evaluate(token)
		if err != nil {
			r.notify(ctx, m.ChannelID, fmt.Sprintf(msgInvalidRoll, err))
			return err
		}
		outcomes = append(outcomes, outcome)
	}

	content := m.Content
	lines := make([]string, 0, len(outcomes))
	for _, outcome := range outcomes {
		content = roll.Substitute(content, outcome.Token, roll.InlineReplacement(outcome))
		lines = append(lines, roll.DisplayLine(outcome))
	}

	persona := m.Author.Username
	dumpContent := DumpMessage(persona, channel.Name, lines)
	// id записи дампа еще неизвестен, поэтому ссылка меряется по самому длинному id
	longestLink := JumpURL(guildID, dumpChannelID, strings.Repeat("0", maxSnowflakeLength))
	if !FitsMessage(dumpContent) || !FitsMessage(AppendDumpLink(content, longestLink)) {
		r.notify(ctx, m.ChannelID, msgTooLong)
		return model.ErrTooLong
	}

	// вебхук нужен до записи дампа, чтобы не оставить дамп без сообщения
	relayHook, err := r.hooks.ResolveOrCreate(ctx, dest.ChannelID, r.opts.RelayHookName)
	if err != nil {
		return err
	}

	dumpMessage, err := r.platform.ChannelMessageSend(ctx, dumpChannelID, dumpContent)
	if err != nil {
		return fmt.Errorf("запись в канал дампа %s: %w", dumpChannelID, err)
	}
	content = AppendDumpLink(content, JumpURL(guildID, dumpChannelID, dumpMessage.ID))

	if _, err := r.hooks.Publish(ctx, relayHook, dest, content, persona, m.Author.AvatarURL("")); err != nil {
		return fmt.Errorf("публикация через вебхук (дамп %s уже записан): %w", dumpMessage.ID, err)
	}

	for _, outcome := range outcomes {
		metrics.Rolls.WithLabelValues(metrics.CritLabel(int(outcome.Crit))).Inc()
	}
	r.recordHistory(guildID, persona, channel.Name, outcomes)

	if err := r.platform.ChannelMessageDelete(ctx, m.ChannelID, m.ID); err != nil {
		return fmt.Errorf("удаление оригинала %s: %w", m.ID, err)
	}

	logging.Log("Relay", logrus.InfoLevel, fmt.Sprintf("Сообщение %s персонажа %s переписано, бросков: %d", m.ID, persona, len(outcomes)))
	return nil
}

// recordHistory ставит запись истории в фоновую очередь по одной на бросок.
func (r *Relay) recordHistory(guildID, character, room string, outcomes []model.RollOutcome) {
	if r.tasks == nil || r.history == nil {
		return
	}
	for _, outcome := range outcomes {
		record := modeldb.RollHistory{
			GuildID:       guildID,
			CharacterName: character,
			RoomName:      room,
			DiceRoll:      roll.DiceRoll(outcome),
			Expression:    outcome.Expression,
			Result:        outcome.Total,
			Crit:          int(outcome.Crit),
		}
		queued := r.tasks.Submit("history:"+guildID, func(ctx context.Context) error {
			return r.history.AddHistory(record)
		})
		if !queued {
			metrics.HistoryWrites.WithLabelValues("dropped").Inc()
		}
	}
}

func observeRewrite(err error) {
	result := "rewritten"
	switch {
	case err == nil:
	case errors.Is(err, errNoRolls):
		result = "no_rolls"
	case errors.Is(err, model.ErrNotEligible), errors.Is(err, errAlreadyProcessing):
		result = "not_eligible"
	case errors.Is(err, model.ErrMisconfigured):
		result = "misconfigured"
	case errors.Is(err, model.ErrInvalidExpression):
		result = "invalid_roll"
	case errors.Is(err, model.ErrTooLong):
		result = "too_long"
	default:
		result = "failed"
	}
	metrics.MessagesRewritten.WithLabelValues(result).Inc()
}

func observeReaction(action string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, model.ErrNotEligible):
		return
	case errors.Is(err, model.ErrTimeout):
		result = "timeout"
	default:
		result = "failed"
	}
	metrics.ReactionActions.WithLabelValues(action, result).Inc()
}
