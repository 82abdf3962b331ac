package discord

import (
	"context"
	"fmt"
	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
	"regexp"
	"rollhook-bot/internal/core/model"
	"rollhook-bot/internal/core/service/roll"
	"rollhook-bot/logging"
	"strconv"
	"strings"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 25
)

var trailingIDPattern = regexp.MustCompile(`(\d+)\D*$`)

var errUnknownCommand = fmt.Errorf("%w: неизвестная команда", model.ErrNotEligible)

// HandleCommand обрабатывает команды с префиксом CommandPrefix.
func (r *Relay) HandleCommand(ctx context.Context, m *discordgo.Message) error {
	fields := strings.Fields(strings.TrimPrefix(m.Content, r.opts.CommandPrefix))
	if len(fields) == 0 {
		return errUnknownCommand
	}

	args := fields[1:]
	switch strings.ToLower(fields[0]) {
	case "setdump":
		return r.commandSetDump(ctx, m, args)
	case "getdump":
		return r.commandGetDump(ctx, m)
	case "history":
		return r.commandHistory(ctx, m, args)
	default:
		return errUnknownCommand
	}
}

// ChannelIDFromLink берет последний числовой идентификатор из ссылки или упоминания канала.
func ChannelIDFromLink(link string) (string, bool) {
	match := trailingIDPattern.FindStringSubmatch(link)
	if match == nil {
		return "", false
	}
	return match[1], true
}

func (r *Relay) commandSetDump(ctx context.Context, m *discordgo.Message, args []string) error {
	channelID := m.ChannelID
	if len(args) > 0 {
		id, ok := ChannelIDFromLink(args[0])
		if !ok {
			r.notify(ctx, m.ChannelID, fmt.Sprintf("Could not find a channel id in `%s`.", args[0]))
			return nil
		}
		channelID = id
	}

	if err := r.configs.SetDumpChannel(m.GuildID, channelID); err != nil {
		r.notify(ctx, m.ChannelID, "Could not save the dump channel, try again later.")
		return fmt.Errorf("%w: сохранение канала дампа: %v", model.ErrStoreUnavailable, err)
	}

	r.notify(ctx, m.ChannelID, fmt.Sprintf("Roll logs will be posted to <#%s>.", channelID))
	logging.Log("Relay", logrus.InfoLevel, fmt.Sprintf("Канал дампа сервера %s: %s", m.GuildID, channelID))
	return nil
}

func (r *Relay) commandGetDump(ctx context.Context, m *discordgo.Message) error {
	config, err := r.configs.GetConfig(m.GuildID)
	if err != nil {
		r.notify(ctx, m.ChannelID, "Could not read the server settings, try again later.")
		return fmt.Errorf("%w: настройки сервера %s: %v", model.ErrStoreUnavailable, m.GuildID, err)
	}
	if config == nil || config.DumpChannelID == "" {
		r.notify(ctx, m.ChannelID, fmt.Sprintf("No dump channel is set. Use `%ssetdump` in the channel that should receive roll logs.", r.opts.CommandPrefix))
		return nil
	}
	r.notify(ctx, m.ChannelID, fmt.Sprintf("Roll logs are posted to <#%s>.", config.DumpChannelID))
	return nil
}

func (r *Relay) commandHistory(ctx context.Context, m *discordgo.Message, args []string) error {
	limit := defaultHistoryLimit
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			r.notify(ctx, m.ChannelID, fmt.Sprintf("Usage: `%shistory [count]`", r.opts.CommandPrefix))
			return nil
		}
		limit = n
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	records, err := r.history.GetHistoryByGuild(m.GuildID, limit)
	if err != nil {
		r.notify(ctx, m.ChannelID, "Could not read the roll history, try again later.")
		return fmt.Errorf("%w: история сервера %s: %v", model.ErrStoreUnavailable, m.GuildID, err)
	}
	if len(records) == 0 {
		r.notify(ctx, m.ChannelID, "No rolls recorded yet.")
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Last %d rolls:", len(records))
	for _, rec := range records {
		fmt.Fprintf(&b, "\n**%s** in #%s: `%s` = %d%s", rec.CharacterName, rec.RoomName, rec.DiceRoll, rec.Result, roll.CritGlyph(model.CritTier(rec.Crit)))
	}
	r.notify(ctx, m.ChannelID, b.String())
	return nil
}
