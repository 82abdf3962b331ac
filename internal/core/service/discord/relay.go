package discord

import (
	"context"
	"errors"
	"fmt"
	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
	"rollhook-bot/internal/core/model"
	modeldb "rollhook-bot/internal/lib/database/model"
	"rollhook-bot/internal/lib/keylock"
	"rollhook-bot/internal/lib/tasks"
	"rollhook-bot/logging"
	"strings"
	"sync"
	"time"
)

type ConfigStore interface {
	GetConfig(guildID string) (*modeldb.GuildConfig, error)
	SetDumpChannel(guildID string, dumpChannelID string) error
}

type HistoryStore interface {
	AddHistory(record modeldb.RollHistory) error
	GetHistoryByGuild(guildID string, limit int) ([]modeldb.RollHistory, error)
}

type Evaluator interface {
	Evaluate(token string) (model.RollOutcome, error)
}

type TaskQueue interface {
	Submit(name string, job tasks.Job) bool
}

type Options struct {
	ProxyHookName     string
	RelayHookName     string
	CommandPrefix     string
	EditCommandPrefix string
	ProxyBotID        string
	ProxyBotErrorText string
	EditTimeout       time.Duration
	ProbeTimeout      time.Duration
}

type Deps struct {
	Configs   ConfigStore
	History   HistoryStore
	Evaluator Evaluator
	Tasks     TaskQueue
}

// Relay обрабатывает события Discord: переписывает сообщения прокси-бота
// с инлайн-бросками и обслуживает удаление и правку своих сообщений.
type Relay struct {
	platform  Platform
	hooks     *HookManager
	waiter    *Waiter
	configs   ConfigStore
	history   HistoryStore
	evaluator Evaluator
	tasks     TaskQueue
	opts      Options

	// одно сообщение прокси обрабатывается не больше одного раза одновременно
	inflight *keylock.KeyLock
	// правки одного сообщения идут по очереди
	edits *keylock.KeyLock

	mu        sync.RWMutex
	botUserID string
}

func NewRelay(platform Platform, deps Deps, opts Options) *Relay {
	return &Relay{
		platform:  platform,
		hooks:     NewHookManager(platform),
		waiter:    NewWaiter(),
		configs:   deps.Configs,
		history:   deps.History,
		evaluator: deps.Evaluator,
		tasks:     deps.Tasks,
		opts:      opts,
		inflight:  keylock.New(),
		edits:     keylock.New(),
	}
}

func (r *Relay) SetBotUser(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.botUserID = userID
}

func (r *Relay) botUser() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.botUserID
}

// HandleMessage точка входа для каждого нового сообщения.
func (r *Relay) HandleMessage(ctx context.Context, m *discordgo.Message) {
	if m == nil || m.Author == nil {
		return
	}
	if r.waiter.Dispatch(m) {
		return
	}
	if m.Author.ID == r.botUser() {
		return
	}

	if m.WebhookID != "" {
		err := r.RewriteMessage(ctx, m)
		r.logOutcome("Relay", fmt.Sprintf("сообщение %s", m.ID), err)
		return
	}

	if m.Author.Bot || m.GuildID == "" {
		return
	}

	if m.MessageReference != nil && strings.HasPrefix(m.Content, r.opts.EditCommandPrefix) {
		err := r.EditByCommand(ctx, m)
		r.logOutcome("Relay", fmt.Sprintf("команда правки %s", m.ID), err)
		return
	}

	if strings.HasPrefix(m.Content, r.opts.CommandPrefix) {
		err := r.HandleCommand(ctx, m)
		r.logOutcome("Relay", fmt.Sprintf("команда %q", m.Content), err)
	}
}

// HandleReaction точка входа для новых реакций.
func (r *Relay) HandleReaction(ctx context.Context, reaction *discordgo.MessageReactionAdd) {
	if reaction == nil || reaction.MessageReaction == nil {
		return
	}
	if reaction.UserID == r.botUser() {
		return
	}
	if reaction.Member != nil && reaction.Member.User != nil && reaction.Member.User.Bot {
		return
	}

	var err error
	switch reaction.Emoji.Name {
	case DeleteEmoji:
		err = r.DeleteByReaction(ctx, reaction.MessageReaction)
		observeReaction("delete", err)
	case EditEmoji:
		err = r.EditByReaction(ctx, reaction.MessageReaction)
		observeReaction("edit", err)
	default:
		return
	}
	r.logOutcome("Relay", fmt.Sprintf("реакция %s на %s", reaction.Emoji.Name, reaction.MessageID), err)
}

// logOutcome ErrNotEligible означает "не наше сообщение" и пишется только в debug.
func (r *Relay) logOutcome(module, subject string, err error) {
	switch {
	case err == nil:
		logging.Log(module, logrus.DebugLevel, fmt.Sprintf("%s: обработано", subject))
	case errors.Is(err, model.ErrNotEligible), errors.Is(err, errNoRolls), errors.Is(err, errAlreadyProcessing):
		logging.Log(module, logrus.DebugLevel, fmt.Sprintf("%s: пропущено (%v)", subject, err))
	case errors.Is(err, model.ErrTimeout), errors.Is(err, model.ErrMisconfigured),
		errors.Is(err, model.ErrInvalidExpression), errors.Is(err, model.ErrNotEditable),
		errors.Is(err, model.ErrEditInProgress), errors.Is(err, model.ErrTooLong):
		logging.Log(module, logrus.InfoLevel, fmt.Sprintf("%s: %v", subject, err))
	default:
		logging.Log(module, logrus.ErrorLevel, fmt.Sprintf("%s: %v", subject, err))
	}
}

func (r *Relay) notify(ctx context.Context, channelID, text string) {
	if _, err := r.platform.ChannelMessageSend(ctx, channelID, text); err != nil {
		logging.Log("Relay", logrus.WarnLevel, fmt.Sprintf("Не удалось отправить уведомление в канал %s: %v", channelID, err))
	}
}

func destinationOf(ch *discordgo.Channel) model.Destination {
	if ch.IsThread() && ch.ParentID != "" {
		return model.ThreadDestination(ch.ID, ch.ParentID)
	}
	return model.ChannelDestination(ch.ID)
}
