package discord

import (
	"context"
	"fmt"
	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
	"rollhook-bot/logging"
)

const intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildMessageReactions |
	discordgo.IntentsDirectMessages |
	discordgo.IntentsMessageContent

type BotDiscord struct {
	Session *discordgo.Session
	Relay   *Relay

	ctx context.Context
}

func NewDiscordBot(token string, opts Options, deps Deps) (*BotDiscord, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("создание сессии Discord: %w", err)
	}
	dg.Identify.Intents = intents

	if opts.RelayHookName == "" {
		opts.RelayHookName = relayHookName(dg)
	}
	logging.Log("Discord", logrus.InfoLevel, fmt.Sprintf("Имя вебхука бота: %s", opts.RelayHookName))

	b := &BotDiscord{
		Session: dg,
		Relay:   NewRelay(NewSessionPlatform(dg), deps, opts),
		ctx:     context.Background(),
	}

	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onMessageCreate)
	dg.AddHandler(b.onReactionAdd)

	return b, nil
}

// relayHookName "<имя приложения>hook", как его видят пользователи в списке вебхуков.
func relayHookName(dg *discordgo.Session) string {
	if app, err := dg.Application("@me"); err == nil && app.Name != "" {
		return app.Name + "hook"
	}
	if user, err := dg.User("@me"); err == nil {
		return user.Username + "hook"
	}
	logging.Log("Discord", logrus.WarnLevel, "Не удалось получить имя приложения, используется имя по умолчанию")
	return "rollhook"
}

// Run подключается к шлюзу и держит сессию до отмены ctx.
func (b *BotDiscord) Run(ctx context.Context) error {
	b.ctx = ctx
	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("подключение к Discord: %w", err)
	}
	logging.Log("Discord", logrus.InfoLevel, "Сессия Discord открыта")

	<-ctx.Done()

	if err := b.Session.Close(); err != nil {
		logging.Log("Discord", logrus.WarnLevel, fmt.Sprintf("Ошибка закрытия сессии Discord: %v", err))
	}
	logging.Log("Discord", logrus.InfoLevel, "Сессия Discord закрыта")
	return nil
}

func (b *BotDiscord) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.Relay.SetBotUser(r.User.ID)
	logging.Log("Discord", logrus.InfoLevel, fmt.Sprintf("Бот %s готов, серверов: %d", r.User.Username, len(r.Guilds)))
}

func (b *BotDiscord) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	b.Relay.HandleMessage(b.ctx, m.Message)
}

func (b *BotDiscord) onReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	b.Relay.HandleReaction(b.ctx, r)
}
