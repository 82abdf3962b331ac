package discord

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"rollhook-bot/internal/core/model"
	modeldb "rollhook-bot/internal/lib/database/model"
	"rollhook-bot/internal/lib/tasks"
)

type sentMessage struct {
	ChannelID string
	Content   string
}

type executedHook struct {
	HookID   string
	ThreadID string
	Params   discordgo.WebhookParams
}

type editedHook struct {
	HookID    string
	ThreadID  string
	MessageID string
	Content   string
}

// fakePlatform хранит состояние в памяти и записывает все вызовы.
type fakePlatform struct {
	mu sync.Mutex

	channels   map[string]*discordgo.Channel
	messages   map[string]*discordgo.Message
	hooks      []*discordgo.Webhook
	hideTokens bool
	nextID     int

	calls            []string
	sent             []sentMessage
	deleted          []string
	executed         []executedHook
	edited           []editedHook
	hookDeleted      []string
	reactionsCleared []string
	hooksCreated     int

	onSend   func(channelID, content string)
	onDelete func(channelID, messageID string)
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		channels: make(map[string]*discordgo.Channel),
		messages: make(map[string]*discordgo.Message),
	}
}

func (f *fakePlatform) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s%d", prefix, f.nextID)
}

func (f *fakePlatform) addChannel(ch *discordgo.Channel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channels[ch.ID] = ch
}

func (f *fakePlatform) addMessage(m *discordgo.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages[m.ID] = m
}

func (f *fakePlatform) addHook(hook *discordgo.Webhook) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hooks = append(f.hooks, hook)
}

func (f *fakePlatform) Channel(ctx context.Context, channelID string) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.channels[channelID]
	if !ok {
		return nil, errors.New("unknown channel")
	}
	return ch, nil
}

func (f *fakePlatform) ChannelMessage(ctx context.Context, channelID, messageID string) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.messages[messageID]
	if !ok || m.ChannelID != channelID {
		return nil, errors.New("unknown message")
	}
	return m, nil
}

func (f *fakePlatform) ChannelMessageSend(ctx context.Context, channelID, content string) (*discordgo.Message, error) {
	f.mu.Lock()
	m := &discordgo.Message{ID: f.id("d"), ChannelID: channelID, Content: content}
	f.messages[m.ID] = m
	f.sent = append(f.sent, sentMessage{ChannelID: channelID, Content: content})
	f.calls = append(f.calls, "send:"+channelID)
	hook := f.onSend
	f.mu.Unlock()

	if hook != nil {
		hook(channelID, content)
	}
	return m, nil
}

func (f *fakePlatform) ChannelMessageDelete(ctx context.Context, channelID, messageID string) error {
	f.mu.Lock()
	delete(f.messages, messageID)
	f.deleted = append(f.deleted, messageID)
	f.calls = append(f.calls, "delete:"+messageID)
	hook := f.onDelete
	f.mu.Unlock()

	if hook != nil {
		hook(channelID, messageID)
	}
	return nil
}

func (f *fakePlatform) MessageReactionsRemoveAll(ctx context.Context, channelID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reactionsCleared = append(f.reactionsCleared, messageID)
	return nil
}

func (f *fakePlatform) UserChannelCreate(ctx context.Context, userID string) (*discordgo.Channel, error) {
	return &discordgo.Channel{ID: "dm-" + userID, Type: discordgo.ChannelTypeDM}, nil
}

func (f *fakePlatform) Webhook(ctx context.Context, webhookID string) (*discordgo.Webhook, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, hook := range f.hooks {
		if hook.ID == webhookID {
			copied := *hook
			if f.hideTokens {
				copied.Token = ""
			}
			return &copied, nil
		}
	}
	return nil, errors.New("unknown webhook")
}

func (f *fakePlatform) ChannelWebhooks(ctx context.Context, channelID string) ([]*discordgo.Webhook, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var hooks []*discordgo.Webhook
	for _, hook := range f.hooks {
		if hook.ChannelID == channelID {
			hooks = append(hooks, hook)
		}
	}
	return hooks, nil
}

func (f *fakePlatform) WebhookCreate(ctx context.Context, channelID, name string) (*discordgo.Webhook, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	// даем конкурентным вызовам шанс пересечься
	time.Sleep(time.Millisecond)
	id := f.id("w")
	hook := &discordgo.Webhook{ID: id, ChannelID: channelID, Name: name, Token: "tok-" + id}
	f.hooks = append(f.hooks, hook)
	f.hooksCreated++
	f.calls = append(f.calls, "create:"+channelID)
	return hook, nil
}

func (f *fakePlatform) WebhookExecute(ctx context.Context, hook *discordgo.Webhook, threadID string, params *discordgo.WebhookParams) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	channelID := hook.ChannelID
	if threadID != "" {
		channelID = threadID
	}
	m := &discordgo.Message{ID: f.id("r"), ChannelID: channelID, WebhookID: hook.ID, Content: params.Content}
	f.messages[m.ID] = m
	f.executed = append(f.executed, executedHook{HookID: hook.ID, ThreadID: threadID, Params: *params})
	f.calls = append(f.calls, "execute:"+hook.ID)
	return m, nil
}

func (f *fakePlatform) WebhookMessageEdit(ctx context.Context, hook *discordgo.Webhook, threadID, messageID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edited = append(f.edited, editedHook{HookID: hook.ID, ThreadID: threadID, MessageID: messageID, Content: content})
	if m, ok := f.messages[messageID]; ok {
		m.Content = content
	}
	return nil
}

func (f *fakePlatform) WebhookMessageDelete(ctx context.Context, hook *discordgo.Webhook, threadID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.messages, messageID)
	f.hookDeleted = append(f.hookDeleted, messageID)
	return nil
}

func (f *fakePlatform) sentTo(channelID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, s := range f.sent {
		if s.ChannelID == channelID {
			out = append(out, s.Content)
		}
	}
	return out
}

type fakeConfigs struct {
	mu    sync.Mutex
	dumps map[string]string
	err   error
}

func (c *fakeConfigs) GetConfig(guildID string) (*modeldb.GuildConfig, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	dump, ok := c.dumps[guildID]
	if !ok {
		return nil, nil
	}
	return &modeldb.GuildConfig{GuildID: guildID, DumpChannelID: dump}, nil
}

func (c *fakeConfigs) SetDumpChannel(guildID string, dumpChannelID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.dumps[guildID] = dumpChannelID
	return nil
}

type fakeHistory struct {
	mu      sync.Mutex
	records []modeldb.RollHistory
	err     error
}

func (h *fakeHistory) AddHistory(record modeldb.RollHistory) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return h.err
	}
	h.records = append(h.records, record)
	return nil
}

func (h *fakeHistory) GetHistoryByGuild(guildID string, limit int) ([]modeldb.RollHistory, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []modeldb.RollHistory
	for i := len(h.records) - 1; i >= 0; i-- {
		if h.records[i].GuildID == guildID {
			out = append(out, h.records[i])
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// syncTasks выполняет задание сразу, чтобы тесты видели результат.
type syncTasks struct {
	mu   sync.Mutex
	errs []error
}

func (s *syncTasks) Submit(name string, job tasks.Job) bool {
	err := job(context.Background())
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.errs = append(s.errs, err)
	}
	return true
}

// stubEvaluator отдает заранее заданные исходы по порядку для каждого токена.
type stubEvaluator struct {
	mu       sync.Mutex
	outcomes map[string][]model.RollOutcome
}

func (s *stubEvaluator) Evaluate(token string) (model.RollOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	queue := s.outcomes[token]
	if len(queue) == 0 {
		return model.RollOutcome{}, fmt.Errorf("%w: [[%s]]: unexpected input", model.ErrInvalidExpression, token)
	}
	s.outcomes[token] = queue[1:]
	return queue[0], nil
}

func outcome(token string, total int, crit model.CritTier, comment string) model.RollOutcome {
	return model.RollOutcome{
		Token:      token,
		Total:      total,
		Crit:       crit,
		Comment:    comment,
		Expression: fmt.Sprintf("%s (%d)", token, total),
		Rendered:   fmt.Sprintf("%s (%d) = `%d`", token, total, total),
	}
}

type relayFixture struct {
	relay    *Relay
	platform *fakePlatform
	configs  *fakeConfigs
	history  *fakeHistory
	tasks    *syncTasks
	eval     *stubEvaluator
}

const (
	testGuild     = "g1"
	testChannel   = "c1"
	testProxyHook = "proxy"
	testRelayName = "Rollhook"
)

func newRelayFixture(t *testing.T) *relayFixture {
	t.Helper()
	platform := newFakePlatform()
	platform.addChannel(&discordgo.Channel{ID: testChannel, GuildID: testGuild, Name: "tavern", Type: discordgo.ChannelTypeGuildText})
	platform.addHook(&discordgo.Webhook{ID: testProxyHook, ChannelID: testChannel, Name: "Tupperhook", Token: "proxy-token"})

	f := &relayFixture{
		platform: platform,
		configs:  &fakeConfigs{dumps: make(map[string]string)},
		history:  &fakeHistory{},
		tasks:    &syncTasks{},
		eval:     &stubEvaluator{outcomes: make(map[string][]model.RollOutcome)},
	}
	f.relay = NewRelay(platform, Deps{
		Configs:   f.configs,
		History:   f.history,
		Evaluator: f.eval,
		Tasks:     f.tasks,
	}, Options{
		ProxyHookName:     "Tupperhook",
		RelayHookName:     testRelayName,
		CommandPrefix:     ";;",
		EditCommandPrefix: "tul!edit",
		ProxyBotID:        "431",
		ProxyBotErrorText: "not yours",
		EditTimeout:       50 * time.Millisecond,
		ProbeTimeout:      30 * time.Millisecond,
	})
	f.relay.SetBotUser("bot")
	return f
}

func proxyMessage(id, channelID, content string) *discordgo.Message {
	return &discordgo.Message{
		ID:        id,
		ChannelID: channelID,
		GuildID:   testGuild,
		WebhookID: testProxyHook,
		Content:   content,
		Author:    &discordgo.User{ID: testProxyHook, Username: "Aria", Avatar: "abc", Bot: true},
	}
}

// seedRelayMessage кладет в канал сообщение, уже опубликованное вебхуком бота.
func (f *relayFixture) seedRelayMessage(id, content string) {
	f.platform.addHook(&discordgo.Webhook{ID: "relay", ChannelID: testChannel, Name: testRelayName, Token: "relay-token"})
	f.platform.addMessage(&discordgo.Message{ID: id, ChannelID: testChannel, GuildID: testGuild, WebhookID: "relay", Content: content})
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
