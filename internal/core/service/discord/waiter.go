package discord

import (
	"context"
	"github.com/bwmarrin/discordgo"
	"rollhook-bot/internal/core/model"
	"sync"
	"time"
)

// Waiter раздает входящие сообщения тем, кто их ждет.
// Ожидание регистрируется до действия, которое должно вызвать ответ,
// иначе быстрый ответ можно пропустить.
type Waiter struct {
	mu      sync.Mutex
	next    uint64
	pending map[uint64]*Pending
}

type Pending struct {
	id     uint64
	waiter *Waiter
	match  func(*discordgo.Message) bool
	ch     chan *discordgo.Message
}

func NewWaiter() *Waiter {
	return &Waiter{pending: make(map[uint64]*Pending)}
}

func (w *Waiter) Register(match func(*discordgo.Message) bool) *Pending {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.next++
	p := &Pending{id: w.next, waiter: w, match: match, ch: make(chan *discordgo.Message, 1)}
	w.pending[p.id] = p
	return p
}

// Dispatch отдает сообщение самому раннему подходящему ожиданию.
// Возвращает true, если сообщение кто-то забрал.
func (w *Waiter) Dispatch(m *discordgo.Message) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	var found *Pending
	for _, p := range w.pending {
		if (found == nil || p.id < found.id) && p.match(m) {
			found = p
		}
	}
	if found == nil {
		return false
	}
	delete(w.pending, found.id)
	found.ch <- m
	return true
}

func (w *Waiter) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// Wait ждет сообщение не дольше timeout. По таймауту возвращает
// model.ErrTimeout, при отмене ctx ошибку контекста.
func (p *Pending) Wait(ctx context.Context, timeout time.Duration) (*discordgo.Message, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case m := <-p.ch:
		return m, nil
	case <-timer.C:
		p.Cancel()
	case <-ctx.Done():
		p.Cancel()
		if m := p.drain(); m != nil {
			return m, nil
		}
		return nil, ctx.Err()
	}

	// сообщение могло прийти одновременно с таймаутом
	if m := p.drain(); m != nil {
		return m, nil
	}
	return nil, model.ErrTimeout
}

func (p *Pending) Cancel() {
	p.waiter.mu.Lock()
	delete(p.waiter.pending, p.id)
	p.waiter.mu.Unlock()
}

func (p *Pending) drain() *discordgo.Message {
	select {
	case m := <-p.ch:
		return m
	default:
		return nil
	}
}
