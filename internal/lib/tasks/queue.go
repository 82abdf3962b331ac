// Package tasks выполняет фоновые задания вне критического пути обработчиков.
//
// Гарантии слабые: Submit не блокируется, при переполненной очереди задание
// отбрасывается; каждое задание получает до attempts попыток; ошибки только
// логируются и никогда не возвращаются отправителю.
package tasks

import (
	"context"
	"fmt"
	"github.com/sirupsen/logrus"
	"rollhook-bot/logging"
	"sync"
)

type Job func(ctx context.Context) error

type namedJob struct {
	name string
	run  Job
}

type Queue struct {
	module   string
	attempts int
	jobs     chan namedJob
	wg       sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool

	// OnDone вызывается после последней попытки задания (err == nil при успехе).
	OnDone func(name string, err error)
}

func NewQueue(module string, workers, size, attempts int) *Queue {
	if workers < 1 {
		workers = 1
	}
	if attempts < 1 {
		attempts = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		module:   module,
		attempts: attempts,
		jobs:     make(chan namedJob, size),
		ctx:      ctx,
		cancel:   cancel,
	}

	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}

	return q
}

// Submit ставит задание в очередь; false означает, что задание отброшено.
func (q *Queue) Submit(name string, job Job) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		logging.Log(q.module, logrus.WarnLevel, fmt.Sprintf("Очередь закрыта, задание %s отброшено", name))
		return false
	}

	select {
	case q.jobs <- namedJob{name: name, run: job}:
		return true
	default:
		logging.Log(q.module, logrus.WarnLevel, fmt.Sprintf("Очередь переполнена, задание %s отброшено", name))
		return false
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for job := range q.jobs {
		q.execute(job)
	}
}

func (q *Queue) execute(job namedJob) {
	var err error
	for attempt := 1; attempt <= q.attempts; attempt++ {
		if q.ctx.Err() != nil {
			err = q.ctx.Err()
			break
		}
		err = q.safeRun(job)
		if err == nil {
			break
		}
		logging.Log(q.module, logrus.WarnLevel, fmt.Sprintf("Задание %s: попытка %d/%d не удалась: %v", job.name, attempt, q.attempts, err))
	}

	if err != nil {
		logging.Log(q.module, logrus.ErrorLevel, fmt.Sprintf("Задание %s не выполнено: %v", job.name, err))
	}
	if q.OnDone != nil {
		q.OnDone(job.name, err)
	}
}

func (q *Queue) safeRun(job namedJob) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return job.run(q.ctx)
}

// Close перестает принимать задания и ждет, пока очередь опустеет.
// Если ctx истекает раньше, оставшиеся задания отменяются.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.cancel()
		return nil
	case <-ctx.Done():
		q.cancel()
		<-done
		return ctx.Err()
	}
}
