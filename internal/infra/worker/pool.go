package worker

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"mosha-chat-backend/internal/domain"
)

// A small worker pool that runs submitted tasks on a fixed set of goroutines.
// Generation work and its backoff waits happen here, detached from the
// request/response cycle that enqueued them.

type Task func(ctx context.Context) error

type Pool struct {
	wg   sync.WaitGroup
	jobs chan Task
	quit chan struct{}
	n    int
	log  *zerolog.Logger
}

func NewPool(workers, queueDepth int, log *zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = 8
	}
	if queueDepth <= 0 {
		queueDepth = workers * 4
	}
	return &Pool{
		jobs: make(chan Task, queueDepth),
		quit: make(chan struct{}),
		n:    workers,
		log:  log,
	}
}

func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.n; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case <-p.quit:
					return
				case task := <-p.jobs:
					if task == nil {
						continue
					}
					if err := task(ctx); err != nil {
						p.log.Error().Err(err).Int("worker", id).Msg("task error")
					}
				}
			}
		}(i)
	}
}

func (p *Pool) Stop() {
	close(p.quit)
	p.wg.Wait()
}

func (p *Pool) Submit(task Task) error {
	if task == nil {
		return domain.ErrInvalidArgument
	}
	select {
	case p.jobs <- task:
		return nil
	default:
		// drop when saturated to avoid back-pressure in v1
		return domain.ErrQueueSaturated
	}
}
