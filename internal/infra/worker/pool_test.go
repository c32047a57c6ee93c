//go:build !integration

package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"mosha-chat-backend/internal/domain"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func TestPool_RunsSubmittedTasks(t *testing.T) {
	p := NewPool(2, 8, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	var ran atomic.Int32
	done := make(chan struct{})
	for i := 0; i < 4; i++ {
		err := p.Submit(func(ctx context.Context) error {
			if ran.Add(1) == 4 {
				close(done)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("tasks did not run, got %d", ran.Load())
	}
}

func TestPool_RejectsNilTask(t *testing.T) {
	p := NewPool(1, 1, testLogger())
	if err := p.Submit(nil); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestPool_ReportsSaturation(t *testing.T) {
	// Not started: nothing drains the queue.
	p := NewPool(1, 1, testLogger())
	block := func(ctx context.Context) error { return nil }
	if err := p.Submit(block); err != nil {
		t.Fatalf("first submit should fit the queue: %v", err)
	}
	if err := p.Submit(block); !errors.Is(err, domain.ErrQueueSaturated) {
		t.Errorf("expected ErrQueueSaturated, got %v", err)
	}
}
