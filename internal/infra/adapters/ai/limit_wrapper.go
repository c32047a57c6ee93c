package ai

import (
	"context"
	"time"

	"mosha-chat-backend/internal/domain/ports/adapter"
	"mosha-chat-backend/internal/infra/metrics"
)

// Compile-time check
var _ adapter.AIServiceAdapter = (*limitedAI)(nil)

// limitedAI caps concurrent provider calls with a semaphore and records
// per-call metrics (latency, prompt tokens).
type limitedAI struct {
	inner    adapter.AIServiceAdapter
	provider string
	sem      chan struct{}
}

func NewLimitedAI(inner adapter.AIServiceAdapter, provider string, maxConcurrent int) adapter.AIServiceAdapter {
	if maxConcurrent <= 0 {
		maxConcurrent = 16
	}
	return &limitedAI{
		inner:    inner,
		provider: provider,
		sem:      make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedAI) ListModels(ctx context.Context) ([]string, error) {
	return l.inner.ListModels(ctx)
}

func (l *limitedAI) GetModelInfo(model string) (adapter.ModelInfo, error) {
	return l.inner.GetModelInfo(model)
}

func (l *limitedAI) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	l.sem <- struct{}{}
	defer func() { <-l.sem }()
	return l.inner.CountTokens(ctx, model, messages)
}

func (l *limitedAI) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	l.sem <- struct{}{}
	defer func() { <-l.sem }()

	start := time.Now()
	reply, err := l.inner.Chat(ctx, model, messages)
	latency := int(time.Since(start).Milliseconds())

	// Token accounting is best-effort and must not fail the call.
	tokens := 0
	if n, cErr := l.inner.CountTokens(ctx, model, messages); cErr == nil {
		tokens = n
	}
	metrics.ObserveAICall(l.provider, model, tokens, latency, err == nil)

	return reply, err
}
