package worker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"mosha-chat-backend/internal/domain"
	"mosha-chat-backend/internal/domain/model"
	"mosha-chat-backend/internal/domain/ports/adapter"
	"mosha-chat-backend/internal/domain/ports/repository"
	"mosha-chat-backend/internal/infra/metrics"
)

// JobRunner drives one chat job from pending to a terminal state: it claims
// the job, calls the generation provider with bounded retries on transient
// failures, and records exactly one of result/error.
type JobRunner struct {
	jobs        repository.ChatJobRepository
	msgs        repository.ChatMessageRepository
	ai          adapter.AIServiceAdapter
	model       string
	historySize int
	maxAttempts int
	backoff     Strategy
	log         *zerolog.Logger
}

func NewJobRunner(
	jobs repository.ChatJobRepository,
	msgs repository.ChatMessageRepository,
	ai adapter.AIServiceAdapter,
	model string,
	historySize int,
	maxAttempts int,
	backoff Strategy,
	log *zerolog.Logger,
) *JobRunner {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if historySize <= 0 {
		historySize = 15
	}
	if backoff == nil {
		backoff = DefaultStrategy()
	}
	return &JobRunner{
		jobs:        jobs,
		msgs:        msgs,
		ai:          ai,
		model:       model,
		historySize: historySize,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		log:         log,
	}
}

// Run executes the full lifecycle for one job. It is invoked exactly once per
// job, at submission time, on a pool worker.
func (r *JobRunner) Run(ctx context.Context, ownerID, requestID string) error {
	job, err := r.jobs.ClaimProcessing(ctx, ownerID, requestID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotPending) {
			// Another runner got here first; leave the job alone.
			r.log.Warn().Str("request_id", requestID).Msg("job already claimed")
			return nil
		}
		return err
	}

	metrics.JobStarted()
	defer metrics.JobFinished()
	start := time.Now()

	reply, genErr := r.generate(ctx, job)

	if genErr != nil {
		if markErr := job.MarkFailed(genErr.Error()); markErr != nil {
			return markErr
		}
		r.log.Error().Err(genErr).
			Str("request_id", job.RequestID).
			Int("attempts", job.Attempts).
			Msg("chat job failed")
	} else {
		if markErr := job.MarkDone(model.AssistantSenderName, reply); markErr != nil {
			return markErr
		}
	}

	r.writeTerminal(job)

	if job.Status == model.ChatJobStatusDone {
		// History write is best-effort; the job result is the source of truth.
		aiMsg := model.NewAssistantMessage("", job.OwnerID, reply)
		if err := r.msgs.Save(context.Background(), nil, aiMsg); err != nil {
			r.log.Error().Err(err).Str("request_id", job.RequestID).Msg("could not save assistant message")
		}
	}

	metrics.IncJob(string(job.Status))
	r.log.Info().
		Str("request_id", job.RequestID).
		Str("status", string(job.Status)).
		Int("attempts", job.Attempts).
		Dur("duration_ms", time.Since(start)).
		Msg("chat job finished")
	return nil
}

// generate performs the provider call with up to maxAttempts tries.
// Transient failures back off and retry; anything else stops immediately.
func (r *JobRunner) generate(ctx context.Context, job *model.ChatJob) (string, error) {
	msgs := r.promptContext(ctx, job)

	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		job.Attempts = attempt

		reply, err := r.ai.Chat(ctx, r.model, msgs)
		if err == nil {
			return reply, nil
		}
		lastErr = err

		if !adapter.IsTransient(err) {
			return "", err
		}
		if attempt == r.maxAttempts {
			break
		}

		delay := r.backoff.Delay(attempt)
		r.log.Warn().Err(err).
			Str("request_id", job.RequestID).
			Int("attempt", attempt).
			Dur("retry_in", delay).
			Msg("transient provider error, will retry")
		metrics.IncJobRetry()
		if err := sleep(ctx, delay); err != nil {
			return "", err
		}
	}
	return "", lastErr
}

// promptContext assembles recent history ending with the job's prompt.
func (r *JobRunner) promptContext(ctx context.Context, job *model.ChatJob) []adapter.Message {
	history, err := r.msgs.RecentByOwner(ctx, nil, job.OwnerID, r.historySize)
	if err != nil {
		r.log.Warn().Err(err).Str("request_id", job.RequestID).Msg("history unavailable, using prompt only")
		history = nil
	}

	out := make([]adapter.Message, 0, len(history)+1)
	for _, m := range history {
		out = append(out, adapter.Message{Role: m.Role, Content: m.Message})
	}
	// The submitted prompt must always reach the provider, and last.
	if len(out) == 0 || out[len(out)-1].Content != job.Prompt || out[len(out)-1].Role != "user" {
		out = append(out, adapter.Message{Role: "user", Content: job.Prompt})
	}
	return out
}

// writeTerminal persists the terminal state. If that write fails, one
// best-effort attempt records a failure instead; if that also fails the job
// stays in processing for operators to find.
func (r *JobRunner) writeTerminal(job *model.ChatJob) {
	// Use a background context so shutdown doesn't lose the terminal write.
	ctx := context.Background()

	err := r.jobs.Update(ctx, nil, job)
	if err == nil {
		return
	}
	r.log.Error().Err(err).Str("request_id", job.RequestID).Msg("terminal write failed")

	fallback := *job
	fallback.Status = model.ChatJobStatusFailed
	fallback.Result = nil
	fallback.LastError = "failed to record result: " + err.Error()
	if err2 := r.jobs.Update(ctx, nil, &fallback); err2 != nil {
		metrics.IncJobStuck()
		r.log.Error().Err(err2).
			Str("request_id", job.RequestID).
			Msg("job stuck in processing: failure record also failed")
		return
	}
	*job = fallback
}
