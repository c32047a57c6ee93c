package usecase

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"mosha-chat-backend/internal/domain"
	"mosha-chat-backend/internal/domain/model"
	"mosha-chat-backend/internal/domain/ports/repository"
)

// JobDispatcher hands a freshly created job to the background runner.
type JobDispatcher interface {
	Dispatch(ownerID, requestID string) error
}

// PollResult is the non-blocking answer to a result poll.
type PollResult struct {
	OK      bool   `json:"ok"`
	Pending bool   `json:"pending,omitempty"`
	Reply   string `json:"reply,omitempty"`
}

// Compile-time check
var _ ChatUseCase = (*chatUC)(nil)

type ChatUseCase interface {
	// Submit validates the session, records a pending job and the user's
	// message, dispatches the runner, and returns the request id without
	// waiting for generation.
	Submit(ctx context.Context, ownerID, sessionToken, prompt string) (requestID string, err error)

	// Poll reports the job's current state. Safe to call repeatedly;
	// terminal answers never change.
	Poll(ctx context.Context, ownerID, sessionToken, requestID string) (PollResult, error)

	// SendMessage appends a user message to history without generation.
	SendMessage(ctx context.Context, ownerID, sessionToken, text string) error

	// History returns the owner's conversation, oldest first.
	History(ctx context.Context, ownerID, sessionToken string) ([]model.ChatMessage, error)
}

type chatUC struct {
	jobs       repository.ChatJobRepository
	msgs       repository.ChatMessageRepository
	sessions   repository.SessionRepository
	txm        repository.TransactionManager
	dispatcher JobDispatcher
	log        *zerolog.Logger
}

// NewChatUseCase wires the chat flow. txm may be nil; submission then writes
// the user message and the job record non-transactionally.
func NewChatUseCase(
	jobs repository.ChatJobRepository,
	msgs repository.ChatMessageRepository,
	sessions repository.SessionRepository,
	txm repository.TransactionManager,
	dispatcher JobDispatcher,
	log *zerolog.Logger,
) *chatUC {
	return &chatUC{jobs: jobs, msgs: msgs, sessions: sessions, txm: txm, dispatcher: dispatcher, log: log}
}

// authorize resolves the session and checks it belongs to ownerID.
func (c *chatUC) authorize(ctx context.Context, ownerID, sessionToken string) (*model.Session, error) {
	sess, err := c.sessions.Resolve(ctx, sessionToken)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if ownerID == "" || sess.UserID != ownerID {
		return nil, domain.ErrUnauthorized
	}
	return sess, nil
}

func (c *chatUC) Submit(ctx context.Context, ownerID, sessionToken, prompt string) (string, error) {
	sess, err := c.authorize(ctx, ownerID, sessionToken)
	if err != nil {
		return "", err
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", domain.ErrInvalidArgument
	}

	job, err := model.NewChatJob(ulid.Make().String(), ownerID, prompt)
	if err != nil {
		return "", err
	}

	senderName := sess.Email
	if senderName == "" {
		senderName = "User"
	}
	userMsg := model.NewUserMessage("", ownerID, senderName, prompt)

	// The user's message and the pending job land together or not at all,
	// so history never shows a prompt that has no job behind it.
	save := func(ctx context.Context, tx repository.Tx) error {
		if err := c.msgs.Save(ctx, tx, userMsg); err != nil {
			return err
		}
		return c.jobs.Create(ctx, tx, job)
	}
	if c.txm != nil {
		err = c.txm.WithTx(ctx, pgx.TxOptions{}, save)
	} else {
		err = save(ctx, nil)
	}
	if err != nil {
		return "", err
	}

	if err := c.dispatcher.Dispatch(ownerID, job.RequestID); err != nil {
		// The ack must still go out; record the failure so the client's
		// poll surfaces it instead of waiting forever.
		c.log.Error().Err(err).Str("request_id", job.RequestID).Msg("dispatch failed")
		if markErr := job.MarkFailed(err.Error()); markErr == nil {
			if upErr := c.jobs.Update(ctx, nil, job); upErr != nil {
				c.log.Error().Err(upErr).Str("request_id", job.RequestID).Msg("could not record dispatch failure")
			}
		}
	}

	return job.RequestID, nil
}

func (c *chatUC) Poll(ctx context.Context, ownerID, sessionToken, requestID string) (PollResult, error) {
	if _, err := c.authorize(ctx, ownerID, sessionToken); err != nil {
		return PollResult{}, err
	}
	if requestID == "" {
		return PollResult{}, domain.ErrInvalidArgument
	}

	job, err := c.jobs.Find(ctx, nil, ownerID, requestID)
	if err != nil {
		return PollResult{}, err
	}

	switch job.Status {
	case model.ChatJobStatusDone:
		return PollResult{OK: true, Reply: job.Result.Message}, nil
	case model.ChatJobStatusFailed:
		// Failures surface as a displayable reply so clients stop polling.
		return PollResult{OK: true, Reply: "Error: " + job.LastError}, nil
	default:
		return PollResult{Pending: true}, nil
	}
}

func (c *chatUC) SendMessage(ctx context.Context, ownerID, sessionToken, text string) error {
	sess, err := c.authorize(ctx, ownerID, sessionToken)
	if err != nil {
		return err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.ErrInvalidArgument
	}
	senderName := sess.Email
	if senderName == "" {
		senderName = "User"
	}
	return c.msgs.Save(ctx, nil, model.NewUserMessage("", ownerID, senderName, text))
}

func (c *chatUC) History(ctx context.Context, ownerID, sessionToken string) ([]model.ChatMessage, error) {
	if _, err := c.authorize(ctx, ownerID, sessionToken); err != nil {
		return nil, err
	}
	return c.msgs.ListByOwner(ctx, nil, ownerID)
}
