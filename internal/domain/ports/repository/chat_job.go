package repository

import (
	"context"

	"mosha-chat-backend/internal/domain/model"
)

// ChatJobRepository is the durable record store for asynchronous chat jobs.
// All reads and writes are scoped under the owning user. Jobs are never
// deleted here; retention is an operational concern.
type ChatJobRepository interface {
	// Create persists a new pending job. The request id must be unique
	// under the owner.
	Create(ctx context.Context, tx Tx, job *model.ChatJob) error

	// Find returns the job for (ownerID, requestID) or domain.ErrNotFound.
	Find(ctx context.Context, tx Tx, ownerID, requestID string) (*model.ChatJob, error)

	// ClaimProcessing atomically advances the job from pending to processing
	// and returns the claimed job. Returns domain.ErrJobNotPending when the
	// job was already claimed or finished, domain.ErrNotFound when absent.
	ClaimProcessing(ctx context.Context, ownerID, requestID string) (*model.ChatJob, error)

	// Update writes the job's mutable fields (status, attempts, result,
	// last error, timestamps).
	Update(ctx context.Context, tx Tx, job *model.ChatJob) error
}
