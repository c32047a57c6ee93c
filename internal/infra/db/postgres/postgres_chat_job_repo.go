package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/oklog/ulid/v2"

	"mosha-chat-backend/internal/domain"
	"mosha-chat-backend/internal/domain/model"
	"mosha-chat-backend/internal/domain/ports/repository"
)

var _ repository.ChatJobRepository = (*chatJobRepo)(nil)

type chatJobRepo struct {
	pool *pgxpool.Pool
}

func NewChatJobRepo(pool *pgxpool.Pool) *chatJobRepo {
	return &chatJobRepo{pool: pool}
}

const chatJobColumns = `request_id, owner_id, prompt, status, attempts,
       result_sender, result_message, result_at,
       last_error, created_at, updated_at, completed_at`

func (r *chatJobRepo) Create(ctx context.Context, tx repository.Tx, job *model.ChatJob) error {
	if job.RequestID == "" {
		job.RequestID = ulid.Make().String()
	}
	const q = `
INSERT INTO chat_jobs (request_id, owner_id, prompt, status, attempts, last_error, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`

	_, err := execSQL(ctx, r.pool, tx, q,
		job.RequestID, job.OwnerID, job.Prompt, string(job.Status), job.Attempts, job.LastError,
		job.CreatedAt, job.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("create chat job: %w", err)
	}
	return nil
}

func (r *chatJobRepo) Find(ctx context.Context, tx repository.Tx, ownerID, requestID string) (*model.ChatJob, error) {
	q := `SELECT ` + chatJobColumns + `
FROM chat_jobs
WHERE owner_id = $1 AND request_id = $2;`

	row, err := pickRow(ctx, r.pool, tx, q, ownerID, requestID)
	if err != nil {
		return nil, err
	}
	return scanChatJob(row)
}

// ClaimProcessing performs the pending -> processing transition atomically so
// a job is only ever claimed by one runner.
func (r *chatJobRepo) ClaimProcessing(ctx context.Context, ownerID, requestID string) (*model.ChatJob, error) {
	q := `
UPDATE chat_jobs
   SET status = 'processing', updated_at = NOW()
 WHERE owner_id = $1 AND request_id = $2 AND status = 'pending'
RETURNING ` + chatJobColumns + `;`

	job, err := scanChatJob(r.pool.QueryRow(ctx, q, ownerID, requestID))
	if err == nil {
		return job, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	// No pending row matched: distinguish a missing job from an already
	// claimed or finished one.
	if _, ferr := r.Find(ctx, nil, ownerID, requestID); ferr != nil {
		return nil, ferr
	}
	return nil, domain.ErrJobNotPending
}

func (r *chatJobRepo) Update(ctx context.Context, tx repository.Tx, job *model.ChatJob) error {
	job.UpdatedAt = time.Now()

	var (
		resultSender  sql.NullString
		resultMessage sql.NullString
		resultAt      sql.NullTime
		completedAt   sql.NullTime
	)
	if job.Result != nil {
		resultSender = sql.NullString{String: job.Result.SenderName, Valid: true}
		resultMessage = sql.NullString{String: job.Result.Message, Valid: true}
		resultAt = sql.NullTime{Time: job.Result.Timestamp, Valid: true}
	}
	if !job.CompletedAt.IsZero() {
		completedAt = sql.NullTime{Time: job.CompletedAt, Valid: true}
	}

	const q = `
UPDATE chat_jobs
   SET status = $3,
       attempts = $4,
       result_sender = $5,
       result_message = $6,
       result_at = $7,
       last_error = $8,
       updated_at = $9,
       completed_at = $10
 WHERE owner_id = $1 AND request_id = $2;`

	tag, err := execSQL(ctx, r.pool, tx, q,
		job.OwnerID, job.RequestID, string(job.Status), job.Attempts,
		resultSender, resultMessage, resultAt,
		job.LastError, job.UpdatedAt, completedAt)
	if err != nil {
		return fmt.Errorf("update chat job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanChatJob(row pgx.Row) (*model.ChatJob, error) {
	var (
		job           model.ChatJob
		statusStr     string
		resultSender  sql.NullString
		resultMessage sql.NullString
		resultAt      sql.NullTime
		completedAt   sql.NullTime
	)
	err := row.Scan(
		&job.RequestID, &job.OwnerID, &job.Prompt, &statusStr, &job.Attempts,
		&resultSender, &resultMessage, &resultAt,
		&job.LastError, &job.CreatedAt, &job.UpdatedAt, &completedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	job.Status = model.ChatJobStatus(statusStr)
	if resultMessage.Valid {
		job.Result = &model.ChatJobResult{
			SenderName: resultSender.String,
			Message:    resultMessage.String,
			Timestamp:  resultAt.Time,
		}
	}
	if completedAt.Valid {
		job.CompletedAt = completedAt.Time
	}
	return &job, nil
}
