package model

import (
	"strings"
	"time"

	"mosha-chat-backend/internal/domain"
)

type ChatJobStatus string

const (
	ChatJobStatusPending    ChatJobStatus = "pending"
	ChatJobStatusProcessing ChatJobStatus = "processing"
	ChatJobStatusDone       ChatJobStatus = "done"
	ChatJobStatusFailed     ChatJobStatus = "failed"
)

// Terminal reports whether no further transitions may occur.
func (s ChatJobStatus) Terminal() bool {
	return s == ChatJobStatusDone || s == ChatJobStatusFailed
}

// ChatJobResult is the assistant reply recorded on a completed job.
type ChatJobResult struct {
	SenderName string    `json:"senderName"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

// ChatJob is one prompt-to-reply unit of asynchronous work. Status moves
// forward only: pending -> processing -> done|failed. Exactly one of
// Result/LastError is populated, and only in a terminal state.
type ChatJob struct {
	RequestID   string
	OwnerID     string
	Prompt      string
	Status      ChatJobStatus
	Attempts    int
	Result      *ChatJobResult
	LastError   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt time.Time
}

func NewChatJob(requestID, ownerID, prompt string) (*ChatJob, error) {
	if requestID == "" || ownerID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &ChatJob{
		RequestID: requestID,
		OwnerID:   ownerID,
		Prompt:    prompt,
		Status:    ChatJobStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// MarkProcessing claims the job for a runner. Only a pending job can be claimed.
func (j *ChatJob) MarkProcessing() error {
	if j.Status != ChatJobStatusPending {
		return domain.ErrJobNotPending
	}
	j.Status = ChatJobStatusProcessing
	j.UpdatedAt = time.Now()
	return nil
}

// MarkDone records the assistant reply and finishes the job.
func (j *ChatJob) MarkDone(senderName, message string) error {
	if j.Status != ChatJobStatusProcessing {
		return domain.ErrJobTerminal
	}
	now := time.Now()
	j.Status = ChatJobStatusDone
	j.Result = &ChatJobResult{SenderName: senderName, Message: message, Timestamp: now}
	j.LastError = ""
	j.UpdatedAt = now
	j.CompletedAt = now
	return nil
}

// MarkFailed records the final failure message and finishes the job.
func (j *ChatJob) MarkFailed(reason string) error {
	if j.Status.Terminal() {
		return domain.ErrJobTerminal
	}
	now := time.Now()
	j.Status = ChatJobStatusFailed
	j.Result = nil
	j.LastError = reason
	j.UpdatedAt = now
	j.CompletedAt = now
	return nil
}
