//go:build !integration

package usecase

import (
	"context"
	"sync"
	"time"

	"mosha-chat-backend/internal/domain"
	"mosha-chat-backend/internal/domain/model"
	"mosha-chat-backend/internal/domain/ports/adapter"
	"mosha-chat-backend/internal/domain/ports/repository"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// fakeTxManager runs the function without a real transaction.
type fakeTxManager struct{}

func (fakeTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, nil)
}

// memJobRepo is a small in-memory ChatJobRepository used by unit tests.
type memJobRepo struct {
	mu        sync.Mutex
	jobs      map[string]*model.ChatJob
	createErr error // used by tests to simulate storage failures
	updateErr error
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{jobs: make(map[string]*model.ChatJob)}
}

func jobKey(owner, request string) string { return owner + "/" + request }

func (m *memJobRepo) Create(ctx context.Context, tx repository.Tx, job *model.ChatJob) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k := jobKey(job.OwnerID, job.RequestID)
	if _, ok := m.jobs[k]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *job
	m.jobs[k] = &cp
	return nil
}

func (m *memJobRepo) Find(ctx context.Context, tx repository.Tx, ownerID, requestID string) (*model.ChatJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[jobKey(ownerID, requestID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (m *memJobRepo) ClaimProcessing(ctx context.Context, ownerID, requestID string) (*model.ChatJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[jobKey(ownerID, requestID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if err := j.MarkProcessing(); err != nil {
		return nil, err
	}
	cp := *j
	return &cp, nil
}

func (m *memJobRepo) Update(ctx context.Context, tx repository.Tx, job *model.ChatJob) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k := jobKey(job.OwnerID, job.RequestID)
	if _, ok := m.jobs[k]; !ok {
		return domain.ErrNotFound
	}
	cp := *job
	m.jobs[k] = &cp
	return nil
}

// memMsgRepo is an in-memory ChatMessageRepository.
type memMsgRepo struct {
	mu      sync.Mutex
	msgs    []model.ChatMessage
	saveErr error
}

func (m *memMsgRepo) Save(ctx context.Context, tx repository.Tx, msg *model.ChatMessage) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, *msg)
	return nil
}

func (m *memMsgRepo) ListByOwner(ctx context.Context, tx repository.Tx, ownerID string) ([]model.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ChatMessage
	for _, msg := range m.msgs {
		if msg.OwnerID == ownerID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memMsgRepo) RecentByOwner(ctx context.Context, tx repository.Tx, ownerID string, n int) ([]model.ChatMessage, error) {
	all, _ := m.ListByOwner(ctx, tx, ownerID)
	return model.Recent(all, n), nil
}

// memSessionRepo maps tokens to sessions, ignoring TTL.
type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[string]*model.Session)}
}

func (m *memSessionRepo) Store(ctx context.Context, token string, sess *model.Session, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sess
	m.sessions[token] = &cp
	return nil
}

func (m *memSessionRepo) Resolve(ctx context.Context, token string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok {
		return nil, domain.ErrSessionExpired
	}
	cp := *s
	return &cp, nil
}

func (m *memSessionRepo) Revoke(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

// fakeVerifier returns a fixed identity for one accepted token.
type fakeVerifier struct {
	accept   string
	identity adapter.Identity
}

func (f *fakeVerifier) Verify(ctx context.Context, idToken string) (*adapter.Identity, error) {
	if idToken != f.accept {
		return nil, domain.ErrUnauthorized
	}
	cp := f.identity
	return &cp, nil
}

// recordingDispatcher records dispatches without running anything.
type recordingDispatcher struct {
	mu         sync.Mutex
	dispatched []string
	err        error
}

func (d *recordingDispatcher) Dispatch(ownerID, requestID string) error {
	if d.err != nil {
		return d.err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dispatched = append(d.dispatched, jobKey(ownerID, requestID))
	return nil
}
