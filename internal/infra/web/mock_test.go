//go:build !integration

package web

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"mosha-chat-backend/internal/domain"
	"mosha-chat-backend/internal/domain/model"
	"mosha-chat-backend/internal/domain/ports/adapter"
	"mosha-chat-backend/internal/domain/ports/repository"
)

// --- in-memory ports for handler tests ---

func newLogger() *zerolog.Logger { l := zerolog.Nop(); return &l }

type mockTxManager struct{}

func (mockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, nil)
}

type mockJobRepo struct {
	mu   sync.Mutex
	jobs map[string]*model.ChatJob
}

func newMockJobRepo() *mockJobRepo {
	return &mockJobRepo{jobs: make(map[string]*model.ChatJob)}
}

func key(owner, request string) string { return owner + "/" + request }

func (m *mockJobRepo) Create(ctx context.Context, tx repository.Tx, job *model.ChatJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(job.OwnerID, job.RequestID)
	if _, ok := m.jobs[k]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *job
	m.jobs[k] = &cp
	return nil
}

func (m *mockJobRepo) Find(ctx context.Context, tx repository.Tx, ownerID, requestID string) (*model.ChatJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[key(ownerID, requestID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (m *mockJobRepo) ClaimProcessing(ctx context.Context, ownerID, requestID string) (*model.ChatJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[key(ownerID, requestID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if err := j.MarkProcessing(); err != nil {
		return nil, err
	}
	cp := *j
	return &cp, nil
}

func (m *mockJobRepo) Update(ctx context.Context, tx repository.Tx, job *model.ChatJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(job.OwnerID, job.RequestID)
	if _, ok := m.jobs[k]; !ok {
		return domain.ErrNotFound
	}
	cp := *job
	m.jobs[k] = &cp
	return nil
}

type mockMsgRepo struct {
	mu   sync.Mutex
	msgs []model.ChatMessage
}

func (m *mockMsgRepo) Save(ctx context.Context, tx repository.Tx, msg *model.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, *msg)
	return nil
}

func (m *mockMsgRepo) ListByOwner(ctx context.Context, tx repository.Tx, ownerID string) ([]model.ChatMessage, error) {
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

func (m *mockMsgRepo) RecentByOwner(ctx context.Context, tx repository.Tx, ownerID string, n int) ([]model.ChatMessage, error) {
	all, _ := m.ListByOwner(ctx, tx, ownerID)
	return model.Recent(all, n), nil
}

type mockSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[string]*model.Session)}
}

func (m *mockSessionRepo) Store(ctx context.Context, token string, sess *model.Session, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sess
	m.sessions[token] = &cp
	return nil
}

func (m *mockSessionRepo) Resolve(ctx context.Context, token string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok {
		return nil, domain.ErrSessionExpired
	}
	cp := *s
	return &cp, nil
}

func (m *mockSessionRepo) Revoke(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

type mockVerifier struct {
	accept   string
	identity adapter.Identity
}

func (m *mockVerifier) Verify(ctx context.Context, idToken string) (*adapter.Identity, error) {
	if idToken != m.accept {
		return nil, domain.ErrUnauthorized
	}
	cp := m.identity
	return &cp, nil
}

// replyDispatcher completes the job inline so polls observe a terminal state.
type replyDispatcher struct {
	jobs  *mockJobRepo
	reply string
	fail  string
}

func (d *replyDispatcher) Dispatch(ownerID, requestID string) error {
	job, err := d.jobs.ClaimProcessing(context.Background(), ownerID, requestID)
	if err != nil {
		return err
	}
	if d.fail != "" {
		if err := job.MarkFailed(d.fail); err != nil {
			return err
		}
	} else {
		if err := job.MarkDone(model.AssistantSenderName, d.reply); err != nil {
			return err
		}
	}
	return d.jobs.Update(context.Background(), nil, job)
}

// idleDispatcher accepts jobs without running them, so jobs stay pending.
type idleDispatcher struct{}

func (idleDispatcher) Dispatch(ownerID, requestID string) error { return nil }
