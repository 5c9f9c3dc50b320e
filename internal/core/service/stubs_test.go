package service

import (
	"context"
	"sync"
	"time"

	"github.com/accountkit/user-api/internal/core/domain"
)

// memStore is an in-memory relational store. Deleting a user cascades to its
// credential and token, like the database does.
type memStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*domain.User
	creds  map[int64]*domain.Credential
	tokens map[int64]*domain.AuthToken

	// conflictOnCreate simulates a unique violation that slipped past the pre-check.
	conflictOnCreate string
}

func newMemStore() *memStore {
	return &memStore{
		users:  make(map[int64]*domain.User),
		creds:  make(map[int64]*domain.Credential),
		tokens: make(map[int64]*domain.AuthToken),
	}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

type memUsers struct{ s *memStore }

func (r memUsers) Create(_ context.Context, user *domain.User, passwordHash string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.conflictOnCreate != "" {
		return nil, &domain.ConflictError{Field: r.s.conflictOnCreate}
	}
	for _, u := range r.s.users {
		if u.Username == user.Username {
			return nil, &domain.ConflictError{Field: "username"}
		}
		if u.Email == user.Email {
			return nil, &domain.ConflictError{Field: "email"}
		}
	}

	r.s.nextID++
	created := cloneUser(user)
	created.ID = r.s.nextID
	r.s.users[created.ID] = created
	r.s.creds[created.ID] = &domain.Credential{UserID: created.ID, PasswordHash: passwordHash, UpdatedAt: user.CreatedAt}
	return cloneUser(created), nil
}

func (r memUsers) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r memUsers) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r memUsers) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	r.s.users[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

func (r memUsers) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.s.users, id)
	delete(r.s.creds, id)
	delete(r.s.tokens, id)
	return nil
}

type memCreds struct{ s *memStore }

func (r memCreds) FindByUserID(_ context.Context, userID int64) (*domain.Credential, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.creds[userID]
	if !ok {
		return nil, domain.ErrCredentialNotFound
	}
	clone := *c
	return &clone, nil
}

func (r memCreds) UpdateHash(_ context.Context, userID int64, hash string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.creds[userID]
	if !ok {
		return domain.ErrCredentialNotFound
	}
	c.PasswordHash = hash
	c.UpdatedAt = at
	return nil
}

type memTokens struct{ s *memStore }

func (r memTokens) Upsert(_ context.Context, userID int64, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.tokens[userID] = &domain.AuthToken{UserID: userID, Token: token, CreatedAt: time.Now().UTC()}
	return nil
}

func (r memTokens) FindByUserID(_ context.Context, userID int64) (*domain.AuthToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tokens[userID]
	if !ok {
		return nil, domain.ErrTokenNotFound
	}
	clone := *t
	return &clone, nil
}

func (r memTokens) Delete(_ context.Context, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.tokens, userID)
	return nil
}

type stubCache struct {
	entries map[int64]string
	getErr  error
	setErr  error
	delErr  error
	gets    int
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[int64]string)}
}

func (c *stubCache) Get(_ context.Context, userID int64) (string, error) {
	c.gets++
	if c.getErr != nil {
		return "", c.getErr
	}
	tok, ok := c.entries[userID]
	if !ok {
		return "", domain.ErrTokenNotFound
	}
	return tok, nil
}

func (c *stubCache) Set(_ context.Context, userID int64, token string, _ time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[userID] = token
	return nil
}

func (c *stubCache) Delete(_ context.Context, userID int64) error {
	if c.delErr != nil {
		return c.delErr
	}
	delete(c.entries, userID)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.AccountEvent
}

func (p *recordingPublisher) Publish(event domain.AccountEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) kinds() []domain.AccountEventKind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.AccountEventKind, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Kind)
	}
	return out
}
