// file: service/fakes_test.go

package service

import (
	"context"
	"go-auth-api/model"
	"go-auth-api/repository"
	"sort"
	"sync"
	"time"
)

// In-memory stores with the same atomicity the Postgres stores give: a
// single insert or delete either happens entirely or not at all.

type memUsers struct {
	mu    sync.Mutex
	byID  map[string]*model.User
	login map[string]time.Time
}

func newMemUsers(users ...*model.User) *memUsers {
	m := &memUsers{byID: map[string]*model.User{}, login: map[string]time.Time{}}
	for _, u := range users {
		m.byID[u.ID] = u
	}
	return m
}

func (m *memUsers) CreateUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	cp := *user
	m.byID[user.ID] = &cp
	return nil
}

func (m *memUsers) GetUserByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return repository.ErrNotFound
	}
	m.login[id] = at
	return nil
}

func (m *memUsers) setActive(id string, active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[id].IsActive = active
}

type memSessions struct {
	mu   sync.Mutex
	byID map[string]*model.RefreshSession
}

func newMemSessions() *memSessions {
	return &memSessions{byID: map[string]*model.RefreshSession{}}
}

func (m *memSessions) Save(_ context.Context, s *model.RefreshSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[s.TokenID]; ok {
		return repository.ErrDuplicate
	}
	cp := *s
	m.byID[s.TokenID] = &cp
	return nil
}

func (m *memSessions) Get(_ context.Context, tokenID string) (*model.RefreshSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[tokenID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSessions) ListByOwner(_ context.Context, ownerID string) ([]*model.RefreshSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.RefreshSession
	for _, s := range m.byID {
		if s.OwnerID == ownerID {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memSessions) Delete(_ context.Context, tokenID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, tokenID)
	return nil
}

func (m *memSessions) DeleteByOwner(_ context.Context, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.byID {
		if s.OwnerID == ownerID {
			delete(m.byID, id)
		}
	}
	return nil
}

func (m *memSessions) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

type memRevocations struct {
	mu   sync.Mutex
	byID map[string]model.RevokedToken
}

func newMemRevocations() *memRevocations {
	return &memRevocations{byID: map[string]model.RevokedToken{}}
}

func (m *memRevocations) Add(_ context.Context, t *model.RevokedToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[t.TokenID]; ok {
		return repository.ErrDuplicate
	}
	m.byID[t.TokenID] = *t
	return nil
}

func (m *memRevocations) Get(_ context.Context, tokenID string) (*model.RevokedToken, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[tokenID]
	if !ok {
		return nil, false, nil
	}
	return &t, true, nil
}

func (m *memRevocations) Delete(_ context.Context, tokenID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, tokenID)
	return nil
}

func (m *memRevocations) reason(tokenID string) (model.RevocationReason, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[tokenID]
	return t.Reason, ok
}
