// file: service/mocks_test.go

package service

import (
	"context"
	"go-auth-api/model"
	"time"

	"github.com/stretchr/testify/mock"
)

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) CreateUser(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

type mockSessionRepo struct{ mock.Mock }

func (m *mockSessionRepo) Save(ctx context.Context, session *model.RefreshSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *mockSessionRepo) Get(ctx context.Context, tokenID string) (*model.RefreshSession, error) {
	args := m.Called(ctx, tokenID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RefreshSession), args.Error(1)
}

func (m *mockSessionRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.RefreshSession, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.RefreshSession), args.Error(1)
}

func (m *mockSessionRepo) Delete(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

func (m *mockSessionRepo) DeleteByOwner(ctx context.Context, ownerID string) error {
	args := m.Called(ctx, ownerID)
	return args.Error(0)
}

type mockRevocationRepo struct{ mock.Mock }

func (m *mockRevocationRepo) Add(ctx context.Context, token *model.RevokedToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockRevocationRepo) Get(ctx context.Context, tokenID string) (*model.RevokedToken, bool, error) {
	args := m.Called(ctx, tokenID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*model.RevokedToken), args.Bool(1), args.Error(2)
}

func (m *mockRevocationRepo) Delete(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

func revokedID(id string) interface{} {
	return mock.MatchedBy(func(t *model.RevokedToken) bool { return t.TokenID == id })
}
