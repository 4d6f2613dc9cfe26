// Package mocks provides testify mocks for the service contracts in
// internal/interfaces.
package mocks

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/mock"

	"omnisearch/gateway/internal/backend"
	"omnisearch/gateway/internal/model"
	"omnisearch/gateway/internal/service"
	"omnisearch/gateway/internal/upload"
)

// MockChatService mocks interfaces.ChatService.
type MockChatService struct{ mock.Mock }

func NewMockChatService(t *testing.T) *MockChatService {
	m := &MockChatService{}
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockChatService) ListSessions(ctx context.Context, userID string) ([]*model.ChatSession, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ChatSession), args.Error(1)
}

func (m *MockChatService) GetSession(ctx context.Context, userID, sessionID string) (*model.SessionWithMessages, error) {
	args := m.Called(ctx, userID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SessionWithMessages), args.Error(1)
}

func (m *MockChatService) CreateSession(ctx context.Context, userID, title string) (*model.ChatSession, error) {
	args := m.Called(ctx, userID, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ChatSession), args.Error(1)
}

func (m *MockChatService) SendMessage(ctx context.Context, userID string, req *service.SendMessageRequest) (*service.SendMessageResult, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SendMessageResult), args.Error(1)
}

func (m *MockChatService) DeleteSession(ctx context.Context, userID, sessionID string) error {
	args := m.Called(ctx, userID, sessionID)
	return args.Error(0)
}

// MockDocumentService mocks interfaces.DocumentService.
type MockDocumentService struct{ mock.Mock }

func NewMockDocumentService(t *testing.T) *MockDocumentService {
	m := &MockDocumentService{}
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockDocumentService) List(ctx context.Context, limit, offset int, statusFilter string) ([]model.Document, error) {
	args := m.Called(ctx, limit, offset, statusFilter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, documentID string) (*model.Document, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Update(ctx context.Context, documentID string, update *backend.DocumentUpdate) (*model.Document, error) {
	args := m.Called(ctx, documentID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, documentID string) error {
	args := m.Called(ctx, documentID)
	return args.Error(0)
}

func (m *MockDocumentService) Content(ctx context.Context, documentID string) (*backend.DocumentContent, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.DocumentContent), args.Error(1)
}

func (m *MockDocumentService) Stats(ctx context.Context) (*backend.DocumentStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.DocumentStats), args.Error(1)
}

func (m *MockDocumentService) Download(ctx context.Context, documentID string) (io.ReadCloser, string, error) {
	args := m.Called(ctx, documentID)
	var rc io.ReadCloser
	if args.Get(0) != nil {
		rc = args.Get(0).(io.ReadCloser)
	}
	return rc, args.String(1), args.Error(2)
}

func (m *MockDocumentService) Upload(ctx context.Context, userID string, req *service.UploadRequest) (*backend.UploadResult, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.UploadResult), args.Error(1)
}

func (m *MockDocumentService) Uploads(userID string) []upload.Progress {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]upload.Progress)
}

func (m *MockDocumentService) DismissUpload(userID, fileID string) {
	m.Called(userID, fileID)
}

// MockSearchService mocks interfaces.SearchService.
type MockSearchService struct{ mock.Mock }

func NewMockSearchService(t *testing.T) *MockSearchService {
	m := &MockSearchService{}
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockSearchService) Semantic(ctx context.Context, req *backend.SemanticSearchRequest) ([]model.SearchResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SearchResult), args.Error(1)
}

func (m *MockSearchService) Keyword(ctx context.Context, q string, limit, offset int) ([]model.SearchResult, error) {
	args := m.Called(ctx, q, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SearchResult), args.Error(1)
}

// MockAuthService mocks interfaces.AuthService.
type MockAuthService struct{ mock.Mock }

func NewMockAuthService(t *testing.T) *MockAuthService {
	m := &MockAuthService{}
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockAuthService) Login(ctx context.Context, creds *backend.Credentials) (*model.Token, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Token), args.Error(1)
}

func (m *MockAuthService) Register(ctx context.Context, reg *backend.Registration) (*model.User, error) {
	args := m.Called(ctx, reg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) Me(ctx context.Context) (*model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) Refresh(ctx context.Context) (*model.Token, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Token), args.Error(1)
}
