package interfaces

import (
	"context"
	"io"

	"omnisearch/gateway/internal/backend"
	"omnisearch/gateway/internal/model"
	"omnisearch/gateway/internal/service"
	"omnisearch/gateway/internal/upload"
)

// This file defines the contracts the API layer depends on. Handlers are
// written against these interfaces rather than concrete services, which
// keeps them mockable in tests.

// ChatService is the contract for session and message logic.
type ChatService interface {
	ListSessions(ctx context.Context, userID string) ([]*model.ChatSession, error)
	GetSession(ctx context.Context, userID, sessionID string) (*model.SessionWithMessages, error)
	CreateSession(ctx context.Context, userID, title string) (*model.ChatSession, error)
	SendMessage(ctx context.Context, userID string, req *service.SendMessageRequest) (*service.SendMessageResult, error)
	DeleteSession(ctx context.Context, userID, sessionID string) error
}

// DocumentService is the contract for the document proxy flow.
type DocumentService interface {
	List(ctx context.Context, limit, offset int, statusFilter string) ([]model.Document, error)
	Get(ctx context.Context, documentID string) (*model.Document, error)
	Update(ctx context.Context, documentID string, update *backend.DocumentUpdate) (*model.Document, error)
	Delete(ctx context.Context, documentID string) error
	Content(ctx context.Context, documentID string) (*backend.DocumentContent, error)
	Stats(ctx context.Context) (*backend.DocumentStats, error)
	Download(ctx context.Context, documentID string) (io.ReadCloser, string, error)
	Upload(ctx context.Context, userID string, req *service.UploadRequest) (*backend.UploadResult, error)
	Uploads(userID string) []upload.Progress
	DismissUpload(userID, fileID string)
}

// SearchService is the contract for the search proxy flow.
type SearchService interface {
	Semantic(ctx context.Context, req *backend.SemanticSearchRequest) ([]model.SearchResult, error)
	Keyword(ctx context.Context, q string, limit, offset int) ([]model.SearchResult, error)
}

// AuthService is the contract for the auth proxy flow.
type AuthService interface {
	Login(ctx context.Context, creds *backend.Credentials) (*model.Token, error)
	Register(ctx context.Context, reg *backend.Registration) (*model.User, error)
	Me(ctx context.Context) (*model.User, error)
	Refresh(ctx context.Context) (*model.Token, error)
}
