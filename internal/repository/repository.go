package repository

import (
	"context"

	"omnisearch/gateway/internal/model"
)

// SessionRepository is the contract for chat-session persistence. The
// in-memory implementation is a development stand-in; the SQLite one is a
// durable substitute. Both key every operation by the owning user, so a
// session id can never be read or deleted across owners.
type SessionRepository interface {
	CreateSession(ctx context.Context, userID, title string) (*model.ChatSession, error)
	GetSession(ctx context.Context, userID, sessionID string) (*model.SessionWithMessages, error)
	AppendMessage(ctx context.Context, userID, sessionID string, msg *model.ChatMessage) error
	DeleteSession(ctx context.Context, userID, sessionID string) error
	ListSessions(ctx context.Context, userID string) ([]*model.ChatSession, error)
}
