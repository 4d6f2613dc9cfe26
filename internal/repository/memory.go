package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"omnisearch/gateway/internal/model"
)

// DefaultTitleMaxLen is how many runes of the first user message become the
// session title before the ellipsis marker is appended.
const DefaultTitleMaxLen = 50

type sessionRecord struct {
	session  model.ChatSession
	messages []model.ChatMessage
}

// memoryRepository keeps every user's sessions in process memory. It exists
// so the gateway can run before a real backend is wired in: not durable
// across restarts, single process only.
type memoryRepository struct {
	mu          sync.RWMutex
	sessions    map[string][]*sessionRecord // keyed by user id
	titleMaxLen int
	now         func() time.Time
}

// NewMemoryRepository returns an empty in-memory session store. A
// titleMaxLen of zero falls back to DefaultTitleMaxLen.
func NewMemoryRepository(titleMaxLen int) SessionRepository {
	if titleMaxLen <= 0 {
		titleMaxLen = DefaultTitleMaxLen
	}
	return &memoryRepository{
		sessions:    make(map[string][]*sessionRecord),
		titleMaxLen: titleMaxLen,
		now:         time.Now,
	}
}

func (r *memoryRepository) CreateSession(_ context.Context, userID, title string) (*model.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if title == "" {
		title = "New Chat"
	}
	now := r.now().UTC()
	rec := &sessionRecord{
		session: model.ChatSession{
			ID:        uuid.NewString(),
			Title:     title,
			UserID:    userID,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	r.sessions[userID] = append(r.sessions[userID], rec)

	s := rec.session
	return &s, nil
}

func (r *memoryRepository) GetSession(_ context.Context, userID, sessionID string) (*model.SessionWithMessages, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec := r.find(userID, sessionID)
	if rec == nil {
		return nil, ErrNotFound
	}
	out := &model.SessionWithMessages{
		ChatSession: rec.session,
		Messages:    make([]model.ChatMessage, len(rec.messages)),
	}
	copy(out.Messages, rec.messages)
	return out, nil
}

func (r *memoryRepository) AppendMessage(_ context.Context, userID, sessionID string, msg *model.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := r.find(userID, sessionID)
	if rec == nil {
		return ErrNotFound
	}

	stored := *msg
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	stored.SessionID = sessionID
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = r.now().UTC()
	}

	// The first user-authored message names the session.
	if len(rec.messages) == 0 && stored.Role == model.RoleUser {
		rec.session.Title = DeriveTitle(stored.Content, r.titleMaxLen)
	}

	rec.messages = append(rec.messages, stored)
	rec.session.UpdatedAt = r.now().UTC()
	msg.ID = stored.ID
	msg.SessionID = stored.SessionID
	msg.CreatedAt = stored.CreatedAt
	return nil
}

func (r *memoryRepository) DeleteSession(_ context.Context, userID, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	recs := r.sessions[userID]
	for i, rec := range recs {
		if rec.session.ID == sessionID {
			r.sessions[userID] = append(recs[:i], recs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *memoryRepository) ListSessions(_ context.Context, userID string) ([]*model.ChatSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	recs := r.sessions[userID]
	out := make([]*model.ChatSession, 0, len(recs))
	for _, rec := range recs {
		s := rec.session
		out = append(out, &s)
	}
	// Most recently updated first.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (r *memoryRepository) find(userID, sessionID string) *sessionRecord {
	for _, rec := range r.sessions[userID] {
		if rec.session.ID == sessionID {
			return rec
		}
	}
	return nil
}

// DeriveTitle shortens the first message into a session title: at most
// maxLen runes of content followed by an ellipsis marker when truncated.
func DeriveTitle(content string, maxLen int) string {
	trimmed := strings.TrimSpace(content)
	runes := []rune(trimmed)
	if len(runes) <= maxLen {
		return trimmed
	}
	return strings.TrimSpace(string(runes[:maxLen])) + "..."
}
