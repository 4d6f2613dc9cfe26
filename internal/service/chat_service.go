package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"omnisearch/gateway/internal/backend"
	"omnisearch/gateway/internal/cache"
	app_errors "omnisearch/gateway/internal/errors"
	"omnisearch/gateway/internal/model"
	"omnisearch/gateway/internal/repository"
)

// SourceSearcher is the slice of the backend client the chat flow needs:
// semantic search supplies the citations attached to assistant replies.
type SourceSearcher interface {
	SearchSemantic(ctx context.Context, req *backend.SemanticSearchRequest) ([]model.SearchResult, error)
}

// SendMessageRequest is a user turn entering a session. An empty SessionID
// means "start a new session first".
type SendMessageRequest struct {
	SessionID   string   `json:"sessionId"`
	Content     string   `json:"content" validate:"required,min=1"`
	DocumentIDs []string `json:"documentIds,omitempty"`
}

// SendMessageResult is what the send operation hands back to the handler.
type SendMessageResult struct {
	SessionID string            `json:"sessionId"`
	Message   model.ChatMessage `json:"message"`
}

// ChatService owns the session store and the cache rules around it. Reads
// go through the cache; mutations apply the merge/invalidate rules so the
// UI never has to manage server-state consistency itself.
type ChatService struct {
	repo     repository.SessionRepository
	cache    *cache.Cache
	searcher SourceSearcher
	notifier Notifier

	listTTL time.Duration
	itemTTL time.Duration
}

func NewChatService(repo repository.SessionRepository, c *cache.Cache, searcher SourceSearcher, notifier Notifier, listTTL, itemTTL time.Duration) *ChatService {
	return &ChatService{
		repo:     repo,
		cache:    c,
		searcher: searcher,
		notifier: notifier,
		listTTL:  listTTL,
		itemTTL:  itemTTL,
	}
}

// Hierarchical cache keys. Everything for one user lives under
// chat/<userID>, so invalidating that node drops the user's whole subtree.
func userKey(userID string) string     { return cache.Key("chat", userID) }
func listKey(userID string) string     { return cache.Key("chat", userID, "sessions") }
func itemKey(userID, id string) string { return cache.Key("chat", userID, "sessions", id) }

// ListSessions returns the user's sessions, most recently updated first,
// through the short-lived list cache.
func (s *ChatService) ListSessions(ctx context.Context, userID string) ([]*model.ChatSession, error) {
	if cached, ok := s.cache.Get(listKey(userID)); ok {
		if sessions, ok := cached.([]*model.ChatSession); ok {
			return sessions, nil
		}
	}

	sessions, err := s.repo.ListSessions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("could not list sessions: %w", err)
	}
	s.cache.Set(listKey(userID), sessions, s.listTTL)
	return sessions, nil
}

// GetSession returns one session with its messages. The read is skipped
// entirely when no session id is selected.
func (s *ChatService) GetSession(ctx context.Context, userID, sessionID string) (*model.SessionWithMessages, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", app_errors.ErrValidation)
	}

	if cached, ok := s.cache.Get(itemKey(userID, sessionID)); ok {
		if session, ok := cached.(*model.SessionWithMessages); ok {
			return session, nil
		}
	}

	session, err := s.repo.GetSession(ctx, userID, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, app_errors.ErrNotFound
		}
		return nil, fmt.Errorf("could not get session: %w", err)
	}
	s.cache.Set(itemKey(userID, sessionID), session, s.itemTTL)
	return session, nil
}

// CreateSession creates a session and folds it into the cache: merged into
// the cached list with de-duplication by id and prepended so the newest
// session sorts first, and the per-id entry seeded straight from the
// response so the next read costs nothing.
func (s *ChatService) CreateSession(ctx context.Context, userID, title string) (*model.ChatSession, error) {
	session, err := s.repo.CreateSession(ctx, userID, title)
	if err != nil {
		s.notifier.Failure(ctx, "create_session", "Could not create the chat.")
		return nil, fmt.Errorf("could not create session: %w", err)
	}

	s.mergeIntoList(userID, session)
	s.cache.Set(itemKey(userID, session.ID), &model.SessionWithMessages{
		ChatSession: *session,
		Messages:    []model.ChatMessage{},
	}, s.itemTTL)

	s.notifier.Success(ctx, "create_session", "New chat created.")
	return session, nil
}

// mergeIntoList rewrites the cached session list: an existing entry with
// the same id is replaced, and the session moves to the front. A cache miss
// is left alone; the next list read refetches anyway.
func (s *ChatService) mergeIntoList(userID string, session *model.ChatSession) {
	cached, ok := s.cache.Get(listKey(userID))
	if !ok {
		return
	}
	sessions, ok := cached.([]*model.ChatSession)
	if !ok {
		return
	}

	merged := make([]*model.ChatSession, 0, len(sessions)+1)
	merged = append(merged, session)
	for _, existing := range sessions {
		if existing.ID == session.ID {
			continue
		}
		merged = append(merged, existing)
	}
	s.cache.Set(listKey(userID), merged, s.listTTL)
}

// SendMessage appends the user turn, produces the assistant reply with its
// document sources, and then marks both the session's per-id entry and the
// list stale. The refetch-not-construct rule is deliberate: reply
// generation is asynchronous and server-driven, so the authoritative state
// is always re-read rather than optimistically assembled.
func (s *ChatService) SendMessage(ctx context.Context, userID string, req *SendMessageRequest) (*SendMessageResult, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("%w: message content is required", app_errors.ErrValidation)
	}

	sessionID := req.SessionID
	if sessionID == "" {
		session, err := s.repo.CreateSession(ctx, userID, "")
		if err != nil {
			s.notifier.Failure(ctx, "send_message", "Could not start a new chat.")
			return nil, fmt.Errorf("could not create session: %w", err)
		}
		sessionID = session.ID
	}

	userMsg := model.ChatMessage{Role: model.RoleUser, Content: req.Content}
	if err := s.repo.AppendMessage(ctx, userID, sessionID, &userMsg); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.notifier.Failure(ctx, "send_message", "That chat no longer exists.")
			return nil, app_errors.ErrNotFound
		}
		s.notifier.Failure(ctx, "send_message", "Could not send the message.")
		return nil, fmt.Errorf("could not append user message: %w", err)
	}

	assistantMsg := s.generateReply(ctx, req)
	if err := s.repo.AppendMessage(ctx, userID, sessionID, &assistantMsg); err != nil {
		s.notifier.Failure(ctx, "send_message", "Could not record the reply.")
		return nil, fmt.Errorf("could not append assistant message: %w", err)
	}

	// Invalidation happens strictly after the send resolved, so a stale
	// assistant turn is never presented as final.
	s.cache.Invalidate(itemKey(userID, sessionID))
	s.cache.Invalidate(listKey(userID))

	s.notifier.Success(ctx, "send_message", "Message sent.")
	return &SendMessageResult{SessionID: sessionID, Message: assistantMsg}, nil
}

// generateReply builds the assistant turn. Document sources come from the
// backend's semantic search; when the backend is unreachable the reply
// degrades to a sourceless acknowledgement instead of failing the send.
func (s *ChatService) generateReply(ctx context.Context, req *SendMessageRequest) model.ChatMessage {
	searchReq := &backend.SemanticSearchRequest{Query: req.Content, Limit: 5}
	if len(req.DocumentIDs) > 0 {
		searchReq.Filters = map[string]any{"document_ids": req.DocumentIDs}
	}

	results, err := s.searcher.SearchSemantic(ctx, searchReq)
	if err != nil {
		slog.Warn("Semantic search unavailable, replying without sources", "error", err)
		return model.ChatMessage{
			Role:    model.RoleAssistant,
			Content: "I could not reach the document index just now, so this answer has no citations. Please try again shortly.",
		}
	}

	sources := make([]model.DocumentSource, 0, len(results))
	var cited []string
	for _, r := range results {
		sources = append(sources, model.DocumentSource{
			DocumentID:     r.DocumentID,
			DocumentName:   r.DocumentName,
			RelevanceScore: r.Score,
			Snippet:        r.Content,
		})
		cited = append(cited, r.DocumentName)
	}

	content := "I could not find anything relevant in your documents."
	if len(cited) > 0 {
		content = fmt.Sprintf("Based on %s: %s", strings.Join(cited, ", "), results[0].Content)
	}
	return model.ChatMessage{Role: model.RoleAssistant, Content: content, Sources: sources}
}

// DeleteSession removes a session. A not-found outcome is benign: the
// desired end state is already achieved, so the cache is updated the same
// way and the user is told the chat was already gone. Any other failure is
// reported without touching the cache.
func (s *ChatService) DeleteSession(ctx context.Context, userID, sessionID string) error {
	err := s.repo.DeleteSession(ctx, userID, sessionID)
	switch {
	case err == nil:
		s.notifier.Success(ctx, "delete_session", "Chat deleted.")
	case errors.Is(err, repository.ErrNotFound):
		s.notifier.Success(ctx, "delete_session", "Chat was already deleted.")
	default:
		s.notifier.Failure(ctx, "delete_session", "Could not delete the chat.")
		return fmt.Errorf("could not delete session: %w", err)
	}

	s.removeFromList(userID, sessionID)
	s.cache.Evict(itemKey(userID, sessionID))

	return nil
}

// removeFromList drops the session from the cached list right away. The
// list entry keeps its short freshness window, so the next expiry reconciles
// it with the store regardless.
func (s *ChatService) removeFromList(userID, sessionID string) {
	cached, ok := s.cache.Get(listKey(userID))
	if !ok {
		return
	}
	sessions, ok := cached.([]*model.ChatSession)
	if !ok {
		return
	}

	filtered := make([]*model.ChatSession, 0, len(sessions))
	for _, existing := range sessions {
		if existing.ID == sessionID {
			continue
		}
		filtered = append(filtered, existing)
	}
	s.cache.Set(listKey(userID), filtered, s.listTTL)
}
