package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"omnisearch/gateway/internal/backend"
	"omnisearch/gateway/internal/cache"
	app_errors "omnisearch/gateway/internal/errors"
	"omnisearch/gateway/internal/model"
	"omnisearch/gateway/internal/repository"
)

// recordingNotifier captures every notification so tests can assert the
// one-outcome-per-mutation rule.
type recordingNotifier struct {
	successes []string
	failures  []string
}

func (n *recordingNotifier) Success(_ context.Context, operation, message string) {
	n.successes = append(n.successes, operation+": "+message)
}

func (n *recordingNotifier) Failure(_ context.Context, operation, message string) {
	n.failures = append(n.failures, operation+": "+message)
}

type fakeSearcher struct {
	results []model.SearchResult
	err     error
	lastReq *backend.SemanticSearchRequest
}

func (f *fakeSearcher) SearchSemantic(_ context.Context, req *backend.SemanticSearchRequest) ([]model.SearchResult, error) {
	f.lastReq = req
	return f.results, f.err
}

func newChatFixture(t *testing.T) (*ChatService, *cache.Cache, *fakeSearcher, *recordingNotifier) {
	t.Helper()
	c := cache.New()
	searcher := &fakeSearcher{}
	notifier := &recordingNotifier{}
	svc := NewChatService(repository.NewMemoryRepository(0), c, searcher, notifier, time.Minute, 5*time.Minute)
	return svc, c, searcher, notifier
}

func TestChatService_CreateSessionUpdatesCachedList(t *testing.T) {
	svc, c, _, notifier := newChatFixture(t)
	ctx := context.Background()

	existing, err := svc.CreateSession(ctx, "u1", "existing")
	require.NoError(t, err)

	// Warm the list cache, then create: the new session must appear at the
	// front of the cached list without a refetch.
	_, err = svc.ListSessions(ctx, "u1")
	require.NoError(t, err)

	created, err := svc.CreateSession(ctx, "u1", "fresh")
	require.NoError(t, err)

	cached, ok := c.Get(cache.Key("chat", "u1", "sessions"))
	require.True(t, ok)
	sessions := cached.([]*model.ChatSession)
	require.Len(t, sessions, 2)
	assert.Equal(t, created.ID, sessions[0].ID)
	assert.Equal(t, existing.ID, sessions[1].ID)

	// The per-id entry is seeded from the response.
	item, ok := c.Get(cache.Key("chat", "u1", "sessions", created.ID))
	require.True(t, ok)
	assert.Equal(t, created.ID, item.(*model.SessionWithMessages).ID)

	assert.Len(t, notifier.successes, 2)
	assert.Empty(t, notifier.failures)
}

func TestChatService_CreateSessionDeduplicatesList(t *testing.T) {
	svc, c, _, _ := newChatFixture(t)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "u1", "one")
	require.NoError(t, err)
	_, err = svc.ListSessions(ctx, "u1")
	require.NoError(t, err)

	// Simulate the same session arriving again (e.g. a concurrent tab).
	svc.mergeIntoList("u1", session)
	svc.mergeIntoList("u1", session)

	cached, ok := c.Get(cache.Key("chat", "u1", "sessions"))
	require.True(t, ok)
	assert.Len(t, cached.([]*model.ChatSession), 1)
}

func TestChatService_ListServesFromCache(t *testing.T) {
	svc, c, _, _ := newChatFixture(t)
	ctx := context.Background()

	_, err := svc.CreateSession(ctx, "u1", "one")
	require.NoError(t, err)
	first, err := svc.ListSessions(ctx, "u1")
	require.NoError(t, err)

	// Poison the cache to prove the second read never reaches the store.
	c.Set(cache.Key("chat", "u1", "sessions"), first[:0], time.Minute)
	second, err := svc.ListSessions(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestChatService_SendMessageCreatesSessionWhenNoneSelected(t *testing.T) {
	svc, _, searcher, _ := newChatFixture(t)
	ctx := context.Background()
	searcher.results = []model.SearchResult{
		{DocumentID: "d1", DocumentName: "report.pdf", Content: "the answer", Score: 0.9},
	}

	result, err := svc.SendMessage(ctx, "u1", &SendMessageRequest{Content: "What is the answer?"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.SessionID)
	assert.Equal(t, model.RoleAssistant, result.Message.Role)
	require.Len(t, result.Message.Sources, 1)
	assert.Equal(t, "d1", result.Message.Sources[0].DocumentID)
	assert.Contains(t, result.Message.Content, "report.pdf")

	// The new session carries the first message as its title.
	session, err := svc.GetSession(ctx, "u1", result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "What is the answer?", session.Title)
	assert.Len(t, session.Messages, 2)
}

func TestChatService_SendMessageInvalidatesAfterResolve(t *testing.T) {
	svc, c, _, _ := newChatFixture(t)
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, "u1", "chat")
	require.NoError(t, err)
	_, err = svc.ListSessions(ctx, "u1")
	require.NoError(t, err)

	itemKey := cache.Key("chat", "u1", "sessions", created.ID)
	listKey := cache.Key("chat", "u1", "sessions")
	_, ok := c.Get(itemKey)
	require.True(t, ok)

	_, err = svc.SendMessage(ctx, "u1", &SendMessageRequest{SessionID: created.ID, Content: "hi"})
	require.NoError(t, err)

	_, ok = c.Get(itemKey)
	assert.False(t, ok, "session entry must be stale after a send")
	_, ok = c.Get(listKey)
	assert.False(t, ok, "session list must be stale after a send")

	// The next read refetches the authoritative state.
	session, err := svc.GetSession(ctx, "u1", created.ID)
	require.NoError(t, err)
	assert.Len(t, session.Messages, 2)
}

func TestChatService_SendMessageValidation(t *testing.T) {
	svc, _, _, _ := newChatFixture(t)

	_, err := svc.SendMessage(context.Background(), "u1", &SendMessageRequest{Content: "   "})
	assert.ErrorIs(t, err, app_errors.ErrValidation)
}

func TestChatService_SendMessageToDeletedSession(t *testing.T) {
	svc, _, _, notifier := newChatFixture(t)
	ctx := context.Background()

	_, err := svc.SendMessage(ctx, "u1", &SendMessageRequest{SessionID: "gone", Content: "hi"})
	assert.ErrorIs(t, err, app_errors.ErrNotFound)
	assert.Len(t, notifier.failures, 1)
}

func TestChatService_SendMessageFiltersSearchByDocuments(t *testing.T) {
	svc, _, searcher, _ := newChatFixture(t)
	ctx := context.Background()

	_, err := svc.SendMessage(ctx, "u1", &SendMessageRequest{
		Content:     "scoped question",
		DocumentIDs: []string{"d1", "d2"},
	})
	require.NoError(t, err)

	require.NotNil(t, searcher.lastReq)
	assert.Equal(t, "scoped question", searcher.lastReq.Query)
	assert.Equal(t, map[string]any{"document_ids": []string{"d1", "d2"}}, searcher.lastReq.Filters)
}

func TestChatService_SendMessageDegradesWithoutSearch(t *testing.T) {
	svc, _, searcher, notifier := newChatFixture(t)
	searcher.err = errors.New("backend down")

	result, err := svc.SendMessage(context.Background(), "u1", &SendMessageRequest{Content: "hi"})
	require.NoError(t, err, "an unreachable search index must not fail the send")
	assert.Empty(t, result.Message.Sources)
	assert.Len(t, notifier.successes, 1)
}

func TestChatService_DeleteSession(t *testing.T) {
	svc, c, _, notifier := newChatFixture(t)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "u1", "doomed")
	require.NoError(t, err)
	_, err = svc.ListSessions(ctx, "u1")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSession(ctx, "u1", session.ID))

	_, ok := c.Get(cache.Key("chat", "u1", "sessions", session.ID))
	assert.False(t, ok)

	cached, ok := c.Get(cache.Key("chat", "u1", "sessions"))
	require.True(t, ok, "the list stays cached with the session removed")
	assert.Empty(t, cached.([]*model.ChatSession))

	assert.Contains(t, notifier.successes[len(notifier.successes)-1], "Chat deleted.")
}

func TestChatService_DeleteMissingSessionIsBenign(t *testing.T) {
	svc, _, _, notifier := newChatFixture(t)

	err := svc.DeleteSession(context.Background(), "u1", "already-gone")
	assert.NoError(t, err, "deleting an absent session reaches the desired end state")
	require.Len(t, notifier.successes, 1)
	assert.Contains(t, notifier.successes[0], "already deleted")
	assert.Empty(t, notifier.failures)
}

func TestChatService_GetSessionRequiresID(t *testing.T) {
	svc, _, _, _ := newChatFixture(t)

	_, err := svc.GetSession(context.Background(), "u1", "")
	assert.ErrorIs(t, err, app_errors.ErrValidation)
}

func TestChatService_GetSessionNotFound(t *testing.T) {
	svc, _, _, _ := newChatFixture(t)

	_, err := svc.GetSession(context.Background(), "u1", "missing")
	assert.ErrorIs(t, err, app_errors.ErrNotFound)
}
