// Package tests exercises the assembled gateway end to end: a real router,
// real services, the in-memory session store, and an httptest stand-in for
// the Omnisearch backend.
package tests

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"omnisearch/gateway/internal/app"
	"omnisearch/gateway/internal/config"
)

const authSecret = "integration-secret"

// fakeBackend mimics the slice of the Omnisearch backend API the gateway
// proxies to, speaking snake_case on the wire like the real one.
func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds.Password != "secret123" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail": "Incorrect email or password"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token": "backend-token", "token_type": "bearer", "expires_in": 3600}`))
	})

	mux.HandleFunc("POST /api/v1/search/documents", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`[{"id": "r1", "title": "Q3 Budget", "content": "spend less", "document_id": "d1", "document_name": "budget.pdf", "score": 0.93}]`))
	})

	mux.HandleFunc("GET /api/v1/documents", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id": "d1", "name": "budget.pdf", "status": "completed", "created_at": "2026-01-01T00:00:00Z"}]`))
	})

	return httptest.NewServer(mux)
}

func newGateway(t *testing.T) http.Handler {
	t.Helper()
	backendServer := fakeBackend(t)
	t.Cleanup(backendServer.Close)

	cfg := &config.Config{
		BackendURL:       backendServer.URL,
		AuthSecret:       authSecret,
		SessionStore:     "memory",
		MaxUploadSize:    50 * 1024 * 1024,
		SessionListTTL:   30 * time.Second,
		SessionItemTTL:   5 * time.Minute,
		RequestTimeout:   10 * time.Second,
		AllowedFileTypes: []string{"application/pdf", "text/plain"},
	}

	gw, err := app.NewApp(cfg)
	require.NoError(t, err)
	return gw.Server.Handler
}

func sessionToken(t *testing.T, userID string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": userID + "@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(authSecret))
	require.NoError(t, err)
	return token
}

func doJSON(t *testing.T, handler http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestChatFlow(t *testing.T) {
	handler := newGateway(t)
	token := sessionToken(t, "u1")

	// Sending without a session id starts a new session.
	rr := doJSON(t, handler, http.MethodPost, "/api/v1/chat", token,
		`{"content": "How is the Q3 budget looking?"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var sendResult struct {
		SessionID string `json:"sessionId"`
		Message   struct {
			Role    string `json:"role"`
			Content string `json:"content"`
			Sources []struct {
				DocumentID   string `json:"documentId"`
				DocumentName string `json:"documentName"`
			} `json:"sources"`
		} `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sendResult))
	require.NotEmpty(t, sendResult.SessionID)
	assert.Equal(t, "assistant", sendResult.Message.Role)
	require.Len(t, sendResult.Message.Sources, 1)
	assert.Equal(t, "budget.pdf", sendResult.Message.Sources[0].DocumentName)

	// The session list shows the new chat, titled by the first message.
	rr = doJSON(t, handler, http.MethodGet, "/api/v1/chat/sessions", token, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var sessions []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sessions))
	require.Len(t, sessions, 1)
	assert.Equal(t, sendResult.SessionID, sessions[0].ID)
	assert.Equal(t, "How is the Q3 budget looking?", sessions[0].Title)

	// Reading back the session shows both turns.
	rr = doJSON(t, handler, http.MethodGet, "/api/v1/chat/sessions/"+sendResult.SessionID, token, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var session struct {
		Messages []struct {
			Role string `json:"role"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &session))
	require.Len(t, session.Messages, 2)
	assert.Equal(t, "user", session.Messages[0].Role)
	assert.Equal(t, "assistant", session.Messages[1].Role)

	// Deleting twice succeeds both times; the second delete is benign.
	rr = doJSON(t, handler, http.MethodDelete, "/api/v1/chat/sessions/"+sendResult.SessionID, token, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	rr = doJSON(t, handler, http.MethodDelete, "/api/v1/chat/sessions/"+sendResult.SessionID, token, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, handler, http.MethodGet, "/api/v1/chat/sessions/"+sendResult.SessionID, token, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSessionsAreScopedPerUser(t *testing.T) {
	handler := newGateway(t)

	rr := doJSON(t, handler, http.MethodPost, "/api/v1/chat/sessions", sessionToken(t, "alice"),
		`{"title": "Alice's chat"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doJSON(t, handler, http.MethodGet, "/api/v1/chat/sessions", sessionToken(t, "bob"), "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestAuthProxy(t *testing.T) {
	handler := newGateway(t)

	rr := doJSON(t, handler, http.MethodPost, "/api/v1/auth/login", "",
		`{"email": "a@example.com", "password": "secret123"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	// The backend's snake_case token arrives camelCased.
	var token struct {
		AccessToken string `json:"accessToken"`
		TokenType   string `json:"tokenType"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &token))
	assert.Equal(t, "backend-token", token.AccessToken)
	assert.Equal(t, "bearer", token.TokenType)

	// Backend rejections pass through with status and message intact.
	rr = doJSON(t, handler, http.MethodPost, "/api/v1/auth/login", "",
		`{"email": "a@example.com", "password": "wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "Incorrect email or password")
}

func TestResourceRoutesRequireSession(t *testing.T) {
	handler := newGateway(t)

	for _, target := range []string{
		"/api/v1/chat/sessions",
		"/api/v1/documents",
		"/api/v1/documents/uploads",
	} {
		rr := doJSON(t, handler, http.MethodGet, target, "", "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code, target)
	}
}

func TestUploadLimitEnforcedBeforeProxy(t *testing.T) {
	handler := newGateway(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/upload", strings.NewReader("stub"))
	req.Header.Set("Authorization", "Bearer "+sessionToken(t, "u1"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	req.ContentLength = 60 * 1024 * 1024

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestSearchProxyTranslatesCasing(t *testing.T) {
	handler := newGateway(t)

	rr := doJSON(t, handler, http.MethodPost, "/api/v1/search/documents", sessionToken(t, "u1"),
		`{"query": "budget"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var results []struct {
		DocumentID   string  `json:"documentId"`
		DocumentName string  `json:"documentName"`
		Score        float64 `json:"score"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "d1", results[0].DocumentID)
	assert.InDelta(t, 0.93, results[0].Score, 0.0001)
	assert.NotContains(t, rr.Body.String(), "document_id", "snake_case must not leak through the proxy")
}

func TestHealthz(t *testing.T) {
	handler := newGateway(t)

	rr := doJSON(t, handler, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}
