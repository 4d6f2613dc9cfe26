package model

import "time"

// ChatSession stores metadata about a conversation thread owned by one user.
type ChatSession struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ChatMessage is a single turn in a session. Messages are immutable once
// appended and keep insertion order.
type ChatMessage struct {
	ID        string           `json:"id"`
	SessionID string           `json:"sessionId"`
	Role      string           `json:"role"`
	Content   string           `json:"content"`
	Sources   []DocumentSource `json:"sources,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

// Message roles. The backend never produces anything else.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// SessionWithMessages includes the session metadata and all its messages.
type SessionWithMessages struct {
	ChatSession
	Messages []ChatMessage `json:"messages"`
}

// DocumentSource is a backend-provided citation linking an assistant reply
// to a document, page and snippet. Read-only on this side of the wire.
type DocumentSource struct {
	DocumentID     string  `json:"documentId"`
	DocumentName   string  `json:"documentName"`
	PageNumber     *int    `json:"pageNumber,omitempty"`
	RelevanceScore float64 `json:"relevanceScore"`
	Snippet        string  `json:"snippet"`
}

// Document mirrors the backend's document resource. Status transitions are
// driven entirely by the backend; the gateway only reflects reported status.
type Document struct {
	ID           string         `json:"id"`
	UserID       string         `json:"userId"`
	Name         string         `json:"name"`
	OriginalName string         `json:"originalName"`
	FileType     string         `json:"fileType"`
	FileSize     int64          `json:"fileSize"`
	Status       string         `json:"status"`
	Content      string         `json:"content,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// Document statuses as reported by the backend.
const (
	DocStatusUploading  = "uploading"
	DocStatusProcessing = "processing"
	DocStatusReady      = "ready"
	DocStatusError      = "error"
)

// SearchResult is one hit from the semantic or keyword search endpoints.
type SearchResult struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Content      string         `json:"content"`
	DocumentID   string         `json:"documentId"`
	DocumentName string         `json:"documentName"`
	Score        float64        `json:"score"`
	Highlights   []string       `json:"highlights,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// User is the backend's view of an account, as returned by /auth/me.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	EmailVerified bool      `json:"emailVerified"`
	Image         string    `json:"image,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Token is a backend-issued bearer credential.
type Token struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int    `json:"expiresIn"`
}
