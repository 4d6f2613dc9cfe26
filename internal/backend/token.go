package backend

import "context"

// Identity names the signed-in user a token belongs to. The client tracks
// it so a user switch between calls can never reuse the previous user's
// cached token.
type Identity struct {
	ID    string
	Email string
}

func (i Identity) IsZero() bool { return i.ID == "" && i.Email == "" }

// TokenSource is the explicit session context the client is constructed
// with. Token must return a credential that is valid for the identity
// reported by Identity at the same moment; fetching a token is idempotent,
// so redundant fetches are wasteful but never unsafe.
type TokenSource interface {
	Identity(ctx context.Context) (Identity, error)
	Token(ctx context.Context) (string, error)
}

type staticTokenSource struct {
	identity Identity
	token    string
}

// StaticTokenSource returns a TokenSource that always reports the same
// identity and token. Useful for tests and one-shot programmatic calls.
func StaticTokenSource(identity Identity, token string) TokenSource {
	return &staticTokenSource{identity: identity, token: token}
}

func (s *staticTokenSource) Identity(context.Context) (Identity, error) { return s.identity, nil }
func (s *staticTokenSource) Token(context.Context) (string, error)      { return s.token, nil }

type contextKey struct{ name string }

var sessionKey = &contextKey{"gateway-session"}

// Session is the per-request sign-in state the auth middleware deposits in
// the request context.
type Session struct {
	Identity Identity
	Token    string
}

// WithSession returns a child context carrying the signed-in session.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFromContext extracts the session placed by the auth middleware.
func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey).(Session)
	return s, ok
}

type contextTokenSource struct{}

// ContextTokenSource reads the session from the call's context. It lets a
// single shared client serve many users: the client's identity tracking
// clears its token cache whenever consecutive calls belong to different
// users.
func ContextTokenSource() TokenSource { return contextTokenSource{} }

func (contextTokenSource) Identity(ctx context.Context) (Identity, error) {
	s, ok := SessionFromContext(ctx)
	if !ok {
		return Identity{}, ErrNoSession
	}
	return s.Identity, nil
}

func (contextTokenSource) Token(ctx context.Context) (string, error) {
	s, ok := SessionFromContext(ctx)
	if !ok {
		return "", ErrNoSession
	}
	return s.Token, nil
}
