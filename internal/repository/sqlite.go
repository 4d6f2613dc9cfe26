package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"omnisearch/gateway/internal/model"
)

// sqliteRepository is the durable SessionRepository. Schema is managed by
// the embedded migrations in internal/database.
type sqliteRepository struct {
	db          *sql.DB
	titleMaxLen int
}

func NewSQLiteRepository(db *sql.DB, titleMaxLen int) SessionRepository {
	if titleMaxLen <= 0 {
		titleMaxLen = DefaultTitleMaxLen
	}
	return &sqliteRepository{db: db, titleMaxLen: titleMaxLen}
}

func (r *sqliteRepository) CreateSession(ctx context.Context, userID, title string) (*model.ChatSession, error) {
	if title == "" {
		title = "New Chat"
	}
	now := time.Now().UTC()
	session := &model.ChatSession{
		ID:        uuid.NewString(),
		Title:     title,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := "INSERT INTO chat_sessions (id, user_id, title, created_at, updated_at) VALUES (?, ?, ?, ?, ?)"
	if _, err := r.db.ExecContext(ctx, query, session.ID, session.UserID, session.Title, session.CreatedAt, session.UpdatedAt); err != nil {
		return nil, fmt.Errorf("could not insert session: %w", err)
	}
	return session, nil
}

func (r *sqliteRepository) GetSession(ctx context.Context, userID, sessionID string) (*model.SessionWithMessages, error) {
	query := "SELECT id, user_id, title, created_at, updated_at FROM chat_sessions WHERE id = ? AND user_id = ?"
	row := r.db.QueryRowContext(ctx, query, sessionID, userID)

	var session model.ChatSession
	err := row.Scan(&session.ID, &session.UserID, &session.Title, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	messages, err := r.getMessages(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &model.SessionWithMessages{ChatSession: session, Messages: messages}, nil
}

func (r *sqliteRepository) getMessages(ctx context.Context, sessionID string) ([]model.ChatMessage, error) {
	query := "SELECT id, session_id, role, content, sources, created_at FROM chat_messages WHERE session_id = ? ORDER BY created_at, rowid"
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []model.ChatMessage{}
	for rows.Next() {
		var msg model.ChatMessage
		var sources sql.NullString
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content, &sources, &msg.CreatedAt); err != nil {
			return nil, err
		}
		if sources.Valid && sources.String != "" {
			if err := json.Unmarshal([]byte(sources.String), &msg.Sources); err != nil {
				return nil, fmt.Errorf("could not decode message sources: %w", err)
			}
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// AppendMessage inserts the message and touches the session timestamp in a
// single transaction. When it is the very first message and user-authored,
// the session title is derived from the content.
func (r *sqliteRepository) AppendMessage(ctx context.Context, userID, sessionID string, msg *model.ChatMessage) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	existsQuery := "SELECT COUNT(*) FROM chat_sessions WHERE id = ? AND user_id = ?"
	if err := tx.QueryRowContext(ctx, existsQuery, sessionID, userID).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return ErrNotFound
	}

	var count int
	countQuery := "SELECT COUNT(*) FROM chat_messages WHERE session_id = ?"
	if err := tx.QueryRowContext(ctx, countQuery, sessionID).Scan(&count); err != nil {
		return err
	}

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	msg.SessionID = sessionID
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	var sources sql.NullString
	if len(msg.Sources) > 0 {
		encoded, err := json.Marshal(msg.Sources)
		if err != nil {
			return fmt.Errorf("could not encode message sources: %w", err)
		}
		sources = sql.NullString{String: string(encoded), Valid: true}
	}

	insertQuery := "INSERT INTO chat_messages (id, session_id, role, content, sources, created_at) VALUES (?, ?, ?, ?, ?, ?)"
	if _, err := tx.ExecContext(ctx, insertQuery, msg.ID, msg.SessionID, msg.Role, msg.Content, sources, msg.CreatedAt); err != nil {
		return fmt.Errorf("could not insert message: %w", err)
	}

	now := time.Now().UTC()
	if count == 0 && msg.Role == model.RoleUser {
		titleQuery := "UPDATE chat_sessions SET title = ?, updated_at = ? WHERE id = ?"
		if _, err := tx.ExecContext(ctx, titleQuery, DeriveTitle(msg.Content, r.titleMaxLen), now, sessionID); err != nil {
			return fmt.Errorf("could not update session title: %w", err)
		}
	} else {
		touchQuery := "UPDATE chat_sessions SET updated_at = ? WHERE id = ?"
		if _, err := tx.ExecContext(ctx, touchQuery, now, sessionID); err != nil {
			return fmt.Errorf("could not update session timestamp: %w", err)
		}
	}

	return tx.Commit()
}

func (r *sqliteRepository) DeleteSession(ctx context.Context, userID, sessionID string) error {
	query := "DELETE FROM chat_sessions WHERE id = ? AND user_id = ?"
	res, err := r.db.ExecContext(ctx, query, sessionID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqliteRepository) ListSessions(ctx context.Context, userID string) ([]*model.ChatSession, error) {
	query := "SELECT id, user_id, title, created_at, updated_at FROM chat_sessions WHERE user_id = ? ORDER BY updated_at DESC"
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*model.ChatSession
	for rows.Next() {
		var session model.ChatSession
		if err := rows.Scan(&session.ID, &session.UserID, &session.Title, &session.CreatedAt, &session.UpdatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, &session)
	}
	return sessions, rows.Err()
}
