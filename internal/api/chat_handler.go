package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	app_errors "omnisearch/gateway/internal/errors"
	"omnisearch/gateway/internal/interfaces"
	"omnisearch/gateway/internal/service"
)

// ChatHandler handles HTTP requests for chat sessions and messages.
type ChatHandler struct {
	service interfaces.ChatService
}

func NewChatHandler(svc interfaces.ChatService) *ChatHandler {
	return &ChatHandler{service: svc}
}

// CreateSessionRequest is the DTO for explicit "new chat" creation.
type CreateSessionRequest struct {
	Title string `json:"title" validate:"max=255" example:"Budget Review"`
}

// HandleListSessions godoc
// @Summary      List chat sessions
// @Description  Returns the signed-in user's sessions, most recently updated first.
// @Tags         Chat
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   model.ChatSession
// @Failure      401  {object}  ErrorResponse
// @Router       /v1/chat/sessions [get]
func (h *ChatHandler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		respondWithError(w, err)
		return
	}

	sessions, err := h.service.ListSessions(r.Context(), userID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, sessions)
}

// HandleCreateSession godoc
// @Summary      Create a chat session
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        session  body      CreateSessionRequest  true  "Session title"
// @Success      201      {object}  model.ChatSession
// @Failure      400      {object}  ErrorResponse
// @Failure      401      {object}  ErrorResponse
// @Router       /v1/chat/sessions [post]
func (h *ChatHandler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		respondWithError(w, err)
		return
	}

	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request payload", app_errors.ErrValidation))
		return
	}
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}

	session, err := h.service.CreateSession(r.Context(), userID, req.Title)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, session)
}

// HandleGetSession godoc
// @Summary      Get one chat session with its messages
// @Tags         Chat
// @Produce      json
// @Security     BearerAuth
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200        {object}  model.SessionWithMessages
// @Failure      401        {object}  ErrorResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /v1/chat/sessions/{sessionID} [get]
func (h *ChatHandler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		respondWithError(w, err)
		return
	}

	session, err := h.service.GetSession(r.Context(), userID, chi.URLParam(r, "sessionID"))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, session)
}

// HandleDeleteSession godoc
// @Summary      Delete a chat session
// @Description  Deleting an already-deleted session is treated as success.
// @Tags         Chat
// @Produce      json
// @Security     BearerAuth
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200        {object}  StatusResponse
// @Failure      401        {object}  ErrorResponse
// @Router       /v1/chat/sessions/{sessionID} [delete]
func (h *ChatHandler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		respondWithError(w, err)
		return
	}

	if err := h.service.DeleteSession(r.Context(), userID, chi.URLParam(r, "sessionID")); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "deleted"})
}

// HandleSendMessage godoc
// @Summary      Send a chat message
// @Description  Appends the user turn and returns the assistant reply with its document sources. An empty sessionId starts a new session.
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        message  body      service.SendMessageRequest  true  "Message"
// @Success      200      {object}  service.SendMessageResult
// @Failure      400      {object}  ErrorResponse
// @Failure      401      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Router       /v1/chat [post]
func (h *ChatHandler) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		respondWithError(w, err)
		return
	}

	var req service.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request payload", app_errors.ErrValidation))
		return
	}
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}

	result, err := h.service.SendMessage(r.Context(), userID, &req)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}
