package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"omnisearch/gateway/internal/backend"
	app_errors "omnisearch/gateway/internal/errors"
	"omnisearch/gateway/internal/interfaces"
)

// AuthHandler proxies sign-in and account calls to the backend. Local
// validation runs first so obviously bad requests never leave the gateway.
type AuthHandler struct {
	service interfaces.AuthService
}

func NewAuthHandler(svc interfaces.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// HandleLogin godoc
// @Summary      Sign in
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        credentials  body      backend.Credentials  true  "Email and password"
// @Success      200          {object}  model.Token
// @Failure      400          {object}  ErrorResponse
// @Failure      401          {object}  ErrorResponse
// @Router       /v1/auth/login [post]
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var creds backend.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request payload", app_errors.ErrValidation))
		return
	}

	token, err := h.service.Login(r.Context(), &creds)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, token)
}

// HandleRegister godoc
// @Summary      Create an account
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        registration  body      backend.Registration  true  "New account"
// @Success      201           {object}  model.User
// @Failure      400           {object}  ErrorResponse
// @Failure      409           {object}  ErrorResponse
// @Router       /v1/auth/register [post]
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var reg backend.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request payload", app_errors.ErrValidation))
		return
	}

	user, err := h.service.Register(r.Context(), &reg)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, user)
}

// HandleMe godoc
// @Summary      The signed-in account
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  model.User
// @Failure      401  {object}  ErrorResponse
// @Router       /v1/auth/me [get]
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Me(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}

// HandleRefresh godoc
// @Summary      Refresh the session token
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  model.Token
// @Failure      401  {object}  ErrorResponse
// @Router       /v1/auth/refresh [post]
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	token, err := h.service.Refresh(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, token)
}
