package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"omnisearch/gateway/internal/backend"
	app_errors "omnisearch/gateway/internal/errors"
	"omnisearch/gateway/internal/interfaces"
)

// SearchHandler handles HTTP requests for document search.
type SearchHandler struct {
	service interfaces.SearchService
}

func NewSearchHandler(svc interfaces.SearchService) *SearchHandler {
	return &SearchHandler{service: svc}
}

// HandleSemanticSearch godoc
// @Summary      AI-powered document search
// @Tags         Search
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        search  body      backend.SemanticSearchRequest  true  "Search request"
// @Success      200     {array}   model.SearchResult
// @Failure      400     {object}  ErrorResponse
// @Failure      401     {object}  ErrorResponse
// @Router       /v1/search/documents [post]
func (h *SearchHandler) HandleSemanticSearch(w http.ResponseWriter, r *http.Request) {
	var req backend.SemanticSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request payload", app_errors.ErrValidation))
		return
	}

	results, err := h.service.Semantic(r.Context(), &req)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, results)
}

// HandleKeywordSearch godoc
// @Summary      Plain keyword document search
// @Tags         Search
// @Produce      json
// @Security     BearerAuth
// @Param        q       query     string  true   "Search query"
// @Param        limit   query     int     false  "Max results (1-100)"
// @Param        offset  query     int     false  "Results to skip"
// @Success      200     {array}   model.SearchResult
// @Failure      400     {object}  ErrorResponse
// @Router       /v1/search/documents/simple [get]
func (h *SearchHandler) HandleKeywordSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit := queryInt(r, "limit", 10)
	offset := queryInt(r, "offset", 0)

	results, err := h.service.Keyword(r.Context(), q, limit, offset)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, results)
}
