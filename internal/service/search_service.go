package service

import (
	"context"
	"fmt"
	"strings"

	"omnisearch/gateway/internal/backend"
	app_errors "omnisearch/gateway/internal/errors"
	"omnisearch/gateway/internal/model"
)

// SearchBackend is the slice of the backend client the search routes
// proxy to.
type SearchBackend interface {
	SearchSemantic(ctx context.Context, req *backend.SemanticSearchRequest) ([]model.SearchResult, error)
	SearchKeyword(ctx context.Context, q string, limit, offset int) ([]model.SearchResult, error)
}

// SearchService validates queries locally and forwards them upstream.
type SearchService struct {
	backend SearchBackend
}

func NewSearchService(b SearchBackend) *SearchService {
	return &SearchService{backend: b}
}

func (s *SearchService) Semantic(ctx context.Context, req *backend.SemanticSearchRequest) ([]model.SearchResult, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, fmt.Errorf("%w: search query is required", app_errors.ErrValidation)
	}
	if req.Limit <= 0 {
		req.Limit = 10
	}
	if req.Limit > 100 {
		return nil, fmt.Errorf("%w: limit must be at most 100", app_errors.ErrValidation)
	}
	return s.backend.SearchSemantic(ctx, req)
}

func (s *SearchService) Keyword(ctx context.Context, q string, limit, offset int) ([]model.SearchResult, error) {
	if strings.TrimSpace(q) == "" {
		return nil, fmt.Errorf("%w: search query is required", app_errors.ErrValidation)
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		return nil, fmt.Errorf("%w: limit must be at most 100", app_errors.ErrValidation)
	}
	if offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", app_errors.ErrValidation)
	}
	return s.backend.SearchKeyword(ctx, q, limit, offset)
}
