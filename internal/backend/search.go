package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"omnisearch/gateway/internal/model"
)

// SemanticSearchRequest is the wire shape of the AI-powered search call.
type SemanticSearchRequest struct {
	Query   string         `json:"query"`
	Limit   int            `json:"limit,omitempty"`
	Offset  int            `json:"offset,omitempty"`
	Filters map[string]any `json:"filters,omitempty"`
}

// SearchSemantic runs the backend's AI-powered document search.
func (c *Client) SearchSemantic(ctx context.Context, req *SemanticSearchRequest) ([]model.SearchResult, error) {
	body, err := jsonBody(req)
	if err != nil {
		return nil, err
	}
	var results []model.SearchResult
	err = c.request(ctx, "/api/v1/search/documents", requestOptions{method: http.MethodPost, body: body}, &results)
	return results, err
}

// SearchKeyword runs the plain database text search.
func (c *Client) SearchKeyword(ctx context.Context, q string, limit, offset int) ([]model.SearchResult, error) {
	query := url.Values{}
	query.Set("q", q)
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}

	var results []model.SearchResult
	err := c.request(ctx, "/api/v1/search/documents/simple", requestOptions{query: query}, &results)
	return results, err
}
