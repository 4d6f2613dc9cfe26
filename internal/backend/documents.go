package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"omnisearch/gateway/internal/model"
)

// UploadResult is the backend's acknowledgement of a document upload.
type UploadResult struct {
	Message    string `json:"message"`
	DocumentID string `json:"documentId"`
	Status     string `json:"status"`
}

// DocumentContent is the extracted text of a processed document.
type DocumentContent struct {
	DocumentID string `json:"documentId"`
	Content    string `json:"content"`
	Status     string `json:"status"`
}

// DocumentUpdate carries the mutable document fields. Nil fields are left
// untouched by the backend.
type DocumentUpdate struct {
	Name     *string        `json:"name,omitempty"`
	Status   *string        `json:"status,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// DocumentStats summarizes a user's library.
type DocumentStats struct {
	TotalDocuments int            `json:"totalDocuments"`
	TotalSize      int64          `json:"totalSize"`
	ByStatus       map[string]int `json:"byStatus,omitempty"`
}

// ListDocuments fetches the user's documents, newest first. statusFilter is
// optional.
func (c *Client) ListDocuments(ctx context.Context, limit, offset int, statusFilter string) ([]model.Document, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}
	if statusFilter != "" {
		query.Set("status_filter", statusFilter)
	}

	var docs []model.Document
	err := c.request(ctx, "/api/v1/documents/", requestOptions{query: query}, &docs)
	return docs, err
}

func (c *Client) GetDocument(ctx context.Context, documentID string) (*model.Document, error) {
	var doc model.Document
	err := c.request(ctx, "/api/v1/documents/"+documentID, requestOptions{}, &doc)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) UpdateDocument(ctx context.Context, documentID string, update *DocumentUpdate) (*model.Document, error) {
	body, err := jsonBody(update)
	if err != nil {
		return nil, err
	}
	var doc model.Document
	err = c.request(ctx, "/api/v1/documents/"+documentID, requestOptions{method: http.MethodPut, body: body}, &doc)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) DeleteDocument(ctx context.Context, documentID string) error {
	return c.request(ctx, "/api/v1/documents/"+documentID, requestOptions{method: http.MethodDelete}, nil)
}

func (c *Client) GetDocumentContent(ctx context.Context, documentID string) (*DocumentContent, error) {
	var content DocumentContent
	err := c.request(ctx, "/api/v1/documents/"+documentID+"/content", requestOptions{}, &content)
	if err != nil {
		return nil, err
	}
	return &content, nil
}

func (c *Client) GetDocumentStats(ctx context.Context) (*DocumentStats, error) {
	var stats DocumentStats
	err := c.request(ctx, "/api/v1/documents/stats/summary", requestOptions{}, &stats)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// UploadDocument streams file through a multipart form to the backend. The
// content is buffered once so the 401 retry can replay it.
func (c *Client) UploadDocument(ctx context.Context, name, filename, contentType string, file io.Reader) (*UploadResult, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("could not create multipart part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("could not buffer upload: %w", err)
	}
	if name != "" {
		if err := writer.WriteField("name", name); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	headers := http.Header{}
	headers.Set("Content-Type", writer.FormDataContentType())

	var result UploadResult
	err = c.request(ctx, "/api/v1/documents/upload", requestOptions{
		method:  http.MethodPost,
		body:    bytes.NewReader(buf.Bytes()),
		headers: headers,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// DownloadDocument returns the raw file stream and its content type. The
// caller must close the reader.
func (c *Client) DownloadDocument(ctx context.Context, documentID string) (io.ReadCloser, string, error) {
	resp, err := c.do(ctx, "/api/v1/documents/"+documentID+"/download", requestOptions{})
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, "", upstreamError(resp)
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}
