package service

import (
	"context"
	"fmt"
	"io"
	"slices"

	"omnisearch/gateway/internal/backend"
	app_errors "omnisearch/gateway/internal/errors"
	"omnisearch/gateway/internal/model"
	"omnisearch/gateway/internal/upload"
)

// DocumentBackend is the slice of the backend client the document flow
// proxies to.
type DocumentBackend interface {
	ListDocuments(ctx context.Context, limit, offset int, statusFilter string) ([]model.Document, error)
	GetDocument(ctx context.Context, documentID string) (*model.Document, error)
	UpdateDocument(ctx context.Context, documentID string, update *backend.DocumentUpdate) (*model.Document, error)
	DeleteDocument(ctx context.Context, documentID string) error
	GetDocumentContent(ctx context.Context, documentID string) (*backend.DocumentContent, error)
	GetDocumentStats(ctx context.Context) (*backend.DocumentStats, error)
	UploadDocument(ctx context.Context, name, filename, contentType string, file io.Reader) (*backend.UploadResult, error)
	DownloadDocument(ctx context.Context, documentID string) (io.ReadCloser, string, error)
}

// UploadRequest describes one file entering the upload flow.
type UploadRequest struct {
	Name        string
	Filename    string
	ContentType string
	Size        int64
	File        io.Reader
}

// DocumentService forwards document operations to the backend. The only
// local logic is the pre-flight upload validation: size and content-type
// are rejected here, before a single byte is sent upstream.
type DocumentService struct {
	backend      DocumentBackend
	tracker      *upload.Tracker
	notifier     Notifier
	maxSize      int64
	allowedTypes []string
}

func NewDocumentService(b DocumentBackend, tracker *upload.Tracker, notifier Notifier, maxSize int64, allowedTypes []string) *DocumentService {
	return &DocumentService{
		backend:      b,
		tracker:      tracker,
		notifier:     notifier,
		maxSize:      maxSize,
		allowedTypes: allowedTypes,
	}
}

func (s *DocumentService) List(ctx context.Context, limit, offset int, statusFilter string) ([]model.Document, error) {
	return s.backend.ListDocuments(ctx, limit, offset, statusFilter)
}

func (s *DocumentService) Get(ctx context.Context, documentID string) (*model.Document, error) {
	return s.backend.GetDocument(ctx, documentID)
}

func (s *DocumentService) Update(ctx context.Context, documentID string, update *backend.DocumentUpdate) (*model.Document, error) {
	return s.backend.UpdateDocument(ctx, documentID, update)
}

func (s *DocumentService) Delete(ctx context.Context, documentID string) error {
	return s.backend.DeleteDocument(ctx, documentID)
}

func (s *DocumentService) Content(ctx context.Context, documentID string) (*backend.DocumentContent, error) {
	return s.backend.GetDocumentContent(ctx, documentID)
}

func (s *DocumentService) Stats(ctx context.Context) (*backend.DocumentStats, error) {
	return s.backend.GetDocumentStats(ctx)
}

func (s *DocumentService) Download(ctx context.Context, documentID string) (io.ReadCloser, string, error) {
	return s.backend.DownloadDocument(ctx, documentID)
}

// Uploads lists the user's in-flight upload progress records.
func (s *DocumentService) Uploads(userID string) []upload.Progress {
	return s.tracker.List(userID)
}

// DismissUpload removes a progress record before its display delay ends.
func (s *DocumentService) DismissUpload(userID, fileID string) {
	s.tracker.Remove(userID, fileID)
}

// Upload validates the file locally, tracks its progress, and forwards it
// to the backend. Validation failures never reach the network.
func (s *DocumentService) Upload(ctx context.Context, userID string, req *UploadRequest) (*backend.UploadResult, error) {
	if req.Size > s.maxSize {
		s.notifier.Failure(ctx, "upload_document", fmt.Sprintf("%s is larger than the %dMB limit.", req.Filename, s.maxSize/(1024*1024)))
		return nil, fmt.Errorf("%w: file size %d exceeds the %d byte limit", app_errors.ErrPayloadTooLarge, req.Size, s.maxSize)
	}
	if !slices.Contains(s.allowedTypes, req.ContentType) {
		s.notifier.Failure(ctx, "upload_document", fmt.Sprintf("File type %s is not supported.", req.ContentType))
		return nil, fmt.Errorf("%w: file type %s not allowed", app_errors.ErrValidation, req.ContentType)
	}

	progress := s.tracker.Start(userID, req.Filename)
	reader := s.tracker.CountingReader(userID, progress.FileID, req.File, req.Size)

	s.tracker.SetStatus(userID, progress.FileID, upload.StatusUploading, "")
	result, err := s.backend.UploadDocument(ctx, req.Name, req.Filename, req.ContentType, reader)
	if err != nil {
		s.tracker.SetStatus(userID, progress.FileID, upload.StatusError, err.Error())
		s.notifier.Failure(ctx, "upload_document", fmt.Sprintf("Could not upload %s.", req.Filename))
		return nil, err
	}

	// The backend reports "processing" until extraction and indexing
	// finish; the tracker mirrors that, then completes.
	if result.Status == model.DocStatusProcessing {
		s.tracker.SetStatus(userID, progress.FileID, upload.StatusProcessing, "")
	}
	s.tracker.Complete(userID, progress.FileID)

	s.notifier.Success(ctx, "upload_document", fmt.Sprintf("%s uploaded.", req.Filename))
	return result, nil
}
