package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"omnisearch/gateway/internal/backend"
	app_errors "omnisearch/gateway/internal/errors"
	"omnisearch/gateway/internal/interfaces/mocks"
	"omnisearch/gateway/internal/model"
	"omnisearch/gateway/internal/service"
	"omnisearch/gateway/internal/upload"
)

const testMaxUploadSize = 50 * 1024 * 1024

func multipartBody(t *testing.T, filename, contentType, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)

	require.NoError(t, writer.WriteField("name", "display name"))
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestDocumentHandler_ListDocuments(t *testing.T) {
	mockSvc := mocks.NewMockDocumentService(t)
	handler := NewDocumentHandler(mockSvc, testMaxUploadSize)

	mockSvc.On("List", mock.Anything, 20, 40, "completed").
		Return([]model.Document{{ID: "d1"}}, nil)

	req := signedInRequest(http.MethodGet, "/api/v1/documents?limit=20&offset=40&status_filter=completed", "")
	rr := httptest.NewRecorder()
	handler.HandleListDocuments(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestDocumentHandler_ListDocumentsDefaults(t *testing.T) {
	mockSvc := mocks.NewMockDocumentService(t)
	handler := NewDocumentHandler(mockSvc, testMaxUploadSize)

	mockSvc.On("List", mock.Anything, 50, 0, "").Return([]model.Document{}, nil)

	rr := httptest.NewRecorder()
	handler.HandleListDocuments(rr, signedInRequest(http.MethodGet, "/api/v1/documents", ""))

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestDocumentHandler_GetDocumentForwardsBackendStatus(t *testing.T) {
	mockSvc := mocks.NewMockDocumentService(t)
	handler := NewDocumentHandler(mockSvc, testMaxUploadSize)

	mockSvc.On("Get", mock.Anything, "missing").
		Return(nil, &app_errors.UpstreamError{Status: http.StatusNotFound, Message: "Document not found"})

	req := withURLParam(signedInRequest(http.MethodGet, "/api/v1/documents/missing", ""), "documentID", "missing")
	rr := httptest.NewRecorder()
	handler.HandleGetDocument(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	var got ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "Document not found", got.Error)
}

func TestDocumentHandler_Upload(t *testing.T) {
	mockSvc := mocks.NewMockDocumentService(t)
	handler := NewDocumentHandler(mockSvc, testMaxUploadSize)

	mockSvc.On("Upload", mock.Anything, "u1", mock.MatchedBy(func(req *service.UploadRequest) bool {
		return req.Filename == "report.pdf" && req.ContentType == "application/pdf" && req.Name == "display name"
	})).Return(&backend.UploadResult{DocumentID: "d-new", Status: model.DocStatusProcessing}, nil)

	body, contentType := multipartBody(t, "report.pdf", "application/pdf", "%PDF-1.4 ...")
	req := signedInRequest(http.MethodPost, "/api/v1/documents/upload", body.String())
	req.Header.Set("Content-Type", contentType)

	rr := httptest.NewRecorder()
	handler.HandleUploadDocument(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	var got backend.UploadResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "d-new", got.DocumentID)
}

func TestDocumentHandler_UploadRejectsDeclaredOversize(t *testing.T) {
	mockSvc := mocks.NewMockDocumentService(t)
	handler := NewDocumentHandler(mockSvc, testMaxUploadSize)

	req := signedInRequest(http.MethodPost, "/api/v1/documents/upload", "irrelevant")
	req.ContentLength = 60 * 1024 * 1024

	rr := httptest.NewRecorder()
	handler.HandleUploadDocument(rr, req)

	// Rejected on the declared length, before the body is read and before
	// the service sees the request.
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestDocumentHandler_UploadRequiresFileField(t *testing.T) {
	mockSvc := mocks.NewMockDocumentService(t)
	handler := NewDocumentHandler(mockSvc, testMaxUploadSize)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("name", "no file here"))
	require.NoError(t, writer.Close())

	req := signedInRequest(http.MethodPost, "/api/v1/documents/upload", buf.String())
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rr := httptest.NewRecorder()
	handler.HandleUploadDocument(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDocumentHandler_UploadServiceRejection(t *testing.T) {
	mockSvc := mocks.NewMockDocumentService(t)
	handler := NewDocumentHandler(mockSvc, testMaxUploadSize)

	mockSvc.On("Upload", mock.Anything, "u1", mock.Anything).
		Return(nil, app_errors.ErrPayloadTooLarge)

	body, contentType := multipartBody(t, "big.pdf", "application/pdf", "...")
	req := signedInRequest(http.MethodPost, "/api/v1/documents/upload", body.String())
	req.Header.Set("Content-Type", contentType)

	rr := httptest.NewRecorder()
	handler.HandleUploadDocument(rr, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestDocumentHandler_Download(t *testing.T) {
	mockSvc := mocks.NewMockDocumentService(t)
	handler := NewDocumentHandler(mockSvc, testMaxUploadSize)

	stream := io.NopCloser(strings.NewReader("file bytes"))
	mockSvc.On("Download", mock.Anything, "d1").Return(stream, "application/pdf", nil)

	req := withURLParam(signedInRequest(http.MethodGet, "/api/v1/documents/d1/download", ""), "documentID", "d1")
	rr := httptest.NewRecorder()
	handler.HandleDownloadDocument(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.Equal(t, "file bytes", rr.Body.String())
}

func TestDocumentHandler_Uploads(t *testing.T) {
	mockSvc := mocks.NewMockDocumentService(t)
	handler := NewDocumentHandler(mockSvc, testMaxUploadSize)

	mockSvc.On("Uploads", "u1").Return([]upload.Progress{
		{FileID: "f1", FileName: "report.pdf", Progress: 40, Status: upload.StatusUploading},
	})

	rr := httptest.NewRecorder()
	handler.HandleListUploads(rr, signedInRequest(http.MethodGet, "/api/v1/documents/uploads", ""))

	assert.Equal(t, http.StatusOK, rr.Code)
	var got []upload.Progress
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, 40, got[0].Progress)
}

func TestDocumentHandler_DismissUpload(t *testing.T) {
	mockSvc := mocks.NewMockDocumentService(t)
	handler := NewDocumentHandler(mockSvc, testMaxUploadSize)

	mockSvc.On("DismissUpload", "u1", "f1").Return()

	req := withURLParam(signedInRequest(http.MethodDelete, "/api/v1/documents/uploads/f1", ""), "fileID", "f1")
	rr := httptest.NewRecorder()
	handler.HandleDismissUpload(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}
