package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"omnisearch/gateway/internal/backend"
	app_errors "omnisearch/gateway/internal/errors"
	"omnisearch/gateway/internal/interfaces"
	"omnisearch/gateway/internal/service"
)

// DocumentHandler handles HTTP requests for the document library.
type DocumentHandler struct {
	service       interfaces.DocumentService
	maxUploadSize int64
}

func NewDocumentHandler(svc interfaces.DocumentService, maxUploadSize int64) *DocumentHandler {
	return &DocumentHandler{service: svc, maxUploadSize: maxUploadSize}
}

// HandleListDocuments godoc
// @Summary      List documents
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Param        limit          query     int     false  "Page size"
// @Param        offset         query     int     false  "Page offset"
// @Param        status_filter  query     string  false  "Filter by status"
// @Success      200  {array}   model.Document
// @Failure      401  {object}  ErrorResponse
// @Router       /v1/documents [get]
func (h *DocumentHandler) HandleListDocuments(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	docs, err := h.service.List(r.Context(), limit, offset, r.URL.Query().Get("status_filter"))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, docs)
}

// HandleGetDocument godoc
// @Summary      Get one document
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Param        documentID  path      string  true  "Document ID"
// @Success      200         {object}  model.Document
// @Failure      404         {object}  ErrorResponse
// @Router       /v1/documents/{documentID} [get]
func (h *DocumentHandler) HandleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.Get(r.Context(), chi.URLParam(r, "documentID"))
	if err != nil {
		// A backend 404 passes through verbatim.
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, doc)
}

// HandleUpdateDocument godoc
// @Summary      Update a document
// @Tags         Documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        documentID  path      string                  true  "Document ID"
// @Param        update      body      backend.DocumentUpdate  true  "Fields to update"
// @Success      200         {object}  model.Document
// @Failure      400         {object}  ErrorResponse
// @Failure      404         {object}  ErrorResponse
// @Router       /v1/documents/{documentID} [put]
func (h *DocumentHandler) HandleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	var update backend.DocumentUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request payload", app_errors.ErrValidation))
		return
	}

	doc, err := h.service.Update(r.Context(), chi.URLParam(r, "documentID"), &update)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, doc)
}

// HandleDeleteDocument godoc
// @Summary      Delete a document
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Param        documentID  path      string  true  "Document ID"
// @Success      200         {object}  StatusResponse
// @Failure      404         {object}  ErrorResponse
// @Router       /v1/documents/{documentID} [delete]
func (h *DocumentHandler) HandleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "documentID")); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "deleted"})
}

// HandleDocumentContent godoc
// @Summary      Get a document's extracted text
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Param        documentID  path      string  true  "Document ID"
// @Success      200         {object}  backend.DocumentContent
// @Failure      404         {object}  ErrorResponse
// @Router       /v1/documents/{documentID}/content [get]
func (h *DocumentHandler) HandleDocumentContent(w http.ResponseWriter, r *http.Request) {
	content, err := h.service.Content(r.Context(), chi.URLParam(r, "documentID"))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, content)
}

// HandleDownloadDocument godoc
// @Summary      Download the original file
// @Tags         Documents
// @Produce      octet-stream
// @Security     BearerAuth
// @Param        documentID  path  string  true  "Document ID"
// @Success      200
// @Failure      404  {object}  ErrorResponse
// @Router       /v1/documents/{documentID}/download [get]
func (h *DocumentHandler) HandleDownloadDocument(w http.ResponseWriter, r *http.Request) {
	stream, contentType, err := h.service.Download(r.Context(), chi.URLParam(r, "documentID"))
	if err != nil {
		respondWithError(w, err)
		return
	}
	defer stream.Close()

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, stream); err != nil {
		slog.Warn("Download stream interrupted", "error", err)
	}
}

// HandleDocumentStats godoc
// @Summary      Document library statistics
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  backend.DocumentStats
// @Router       /v1/documents/stats/summary [get]
func (h *DocumentHandler) HandleDocumentStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}

// HandleUploadDocument godoc
// @Summary      Upload a document
// @Description  Multipart upload. Size and content-type are validated before anything is sent to the backend.
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file  formData  file    true   "The document"
// @Param        name  formData  string  false  "Display name"
// @Success      201   {object}  backend.UploadResult
// @Failure      400   {object}  ErrorResponse
// @Failure      413   {object}  ErrorResponse
// @Router       /v1/documents/upload [post]
func (h *DocumentHandler) HandleUploadDocument(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		respondWithError(w, err)
		return
	}

	// Reject oversized requests on the declared length before reading the
	// body at all.
	if r.ContentLength > 0 && r.ContentLength > h.maxUploadSize+1024*1024 {
		respondWithError(w, fmt.Errorf("%w: request body exceeds the upload limit", app_errors.ErrPayloadTooLarge))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondWithError(w, fmt.Errorf("%w: could not parse multipart form", app_errors.ErrValidation))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, fmt.Errorf("%w: a file field is required", app_errors.ErrValidation))
		return
	}
	defer file.Close()

	result, err := h.service.Upload(r.Context(), userID, &service.UploadRequest{
		Name:        r.FormValue("name"),
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		File:        file,
	})
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, result)
}

// HandleListUploads godoc
// @Summary      In-flight upload progress
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  upload.Progress
// @Router       /v1/documents/uploads [get]
func (h *DocumentHandler) HandleListUploads(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, h.service.Uploads(userID))
}

// HandleDismissUpload godoc
// @Summary      Dismiss an upload progress record
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Param        fileID  path  string  true  "Upload file ID"
// @Success      200  {object}  StatusResponse
// @Router       /v1/documents/uploads/{fileID} [delete]
func (h *DocumentHandler) HandleDismissUpload(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		respondWithError(w, err)
		return
	}
	h.service.DismissUpload(userID, chi.URLParam(r, "fileID"))
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "dismissed"})
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
