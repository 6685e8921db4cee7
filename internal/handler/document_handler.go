package handler

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"

	"github.com/chernandez90/InsurancePortal/internal/service"
	"github.com/chernandez90/InsurancePortal/pkg/log"
	"github.com/chernandez90/InsurancePortal/pkg/middleware"
	"github.com/chernandez90/InsurancePortal/pkg/response"
)

const formFileField = "file"

// DocumentHandler serves claim attachments.
type DocumentHandler struct {
	documents      service.DocumentService
	authMiddleware *middleware.AuthMiddleware
	maxUploadSize  int64
}

// NewDocumentHandler creates a document handler. A maxUploadSize of zero
// disables the size check.
func NewDocumentHandler(documents service.DocumentService, authMiddleware *middleware.AuthMiddleware, maxUploadSize int64) *DocumentHandler {
	return &DocumentHandler{
		documents:      documents,
		authMiddleware: authMiddleware,
		maxUploadSize:  maxUploadSize,
	}
}

// RegisterRoutes registers the document routes under a claim.
func (h *DocumentHandler) RegisterRoutes(r *gin.Engine) {
	docs := r.Group("/api/v1/claims/:id/documents")
	docs.Use(h.authMiddleware.RequireAuth())
	{
		docs.POST("", h.Upload)
		docs.GET("", h.List)
		docs.GET("/download", h.Download)
		docs.GET("/url", h.URL)
		docs.DELETE("", h.Delete)
	}
}

// Upload stores the multipart "file" field against the claim.
func (h *DocumentHandler) Upload(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	claimID := c.Param("id")

	fh, err := c.FormFile(formFileField)
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	if h.maxUploadSize > 0 && fh.Size > h.maxUploadSize {
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodeBadRequest,
			fmt.Sprintf("file exceeds %d bytes", h.maxUploadSize))
		return
	}

	f, err := fh.Open()
	if err != nil {
		l.Error().Err(err).Msg("open uploaded file failed")
		response.InternalError(c, "failed to read upload")
		return
	}
	defer f.Close()

	result, err := h.documents.Upload(ctx, middleware.GetUserID(c), claimID, service.UploadFile{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		if errors.Is(err, service.ErrClaimNotFound) {
			response.NotFound(c, "claim not found")
			return
		}
		l.Error().Err(err).Str(log.FieldClaimID, claimID).Msg("upload document failed")
		response.InternalError(c, "failed to upload document")
		return
	}

	response.Created(c, result)
}

// List returns the claim's documents.
func (h *DocumentHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	claimID := c.Param("id")

	docs, err := h.documents.List(ctx, claimID)
	if err != nil {
		if errors.Is(err, service.ErrClaimNotFound) {
			response.NotFound(c, "claim not found")
			return
		}
		l.Error().Err(err).Str(log.FieldClaimID, claimID).Msg("list documents failed")
		response.InternalError(c, "failed to list documents")
		return
	}

	response.Success(c, docs)
}

// Download streams a document.
func (h *DocumentHandler) Download(c *gin.Context) {
	ctx := c.Request.Context()
	claimID := c.Param("id")

	rc, doc, err := h.documents.Open(ctx, claimID, c.Query("key"))
	if err != nil {
		h.documentError(c, claimID, err, "download document failed")
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(path.Ext(doc.FileName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, -1, contentType, rc, map[string]string{
		"Content-Disposition": mime.FormatMediaType("attachment", map[string]string{"filename": doc.FileName}),
	})
}

// URL returns a link the browser can fetch the document from.
func (h *DocumentHandler) URL(c *gin.Context) {
	ctx := c.Request.Context()
	claimID := c.Param("id")

	url, err := h.documents.URL(ctx, claimID, c.Query("key"))
	if err != nil {
		h.documentError(c, claimID, err, "document url failed")
		return
	}

	response.Success(c, gin.H{"url": url})
}

// Delete removes a document.
func (h *DocumentHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	claimID := c.Param("id")

	if err := h.documents.Delete(ctx, middleware.GetUserID(c), claimID, c.Query("key")); err != nil {
		h.documentError(c, claimID, err, "delete document failed")
		return
	}

	response.Success(c, gin.H{"message": "document deleted"})
}

func (h *DocumentHandler) documentError(c *gin.Context, claimID string, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrInvalidDocumentKey):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrDocumentNotFound):
		response.NotFound(c, "document not found")
	default:
		l := log.Ctx(c.Request.Context())
		l.Error().Err(err).Str(log.FieldClaimID, claimID).Msg(msg)
		response.InternalError(c, "document operation failed")
	}
}
