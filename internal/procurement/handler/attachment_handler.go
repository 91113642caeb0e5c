package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/entity"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/service"
)

// AttachmentHandler serves purchase attachments.
type AttachmentHandler struct {
	svc     *service.AttachmentService
	maxSize int64
}

func NewAttachmentHandler(svc *service.AttachmentService, maxSize int64) *AttachmentHandler {
	if maxSize <= 0 {
		maxSize = entity.MaxAttachmentSize
	}
	return &AttachmentHandler{svc: svc, maxSize: maxSize}
}

// List GET /api/purchases/:id/attachments
func (h *AttachmentHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	refs := make([]entity.AttachmentRef, len(list))
	for i, a := range list {
		refs[i] = a.Ref()
	}
	Success(c, refs)
}

// Upload POST /api/purchases/:id/attachments (multipart field "file")
func (h *AttachmentHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		BadRequest(c, "missing file")
		return
	}
	defer file.Close()

	if header.Size > h.maxSize {
		TooLarge(c, fmt.Sprintf("%s exceeds the %d MB limit", header.Filename, h.maxSize>>20))
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, h.maxSize+1))
	if err != nil {
		BadRequest(c, "read file: "+err.Error())
		return
	}
	if int64(len(data)) > h.maxSize {
		TooLarge(c, fmt.Sprintf("%s exceeds the %d MB limit", header.Filename, h.maxSize>>20))
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	uploadedBy := c.PostForm("uploadedBy")
	if uploadedBy == "" {
		uploadedBy = GetUserID(c)
	}

	a, err := h.svc.Add(c.Request.Context(), c.Param("id"), &service.Upload{
		OriginalName: header.Filename,
		MimeType:     mimeType,
		Data:         data,
		UploadedBy:   uploadedBy,
	})
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Created(c, a.Ref())
}

// Get GET /api/attachments/:id returns the record with its payload.
func (h *AttachmentHandler) Get(c *gin.Context) {
	a, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	Success(c, a)
}

// Download GET /api/attachments/:id/download
func (h *AttachmentHandler) Download(c *gin.Context) {
	a, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.OriginalName))
	c.Data(http.StatusOK, a.MimeType, a.Data)
}

// Delete DELETE /api/attachments/:id
func (h *AttachmentHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), GetUserID(c)); err != nil {
		fail(c, "attachment", err)
		return
	}
	Success(c, gin.H{"deleted": c.Param("id")})
}

func (h *AttachmentHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, service.ErrBlobUnavailable) {
		Error(c, 50300, err.Error())
		return
	}
	fail(c, "attachment", err)
}
