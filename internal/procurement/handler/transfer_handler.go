package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/service"
	"go.uber.org/zap"
)

// TransferHandler serves bulk export and import.
type TransferHandler struct {
	svc    *service.TransferService
	logger *zap.Logger
}

func NewTransferHandler(svc *service.TransferService, logger *zap.Logger) *TransferHandler {
	return &TransferHandler{svc: svc, logger: logger}
}

func exportName(ext string) string {
	return fmt.Sprintf("purchases_%s.%s", time.Now().Format("2006-01-02"), ext)
}

// ExportCSV GET /api/transfer/export.csv
func (h *TransferHandler) ExportCSV(c *gin.Context) {
	data, err := h.svc.ExportCSV(c.Request.Context())
	if errors.Is(err, service.ErrNoData) {
		NotFound(c, "no data to export")
		return
	}
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+exportName("csv")+"\"")
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// ExportXLSX GET /api/transfer/export.xlsx
func (h *TransferHandler) ExportXLSX(c *gin.Context) {
	f, err := h.svc.ExportXLSX(c.Request.Context())
	if errors.Is(err, service.ErrNoData) {
		NotFound(c, "no data to export")
		return
	}
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=\""+exportName("xlsx")+"\"")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := f.Write(c.Writer); err != nil {
		h.logger.Error("write xlsx export", zap.Error(err))
	}
}

// Import POST /api/transfer/import?mode=merge|replace
// The CSV is taken from the multipart field "file" on a multipart upload,
// otherwise from the raw body whatever its content type.
func (h *TransferHandler) Import(c *gin.Context) {
	var r io.Reader = c.Request.Body
	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		file, _, err := c.Request.FormFile("file")
		if err != nil {
			BadRequest(c, "missing file field")
			return
		}
		defer file.Close()
		r = file
	}

	res, err := h.svc.Import(c.Request.Context(), r, c.DefaultQuery("mode", service.ImportMerge), GetUserID(c))
	switch {
	case errors.Is(err, service.ErrInvalidMode):
		BadRequest(c, err.Error())
	case errors.Is(err, service.ErrNoValidRows):
		Unprocessable(c, err.Error())
	case err != nil:
		InternalError(c, err.Error())
	default:
		Success(c, res)
	}
}
