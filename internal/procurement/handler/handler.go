package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/repository"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/service"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/shared/sse"
	"go.uber.org/zap"
)

// Handlers bundles the procurement HTTP handlers.
type Handlers struct {
	Purchase     *PurchaseHandler
	Attachment   *AttachmentHandler
	Notification *NotificationHandler
	Transfer     *TransferHandler
	Dashboard    *DashboardHandler
	SSE          *SSEHandler
}

// NewHandlers creates the handlers. maxUpload caps attachment size in bytes.
func NewHandlers(svc *service.Services, hub *sse.Hub, maxUpload int64, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		Purchase:     NewPurchaseHandler(svc.Purchase),
		Attachment:   NewAttachmentHandler(svc.Attachment, maxUpload),
		Notification: NewNotificationHandler(svc.Notification),
		Transfer:     NewTransferHandler(svc.Transfer, logger),
		Dashboard:    NewDashboardHandler(svc.Dashboard, svc.Purchase),
		SSE:          NewSSEHandler(hub),
	}
}

// RegisterRoutes mounts every endpoint under api.
func (h *Handlers) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/", func(c *gin.Context) {
		Success(c, gin.H{"service": "MDRRMO Procurement API"})
	})

	purchases := api.Group("/purchases")
	{
		purchases.GET("", h.Purchase.List)
		purchases.POST("", h.Purchase.Create)
		purchases.GET("/stats/dashboard", h.Dashboard.Stats)
		purchases.GET("/:id", h.Purchase.Get)
		purchases.PUT("/:id", h.Purchase.Update)
		purchases.PATCH("/:id/status", h.Purchase.UpdateStatus)
		purchases.DELETE("/:id", h.Purchase.Delete)
		purchases.GET("/:id/attachments", h.Attachment.List)
		purchases.POST("/:id/attachments", h.Attachment.Upload)
	}

	api.GET("/registers/:view", h.Dashboard.Register)

	attachments := api.Group("/attachments")
	{
		attachments.GET("/:id", h.Attachment.Get)
		attachments.GET("/:id/download", h.Attachment.Download)
		attachments.DELETE("/:id", h.Attachment.Delete)
	}

	notifications := api.Group("/notifications")
	{
		notifications.GET("", h.Notification.List)
		notifications.GET("/unread-count", h.Notification.UnreadCount)
		notifications.GET("/stream", h.SSE.Stream)
		notifications.POST("/read-all", h.Notification.MarkAllRead)
		notifications.POST("/:id/read", h.Notification.MarkRead)
		notifications.DELETE("/:id", h.Notification.Delete)
	}

	transfer := api.Group("/transfer")
	{
		transfer.GET("/export.csv", h.Transfer.ExportCSV)
		transfer.GET("/export.xlsx", h.Transfer.ExportXLSX)
		transfer.POST("/import", h.Transfer.Import)
	}
}

// === response helpers ===

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func TooLarge(c *gin.Context, message string) {
	Error(c, 41300, message)
}

func Unprocessable(c *gin.Context, message string) {
	Error(c, 42200, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// GetUserID returns the acting user set by the Actor middleware.
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// fail maps store errors onto responses.
func fail(c *gin.Context, what string, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		NotFound(c, what+" not found")
		return
	}
	InternalError(c, err.Error())
}
