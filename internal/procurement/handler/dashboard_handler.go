package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/service"
)

// DashboardHandler serves summary figures and document registers.
type DashboardHandler struct {
	svc       *service.DashboardService
	purchases *service.PurchaseService
}

func NewDashboardHandler(svc *service.DashboardService, purchases *service.PurchaseService) *DashboardHandler {
	return &DashboardHandler{svc: svc, purchases: purchases}
}

// Stats GET /api/purchases/stats/dashboard
func (h *DashboardHandler) Stats(c *gin.Context) {
	st, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, st)
}

// Register GET /api/registers/:view
func (h *DashboardHandler) Register(c *gin.Context) {
	list, err := h.purchases.List(c.Request.Context(), service.ListFilter{})
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	rows, err := service.Register(c.Param("view"), list)
	if errors.Is(err, service.ErrUnknownView) {
		NotFound(c, err.Error())
		return
	}
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, rows)
}
