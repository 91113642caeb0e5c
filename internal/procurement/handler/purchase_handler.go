package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/service"
)

// PurchaseHandler serves the purchase record store.
type PurchaseHandler struct {
	svc *service.PurchaseService
}

func NewPurchaseHandler(svc *service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{svc: svc}
}

// List GET /api/purchases?status=&priority=&department=&date_from=&date_to=&search=
func (h *PurchaseHandler) List(c *gin.Context) {
	filter := service.ListFilter{
		Status:     c.Query("status"),
		Priority:   c.Query("priority"),
		Department: c.Query("department"),
		DateFrom:   c.Query("date_from"),
		DateTo:     c.Query("date_to"),
		Search:     c.Query("search"),
	}
	list, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		InternalError(c, "list purchases: "+err.Error())
		return
	}
	Success(c, list)
}

// Get GET /api/purchases/:id
func (h *PurchaseHandler) Get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, "purchase", err)
		return
	}
	Success(c, p)
}

// Create POST /api/purchases
func (h *PurchaseHandler) Create(c *gin.Context) {
	var req service.CreatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	p, err := h.svc.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Created(c, p)
}

// Update PUT /api/purchases/:id
func (h *PurchaseHandler) Update(c *gin.Context) {
	var req service.UpdatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	p, err := h.svc.Update(c.Request.Context(), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		fail(c, "purchase", err)
		return
	}
	Success(c, p)
}

// UpdateStatus PATCH /api/purchases/:id/status
func (h *PurchaseHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	p, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		fail(c, "purchase", err)
		return
	}
	Success(c, p)
}

// Delete DELETE /api/purchases/:id
func (h *PurchaseHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, "purchase", err)
		return
	}
	Success(c, gin.H{"deleted": c.Param("id")})
}
