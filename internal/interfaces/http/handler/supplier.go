package handler

import (
	"github.com/gin-gonic/gin"
	partnerapp "github.com/opsease/backend/internal/application/partner"
)

// SupplierHandler serves /suppliers. Every call is scoped to the caller's user id.
type SupplierHandler struct {
	BaseHandler
	svc *partnerapp.SupplierService
}

func NewSupplierHandler(svc *partnerapp.SupplierService) *SupplierHandler {
	return &SupplierHandler{svc: svc}
}

// Create godoc
// @ID           createSupplier
// @Summary      Create a new supplier
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        request body CreateSupplierRequest true "Supplier creation request"
// @Success      201 {object} APIResponse[SupplierResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /suppliers [post]
func (h *SupplierHandler) Create(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req CreateSupplierRequest
	if !h.bindJSON(c, &req) {
		return
	}

	supplier, err := h.svc.Create(c.Request.Context(), userID, partnerapp.CreateSupplierRequest{
		SupplierCode: req.SupplierCode,
		ProfileInput: req.ProfileRequest.toApp(),
		Category:     req.Category,
		IsActive:     req.IsActive,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toSupplierResponse(supplier))
}

// GetByID godoc
// @ID           getSupplierById
// @Summary      Get supplier by ID
// @Tags         suppliers
// @Produce      json
// @Param        id path string true "Supplier ID" format(uuid)
// @Success      200 {object} APIResponse[SupplierResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /suppliers/{id} [get]
func (h *SupplierHandler) GetByID(c *gin.Context) {
	userID, id, ok := h.userAndID(c, "supplier")
	if !ok {
		return
	}

	supplier, err := h.svc.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSupplierResponse(supplier))
}

// List godoc
// @ID           listSuppliers
// @Summary      List suppliers
// @Tags         suppliers
// @Produce      json
// @Param        search query string false "Matches code, company, contact, email or phone"
// @Param        category query string false "Exact category"
// @Param        page query int false "Page number" default(1)
// @Param        pageSize query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]SupplierResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /suppliers [get]
func (h *SupplierHandler) List(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var q PartnerListQuery
	if !h.bindQuery(c, &q) {
		return
	}

	suppliers, total, err := h.svc.List(c.Request.Context(), userID, q.toApp())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, toSupplierResponses(suppliers), total, q.Page, q.PageSize)
}

// Update godoc
// @ID           updateSupplier
// @Summary      Update a supplier
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        id path string true "Supplier ID" format(uuid)
// @Param        request body UpdateSupplierRequest true "Changed fields"
// @Success      200 {object} APIResponse[SupplierResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /suppliers/{id} [put]
func (h *SupplierHandler) Update(c *gin.Context) {
	userID, id, ok := h.userAndID(c, "supplier")
	if !ok {
		return
	}
	var req UpdateSupplierRequest
	if !h.bindJSON(c, &req) {
		return
	}

	supplier, err := h.svc.Update(c.Request.Context(), userID, id, partnerapp.UpdateSupplierRequest{
		SupplierCode:  req.SupplierCode,
		ProfileUpdate: req.ProfilePatch.toApp(),
		Category:      req.Category,
		IsActive:      req.IsActive,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSupplierResponse(supplier))
}

// Delete godoc
// @ID           deleteSupplier
// @Summary      Delete a supplier
// @Tags         suppliers
// @Param        id path string true "Supplier ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /suppliers/{id} [delete]
func (h *SupplierHandler) Delete(c *gin.Context) {
	userID, id, ok := h.userAndID(c, "supplier")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
