package handler

import (
	"github.com/gin-gonic/gin"
	partnerapp "github.com/opsease/backend/internal/application/partner"
)

// CustomerHandler serves /customers. Every call is scoped to the caller's user id.
type CustomerHandler struct {
	BaseHandler
	svc *partnerapp.CustomerService
}

func NewCustomerHandler(svc *partnerapp.CustomerService) *CustomerHandler {
	return &CustomerHandler{svc: svc}
}

// Create godoc
// @ID           createCustomer
// @Summary      Create a new customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        request body CreateCustomerRequest true "Customer creation request"
// @Success      201 {object} APIResponse[CustomerResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers [post]
func (h *CustomerHandler) Create(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req CreateCustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	creditLimit, err := parseMoneyPtr(req.CreditLimit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	customer, err := h.svc.Create(c.Request.Context(), userID, partnerapp.CreateCustomerRequest{
		CustomerCode: req.CustomerCode,
		ProfileInput: req.ProfileRequest.toApp(),
		CreditLimit:  creditLimit,
		IsActive:     req.IsActive,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toCustomerResponse(customer))
}

// GetByID godoc
// @ID           getCustomerById
// @Summary      Get customer by ID
// @Tags         customers
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Success      200 {object} APIResponse[CustomerResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{id} [get]
func (h *CustomerHandler) GetByID(c *gin.Context) {
	userID, id, ok := h.userAndID(c, "customer")
	if !ok {
		return
	}

	customer, err := h.svc.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toCustomerResponse(customer))
}

// List godoc
// @ID           listCustomers
// @Summary      List customers
// @Tags         customers
// @Produce      json
// @Param        search query string false "Matches code, company, contact, email or phone"
// @Param        page query int false "Page number" default(1)
// @Param        pageSize query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]CustomerResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers [get]
func (h *CustomerHandler) List(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var q PartnerListQuery
	if !h.bindQuery(c, &q) {
		return
	}

	filter := q.toApp()
	filter.Category = ""

	customers, total, err := h.svc.List(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, toCustomerResponses(customers), total, q.Page, q.PageSize)
}

// Update godoc
// @ID           updateCustomer
// @Summary      Update a customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Param        request body UpdateCustomerRequest true "Changed fields"
// @Success      200 {object} APIResponse[CustomerResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{id} [put]
func (h *CustomerHandler) Update(c *gin.Context) {
	userID, id, ok := h.userAndID(c, "customer")
	if !ok {
		return
	}
	var req UpdateCustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	creditLimit, err := parseMoneyPtr(req.CreditLimit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	customer, err := h.svc.Update(c.Request.Context(), userID, id, partnerapp.UpdateCustomerRequest{
		CustomerCode:  req.CustomerCode,
		ProfileUpdate: req.ProfilePatch.toApp(),
		CreditLimit:   creditLimit,
		IsActive:      req.IsActive,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toCustomerResponse(customer))
}

// Delete godoc
// @ID           deleteCustomer
// @Summary      Delete a customer
// @Tags         customers
// @Param        id path string true "Customer ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{id} [delete]
func (h *CustomerHandler) Delete(c *gin.Context) {
	userID, id, ok := h.userAndID(c, "customer")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
