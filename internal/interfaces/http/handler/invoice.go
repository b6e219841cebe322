package handler

import (
	"github.com/gin-gonic/gin"
	invoiceapp "github.com/opsease/backend/internal/application/invoice"
	"github.com/opsease/backend/internal/domain/shared"
)

// InvoiceHandler handles invoice API endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *invoiceapp.Service
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *invoiceapp.Service) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// List godoc
// @ID           listInvoices
// @Summary      List invoices
// @Tags         invoices
// @Produce      json
// @Param        invoiceType query string false "sales_invoice or purchase_invoice"
// @Param        status query string false "draft, sent, paid or overdue"
// @Param        search query string false "Matches number or buyer name"
// @Param        page query int false "Page number" default(1)
// @Param        pageSize query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var q InvoiceListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = 20
	}

	invoices, total, err := h.invoiceService.List(c.Request.Context(), userID, invoiceapp.ListFilter{
		InvoiceType: q.InvoiceType,
		Status:      q.Status,
		Search:      q.Search,
		Page:        q.Page,
		PageSize:    q.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, toInvoiceResponses(invoices), total, q.Page, q.PageSize)
}

// Create godoc
// @ID           createInvoice
// @Summary      Create an invoice
// @Description  Saves the invoice and posts its ledger entry in the same transaction
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        request body CreateInvoiceRequest true "Invoice"
// @Success      201 {object} APIResponse[InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req CreateInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	appReq, err := req.toApp()
	if err != nil {
		h.HandleError(c, err)
		return
	}

	inv, err := h.invoiceService.Create(c.Request.Context(), userID, appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toInvoiceResponse(inv))
}

// Get godoc
// @ID           getInvoice
// @Summary      Get an invoice
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	userID, id, ok := h.userAndID(c, "invoice")
	if !ok {
		return
	}

	inv, err := h.invoiceService.Get(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toInvoiceResponse(inv))
}

// Update godoc
// @ID           updateInvoice
// @Summary      Update an invoice
// @Description  Partial update. The first move into paid posts the payment entry.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body UpdateInvoiceRequest true "Changed fields"
// @Success      200 {object} APIResponse[InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	userID, id, ok := h.userAndID(c, "invoice")
	if !ok {
		return
	}
	var req UpdateInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	appReq, err := req.toApp()
	if err != nil {
		h.HandleError(c, err)
		return
	}

	inv, err := h.invoiceService.Update(c.Request.Context(), userID, id, appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toInvoiceResponse(inv))
}

// Delete godoc
// @ID           deleteInvoice
// @Summary      Delete an invoice
// @Description  Ledger entries posted for the invoice are kept
// @Tags         invoices
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
	userID, id, ok := h.userAndID(c, "invoice")
	if !ok {
		return
	}

	if err := h.invoiceService.Delete(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func invalidID(field string) error {
	return shared.NewValidationError("Invalid " + field + " format")
}

func (r CreateInvoiceRequest) toApp() (invoiceapp.CreateInvoiceRequest, error) {
	out := invoiceapp.CreateInvoiceRequest{
		InvoiceNumber: r.InvoiceNumber,
		InvoiceType:   r.InvoiceType,
		BuyerName:     r.BuyerName,
		BuyerAddress:  r.BuyerAddress,
		BuyerGST:      r.BuyerGST,
		BuyerPhone:    r.BuyerPhone,
		BuyerEmail:    r.BuyerEmail,
		Items:         toItemInputs(r.Items),
		Currency:      r.Currency,
		Status:        r.Status,
		PdfURL:        r.PdfURL,
	}

	var err error
	if out.OrderID, err = parseUUIDPtr(r.OrderID); err != nil {
		return out, invalidID("orderId")
	}
	if out.CustomerID, err = parseUUIDPtr(r.CustomerID); err != nil {
		return out, invalidID("customerId")
	}
	if out.SupplierID, err = parseUUIDPtr(r.SupplierID); err != nil {
		return out, invalidID("supplierId")
	}
	if r.TaxRate != nil {
		if out.TaxRate, err = parseMoney(*r.TaxRate); err != nil {
			return out, err
		}
	}
	if r.ShippingCost != nil {
		if out.ShippingCost, err = parseMoney(*r.ShippingCost); err != nil {
			return out, err
		}
	}
	if r.Discount != nil {
		if out.Discount, err = parseMoney(*r.Discount); err != nil {
			return out, err
		}
	}
	if out.InvoiceDate, err = shared.ParseDate(r.InvoiceDate); err != nil {
		return out, err
	}
	if out.DueDate, err = parseDatePtr(r.DueDate); err != nil {
		return out, err
	}
	return out, nil
}

func (r UpdateInvoiceRequest) toApp() (invoiceapp.UpdateInvoiceRequest, error) {
	out := invoiceapp.UpdateInvoiceRequest{
		BuyerName:    r.BuyerName,
		BuyerAddress: r.BuyerAddress,
		BuyerGST:     r.BuyerGST,
		BuyerPhone:   r.BuyerPhone,
		BuyerEmail:   r.BuyerEmail,
		Items:        toItemInputs(r.Items),
		Currency:     r.Currency,
		Status:       r.Status,
		PdfURL:       r.PdfURL,
	}

	var err error
	if out.OrderID, err = parseUUIDPtr(r.OrderID); err != nil {
		return out, invalidID("orderId")
	}
	if out.TaxRate, err = parseMoneyPtr(r.TaxRate); err != nil {
		return out, err
	}
	if out.ShippingCost, err = parseMoneyPtr(r.ShippingCost); err != nil {
		return out, err
	}
	if out.Discount, err = parseMoneyPtr(r.Discount); err != nil {
		return out, err
	}
	if out.InvoiceDate, err = parseDatePtr(r.InvoiceDate); err != nil {
		return out, err
	}
	if out.DueDate, err = parseDatePtr(r.DueDate); err != nil {
		return out, err
	}
	return out, nil
}
