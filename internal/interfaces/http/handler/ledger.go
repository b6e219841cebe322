package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"path"
	"time"

	"github.com/gin-gonic/gin"
	ledgerapp "github.com/opsease/backend/internal/application/ledger"
	"github.com/opsease/backend/internal/domain/shared"
	"github.com/opsease/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// LedgerHandler serves the ledger balance engine
type LedgerHandler struct {
	BaseHandler
	ledgerService *ledgerapp.Service
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledgerService *ledgerapp.Service) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// List godoc
// @ID           listLedgerEntries
// @Summary      List ledger entries
// @Description  Entries newest first, each carrying the balance re-derived from its party's history
// @Tags         ledger
// @Produce      json
// @Param        partyName query string false "Exact party name"
// @Param        partyType query string false "buyer or supplier"
// @Success      200 {object} APIResponse[[]LedgerEntryResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ledger [get]
func (h *LedgerHandler) List(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var q LedgerFilterQuery
	if !h.bindQuery(c, &q) {
		return
	}

	entries, err := h.ledgerService.ListEntries(c.Request.Context(), userID, q.toApp())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toLedgerEntryResponses(entries))
}

// Append godoc
// @ID           appendLedgerEntry
// @Summary      Append a ledger entry
// @Description  Posts a manual entry. Its balance is the signed sum of the party's history plus the new amount.
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        request body AppendLedgerEntryRequest true "Entry"
// @Success      201 {object} APIResponse[LedgerEntryResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ledger [post]
func (h *LedgerHandler) Append(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req AppendLedgerEntryRequest
	if !h.bindJSON(c, &req) {
		return
	}

	amount, err := parseMoney(req.Amount)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	entryDate, err := shared.ParseDate(req.EntryDate)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	entry, err := h.ledgerService.AppendEntry(c.Request.Context(), userID, ledgerapp.AppendEntryRequest{
		PartyName:   req.PartyName,
		PartyType:   req.PartyType,
		EntryType:   req.EntryType,
		Amount:      amount,
		Description: req.Description,
		Reference:   req.Reference,
		EntryDate:   entryDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toLedgerEntryResponse(*entry))
}

// Summary godoc
// @ID           ledgerSummary
// @Summary      Summarize ledger entries
// @Tags         ledger
// @Produce      json
// @Param        partyName query string false "Exact party name"
// @Param        partyType query string false "buyer or supplier"
// @Success      200 {object} APIResponse[LedgerSummaryResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ledger/summary [get]
func (h *LedgerHandler) Summary(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var q LedgerFilterQuery
	if !h.bindQuery(c, &q) {
		return
	}

	summary, err := h.ledgerService.Summary(c.Request.Context(), userID, q.toApp())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toLedgerSummaryResponse(summary))
}

// Parties godoc
// @ID           ledgerPartyBalances
// @Summary      Current balance per party
// @Tags         ledger
// @Produce      json
// @Success      200 {object} APIResponse[[]PartyBalanceResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ledger/parties [get]
func (h *LedgerHandler) Parties(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	rows, err := h.ledgerService.PartyBalances(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPartyBalanceResponses(rows))
}

// Export godoc
// @ID           exportLedger
// @Summary      Download a CSV statement
// @Tags         ledger
// @Produce      text/csv
// @Param        partyName query string false "Exact party name"
// @Param        partyType query string false "buyer or supplier"
// @Success      200 {file} file
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ledger/export [get]
func (h *LedgerHandler) Export(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var q LedgerFilterQuery
	if !h.bindQuery(c, &q) {
		return
	}

	var buf bytes.Buffer
	count, err := h.ledgerService.Export(c.Request.Context(), userID, q.toApp(), &buf)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	logger.GetGinLogger(c).Debug("ledger exported", zap.Int("entries", count))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportFilename(q.PartyName, time.Now())))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// exportFilename is the statement object name without its user prefix
func exportFilename(partyName string, at time.Time) string {
	return path.Base(ledgerapp.StatementKey("", partyName, at))
}

// ArchiveStatement godoc
// @ID           archiveLedgerStatement
// @Summary      Archive a CSV statement
// @Description  Uploads the statement to object storage and returns a presigned download link
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        request body ArchiveStatementRequest false "Entries to include"
// @Success      201 {object} APIResponse[StatementResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ledger/statements [post]
func (h *LedgerHandler) ArchiveStatement(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req ArchiveStatementRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}

	stmt, err := h.ledgerService.ArchiveStatement(c.Request.Context(), userID, ledgerapp.ListFilter{
		PartyName: req.PartyName,
		PartyType: req.PartyType,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, StatementResponse{
		Key:         stmt.Key,
		DownloadURL: stmt.DownloadURL,
		ExpiresAt:   formatTimestamp(stmt.ExpiresAt),
		EntryCount:  stmt.EntryCount,
	})
}
