package handler

import (
	ledgerapp "github.com/opsease/backend/internal/application/ledger"
)

// AppendLedgerEntryRequest represents a manual ledger posting
// @Description Request body for appending a ledger entry. A balance sent by the client is ignored.
type AppendLedgerEntryRequest struct {
	PartyName   string `json:"partyName" binding:"required,max=200" example:"Sharma Traders"`
	PartyType   string `json:"partyType" binding:"required" example:"buyer"`
	EntryType   string `json:"entryType" binding:"required" example:"debit"`
	Amount      string `json:"amount" binding:"required,decimal_gt0" example:"5000.00"`
	Description string `json:"description" binding:"required,max=500" example:"Opening balance"`
	Reference   string `json:"reference" binding:"max=100" example:"SI00000001"`
	EntryDate   string `json:"entryDate" binding:"required,date" example:"2024-01-10"`
	// Balance is accepted for compatibility with older clients and discarded
	Balance *string `json:"balance,omitempty" swaggerignore:"true"`
}

// LedgerFilterQuery selects the entries of a listing
type LedgerFilterQuery struct {
	PartyName string `form:"partyName" binding:"max=200"`
	PartyType string `form:"partyType" binding:"omitempty,oneof=buyer supplier"`
}

func (q LedgerFilterQuery) toApp() ledgerapp.ListFilter {
	return ledgerapp.ListFilter{PartyName: q.PartyName, PartyType: q.PartyType}
}

// LedgerEntryResponse represents a ledger entry in API responses
// @Description Ledger entry with its running balance
type LedgerEntryResponse struct {
	ID          string  `json:"id" example:"6f1c2a9e-8f0e-4e38-9d8f-9b2a3c4d5e6f"`
	PartyName   string  `json:"partyName" example:"Sharma Traders"`
	PartyType   string  `json:"partyType" example:"buyer"`
	EntryType   string  `json:"entryType" example:"debit"`
	Amount      string  `json:"amount" example:"5000.00"`
	Description string  `json:"description" example:"Invoice SI00000001"`
	Reference   string  `json:"reference,omitempty" example:"SI00000001"`
	EntryDate   string  `json:"entryDate" example:"2024-01-10"`
	Balance     string  `json:"balance" example:"5000.00"`
	SourceType  string  `json:"sourceType" example:"invoice_issued" enums:"manual,invoice_issued,invoice_paid"`
	SourceID    *string `json:"sourceId,omitempty"`
	CreatedAt   string  `json:"createdAt" example:"2024-01-10T09:30:00Z"`
}

func toLedgerEntryResponse(e ledgerapp.EntryResponse) LedgerEntryResponse {
	resp := LedgerEntryResponse{
		ID:          e.ID.String(),
		PartyName:   e.PartyName,
		PartyType:   e.PartyType,
		EntryType:   e.EntryType,
		Amount:      money(e.Amount),
		Description: e.Description,
		Reference:   e.Reference,
		EntryDate:   formatDate(e.EntryDate),
		Balance:     money(e.Balance),
		SourceType:  e.SourceType,
		CreatedAt:   formatTimestamp(e.CreatedAt),
	}
	if e.SourceID != nil {
		id := e.SourceID.String()
		resp.SourceID = &id
	}
	return resp
}

func toLedgerEntryResponses(entries []ledgerapp.EntryResponse) []LedgerEntryResponse {
	out := make([]LedgerEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = toLedgerEntryResponse(e)
	}
	return out
}

// LedgerSummaryResponse aggregates a ledger listing
// @Description Totals over the selected entries
type LedgerSummaryResponse struct {
	TotalDebits  string `json:"totalDebits" example:"5000.00"`
	TotalCredits string `json:"totalCredits" example:"2000.00"`
	NetBalance   string `json:"netBalance" example:"-3000.00"`
	EntryCount   int    `json:"entryCount" example:"2"`
	Receivable   string `json:"receivable" example:"3000.00"`
	Payable      string `json:"payable" example:"0.00"`
}

func toLedgerSummaryResponse(s *ledgerapp.SummaryResponse) LedgerSummaryResponse {
	return LedgerSummaryResponse{
		TotalDebits:  money(s.TotalDebits),
		TotalCredits: money(s.TotalCredits),
		NetBalance:   money(s.NetBalance),
		EntryCount:   s.EntryCount,
		Receivable:   money(s.Receivable),
		Payable:      money(s.Payable),
	}
}

// PartyBalanceResponse is one party's current balance
// @Description Current balance of one party
type PartyBalanceResponse struct {
	PartyName     string `json:"partyName" example:"Sharma Traders"`
	PartyType     string `json:"partyType" example:"buyer"`
	Balance       string `json:"balance" example:"3000.00"`
	EntryCount    int    `json:"entryCount" example:"2"`
	LastEntryDate string `json:"lastEntryDate" example:"2024-02-01"`
}

func toPartyBalanceResponses(rows []ledgerapp.PartyBalanceResponse) []PartyBalanceResponse {
	out := make([]PartyBalanceResponse, len(rows))
	for i, r := range rows {
		out[i] = PartyBalanceResponse{
			PartyName:     r.PartyName,
			PartyType:     r.PartyType,
			Balance:       money(r.Balance),
			EntryCount:    r.EntryCount,
			LastEntryDate: formatDate(r.LastEntryDate),
		}
	}
	return out
}

// ArchiveStatementRequest selects the entries of an archived statement
type ArchiveStatementRequest struct {
	PartyName string `json:"partyName" binding:"max=200" example:"Sharma Traders"`
	PartyType string `json:"partyType" binding:"omitempty,oneof=buyer supplier" example:"buyer"`
}

// StatementResponse describes an archived statement
// @Description Location of an archived CSV statement
type StatementResponse struct {
	Key         string `json:"key" example:"statements/user-1/Sharma_Traders-20240201T101500Z.csv"`
	DownloadURL string `json:"downloadUrl"`
	ExpiresAt   string `json:"expiresAt" example:"2024-02-01T11:15:00Z"`
	EntryCount  int    `json:"entryCount" example:"2"`
}
