package handler

import (
	partnerapp "github.com/opsease/backend/internal/application/partner"
)

// CreateSupplierRequest represents a request to create a new supplier
// @Description Request body for creating a new supplier
type CreateSupplierRequest struct {
	SupplierCode string `json:"supplierCode" binding:"required,max=50" example:"SUP-001"`
	ProfileRequest
	Category string `json:"category" binding:"max=100" example:"Raw material"`
	IsActive *bool  `json:"isActive" example:"true"`
}

// UpdateSupplierRequest represents a partial supplier update
// @Description Request body for updating a supplier
type UpdateSupplierRequest struct {
	SupplierCode *string `json:"supplierCode" binding:"omitempty,min=1,max=50" example:"SUP-002"`
	ProfilePatch
	Category *string `json:"category" binding:"omitempty,max=100" example:"Packaging"`
	IsActive *bool   `json:"isActive" example:"false"`
}

// SupplierResponse represents a supplier in API responses
// @Description Supplier master record
type SupplierResponse struct {
	ID           string `json:"id"`
	SupplierCode string `json:"supplierCode" example:"SUP-001"`
	ProfileResponse
	Category  string `json:"category" example:"Raw material"`
	IsActive  bool   `json:"isActive" example:"true"`
	Version   int    `json:"version" example:"1"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func toSupplierResponse(s *partnerapp.SupplierResponse) SupplierResponse {
	return SupplierResponse{
		ID:              s.ID.String(),
		SupplierCode:    s.SupplierCode,
		ProfileResponse: ProfileResponse(s.ProfileResponse),
		Category:        s.Category,
		IsActive:        s.IsActive,
		Version:         s.Version,
		CreatedAt:       formatTimestamp(s.CreatedAt),
		UpdatedAt:       formatTimestamp(s.UpdatedAt),
	}
}

func toSupplierResponses(suppliers []partnerapp.SupplierResponse) []SupplierResponse {
	out := make([]SupplierResponse, len(suppliers))
	for i := range suppliers {
		out[i] = toSupplierResponse(&suppliers[i])
	}
	return out
}
