package handler

import (
	partnerapp "github.com/opsease/backend/internal/application/partner"
)

// ProfileRequest carries the contact and tax fields shared by customers and suppliers
type ProfileRequest struct {
	CompanyName   string `json:"companyName" binding:"required,max=200" example:"Sharma Traders"`
	ContactPerson string `json:"contactPerson" binding:"max=100" example:"Rahul Sharma"`
	Email         string `json:"email" binding:"omitempty,email,max=200" example:"accounts@sharma.in"`
	Phone         string `json:"phone" binding:"max=20" example:"9876543210"`
	GSTNumber     string `json:"gstNumber" binding:"max=20" example:"27AAPFU0939F1ZV"`
	Address       string `json:"address" binding:"max=500" example:"12 MG Road"`
	City          string `json:"city" binding:"max=100" example:"Pune"`
	State         string `json:"state" binding:"max=100" example:"Maharashtra"`
	Country       string `json:"country" binding:"max=100" example:"India"`
	Pincode       string `json:"pincode" binding:"max=10" example:"411001"`
	PaymentTerms  string `json:"paymentTerms" binding:"max=20" example:"30"`
}

func (p ProfileRequest) toApp() partnerapp.ProfileInput {
	return partnerapp.ProfileInput(p)
}

// ProfilePatch is a partial profile change
type ProfilePatch struct {
	CompanyName   *string `json:"companyName" binding:"omitempty,min=1,max=200"`
	ContactPerson *string `json:"contactPerson" binding:"omitempty,max=100"`
	Email         *string `json:"email" binding:"omitempty,email,max=200"`
	Phone         *string `json:"phone" binding:"omitempty,max=20"`
	GSTNumber     *string `json:"gstNumber" binding:"omitempty,max=20"`
	Address       *string `json:"address" binding:"omitempty,max=500"`
	City          *string `json:"city" binding:"omitempty,max=100"`
	State         *string `json:"state" binding:"omitempty,max=100"`
	Country       *string `json:"country" binding:"omitempty,max=100"`
	Pincode       *string `json:"pincode" binding:"omitempty,max=10"`
	PaymentTerms  *string `json:"paymentTerms" binding:"omitempty,max=20"`
}

func (p ProfilePatch) toApp() partnerapp.ProfileUpdate {
	return partnerapp.ProfileUpdate(p)
}

// ProfileResponse is the contact block of a partner response
type ProfileResponse struct {
	CompanyName   string `json:"companyName" example:"Sharma Traders"`
	ContactPerson string `json:"contactPerson" example:"Rahul Sharma"`
	Email         string `json:"email" example:"accounts@sharma.in"`
	Phone         string `json:"phone" example:"9876543210"`
	GSTNumber     string `json:"gstNumber" example:"27AAPFU0939F1ZV"`
	Address       string `json:"address" example:"12 MG Road"`
	City          string `json:"city" example:"Pune"`
	State         string `json:"state" example:"Maharashtra"`
	Country       string `json:"country" example:"India"`
	Pincode       string `json:"pincode" example:"411001"`
	PaymentTerms  string `json:"paymentTerms" example:"30"`
}

// PartnerListQuery selects a page of customers or suppliers
type PartnerListQuery struct {
	Search   string `form:"search" binding:"max=100"`
	Category string `form:"category" binding:"max=100"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
}

func (q *PartnerListQuery) toApp() partnerapp.ListFilter {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = 20
	}
	return partnerapp.ListFilter{
		Search:   q.Search,
		Category: q.Category,
		Page:     q.Page,
		PageSize: q.PageSize,
	}
}

// CreateCustomerRequest represents a request to create a new customer
// @Description Request body for creating a new customer
type CreateCustomerRequest struct {
	CustomerCode string `json:"customerCode" binding:"required,max=50" example:"CUST-001"`
	ProfileRequest
	CreditLimit *string `json:"creditLimit" binding:"omitempty,decimal_gte0" example:"100000.00"`
	IsActive    *bool   `json:"isActive" example:"true"`
}

// UpdateCustomerRequest represents a partial customer update
// @Description Request body for updating a customer
type UpdateCustomerRequest struct {
	CustomerCode *string `json:"customerCode" binding:"omitempty,min=1,max=50" example:"CUST-002"`
	ProfilePatch
	CreditLimit *string `json:"creditLimit" binding:"omitempty,decimal_gte0" example:"150000.00"`
	IsActive    *bool   `json:"isActive" example:"false"`
}

// CustomerResponse represents a customer in API responses
// @Description Customer master record
type CustomerResponse struct {
	ID           string `json:"id"`
	CustomerCode string `json:"customerCode" example:"CUST-001"`
	ProfileResponse
	CreditLimit string `json:"creditLimit" example:"100000.00"`
	IsActive    bool   `json:"isActive" example:"true"`
	Version     int    `json:"version" example:"1"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func toCustomerResponse(c *partnerapp.CustomerResponse) CustomerResponse {
	return CustomerResponse{
		ID:              c.ID.String(),
		CustomerCode:    c.CustomerCode,
		ProfileResponse: ProfileResponse(c.ProfileResponse),
		CreditLimit:     money(c.CreditLimit),
		IsActive:        c.IsActive,
		Version:         c.Version,
		CreatedAt:       formatTimestamp(c.CreatedAt),
		UpdatedAt:       formatTimestamp(c.UpdatedAt),
	}
}

func toCustomerResponses(customers []partnerapp.CustomerResponse) []CustomerResponse {
	out := make([]CustomerResponse, len(customers))
	for i := range customers {
		out[i] = toCustomerResponse(&customers[i])
	}
	return out
}
