package transport

import (
	"time"

	"github.com/google/uuid"
)

// Enum values
type LeadStatus string

const (
	LeadStatusNew           LeadStatus = "new"
	LeadStatusInterested    LeadStatus = "interested"
	LeadStatusNotInterested LeadStatus = "not-interested"
	LeadStatusFollowUp      LeadStatus = "follow-up"
	LeadStatusSuccessful    LeadStatus = "successful"
)

type LeadCategory string

const (
	LeadCategoryHot  LeadCategory = "hot"
	LeadCategoryWarm LeadCategory = "warm"
	LeadCategoryCold LeadCategory = "cold"
)

// Request DTOs
type CreateLeadRequest struct {
	Name               string   `json:"name" validate:"required,min=1,max=200"`
	Phone              string   `json:"phone" validate:"required,min=5,max=20"`
	Email              string   `json:"email,omitempty" validate:"omitempty,email"`
	AlternatePhone     string   `json:"alternatePhone,omitempty" validate:"omitempty,min=5,max=20"`
	DebtCategory       string   `json:"debtCategory,omitempty" validate:"omitempty,max=100"`
	TotalDebtAmount    *float64 `json:"totalDebtAmount,omitempty" validate:"omitempty,gte=0"`
	NumberOfCreditors  *int     `json:"numberOfCreditors,omitempty" validate:"omitempty,gte=0"`
	MonthlyDebtPayment *float64 `json:"monthlyDebtPayment,omitempty" validate:"omitempty,gte=0"`
	CreditScoreRange   string   `json:"creditScoreRange,omitempty" validate:"omitempty,max=50"`
	Remarks            string   `json:"remarks,omitempty" validate:"omitempty,max=2000"`
}

type UpdateLeadRequest struct {
	Name               *string  `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Phone              *string  `json:"phone,omitempty" validate:"omitempty,min=5,max=20"`
	Email              *string  `json:"email,omitempty" validate:"omitempty,email"`
	AlternatePhone     *string  `json:"alternatePhone,omitempty" validate:"omitempty,max=20"`
	DebtCategory       *string  `json:"debtCategory,omitempty" validate:"omitempty,max=100"`
	TotalDebtAmount    *float64 `json:"totalDebtAmount,omitempty" validate:"omitempty,gte=0"`
	NumberOfCreditors  *int     `json:"numberOfCreditors,omitempty" validate:"omitempty,gte=0"`
	MonthlyDebtPayment *float64 `json:"monthlyDebtPayment,omitempty" validate:"omitempty,gte=0"`
	CreditScoreRange   *string  `json:"creditScoreRange,omitempty" validate:"omitempty,max=50"`
	Remarks            *string  `json:"remarks,omitempty" validate:"omitempty,max=2000"`

	Status         *LeadStatus  `json:"status,omitempty" validate:"omitempty,oneof=new interested not-interested follow-up successful"`
	CallStatus     *string      `json:"callStatus,omitempty" validate:"omitempty,max=100"`
	DocumentStatus *string      `json:"documentStatus,omitempty" validate:"omitempty,max=100"`
	FollowUpDate   OptionalTime `json:"followUpDate,omitempty" validate:"-"`
}

type AssignLeadRequest struct {
	AssigneeID uuid.UUID `json:"assigneeId" validate:"required"`
}

type ListLeadsQuery struct {
	Status     string `form:"status" validate:"omitempty,oneof=new interested not-interested follow-up successful"`
	Category   string `form:"category" validate:"omitempty,oneof=hot warm cold"`
	Priority   string `form:"priority" validate:"omitempty,oneof=high medium low"`
	AssignedTo string `form:"assignedTo" validate:"omitempty,uuid"`
	Search     string `form:"search" validate:"omitempty,max=200"`
	From       string `form:"from" validate:"omitempty"`
	To         string `form:"to" validate:"omitempty"`
	Page       int    `form:"page" validate:"omitempty,gte=1"`
	Limit      int    `form:"limit" validate:"omitempty,gte=1,lte=200"`
	SortBy     string `form:"sortBy" validate:"omitempty,oneof=createdAt name leadId status completionPercentage followUpDate assignedAt"`
	SortOrder  string `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

// Response DTOs
type LeadResponse struct {
	ID                   uuid.UUID  `json:"id"`
	LeadID               string     `json:"leadId"`
	Name                 string     `json:"name"`
	Email                *string    `json:"email,omitempty"`
	Phone                string     `json:"phone"`
	AlternatePhone       *string    `json:"alternatePhone,omitempty"`
	DebtCategory         *string    `json:"debtCategory,omitempty"`
	TotalDebtAmount      *float64   `json:"totalDebtAmount,omitempty"`
	NumberOfCreditors    *int       `json:"numberOfCreditors,omitempty"`
	MonthlyDebtPayment   *float64   `json:"monthlyDebtPayment,omitempty"`
	CreditScoreRange     *string    `json:"creditScoreRange,omitempty"`
	CompletionPercentage int        `json:"completionPercentage"`
	Category             string     `json:"category"`
	Priority             string     `json:"priority"`
	Status               string     `json:"status"`
	CallStatus           *string    `json:"callStatus,omitempty"`
	DocumentStatus       *string    `json:"documentStatus,omitempty"`
	FollowUpDate         *time.Time `json:"followUpDate,omitempty"`
	Remarks              *string    `json:"remarks,omitempty"`
	IsDuplicate          bool       `json:"isDuplicate"`
	DuplicateOf          *uuid.UUID `json:"duplicateOf,omitempty"`
	DuplicateReason      *string    `json:"duplicateReason,omitempty"`
	DuplicateDetectedAt  *time.Time `json:"duplicateDetectedAt,omitempty"`
	DuplicateDetectedBy  *uuid.UUID `json:"duplicateDetectedBy,omitempty"`
	CreatedBy            uuid.UUID  `json:"createdBy"`
	CreatedByName        string     `json:"createdByName"`
	OrganizationID       uuid.UUID  `json:"organizationId"`
	AssignedTo           *uuid.UUID `json:"assignedTo,omitempty"`
	AssignedBy           *uuid.UUID `json:"assignedBy,omitempty"`
	AssignedAt           *time.Time `json:"assignedAt,omitempty"`
	UpdatedBy            *uuid.UUID `json:"updatedBy,omitempty"`
	LastUpdatedBy        *uuid.UUID `json:"lastUpdatedBy,omitempty"`
	LastUpdatedByName    *string    `json:"lastUpdatedByName,omitempty"`
	LastUpdatedAt        *time.Time `json:"lastUpdatedAt,omitempty"`
	AdminProcessed       bool       `json:"adminProcessed"`
	AdminProcessedAt     *time.Time `json:"adminProcessedAt,omitempty"`
	ConvertedAt          *time.Time `json:"convertedAt,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

type ListLeadsResponse struct {
	Leads []LeadResponse `json:"leads"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

type StatisticsResponse struct {
	Total          int            `json:"total"`
	Duplicates     int            `json:"duplicates"`
	Assigned       int            `json:"assigned"`
	ByStatus       map[string]int `json:"byStatus"`
	ByCategory     map[string]int `json:"byCategory"`
	CreatedToday   int            `json:"createdToday"`
	CreatedWeek    int            `json:"createdThisWeek"`
	CreatedMonth   int            `json:"createdThisMonth"`
	ConvertedToday int            `json:"convertedToday"`
	ConvertedWeek  int            `json:"convertedThisWeek"`
	ConvertedMonth int            `json:"convertedThisMonth"`
}
