package leave

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

const (
	DayTypeFull       = "full"
	DayTypeFirstHalf  = "first_half"
	DayTypeSecondHalf = "second_half"
)

// LeaveRequest status is written only by the approval workflow, in the same
// transaction as the workflow checkpoint.
type LeaveRequest struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_requests_company_status"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_requests_employee_dates"`
	PolicyID   uuid.UUID `gorm:"type:uuid;not null"`
	ThreadID   string    `gorm:"type:varchar(160);index"`

	StartDate     time.Time       `gorm:"type:date;not null;index:idx_leave_requests_employee_dates"`
	EndDate       time.Time       `gorm:"type:date;not null;index:idx_leave_requests_employee_dates"`
	StartDayType  string          `gorm:"type:varchar(20);not null;default:'full'"`
	EndDayType    string          `gorm:"type:varchar(20);not null;default:'full'"`
	TotalDays     decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	Reason        string          `gorm:"type:text"`
	AttachmentURL *string         `gorm:"type:text"`

	Status          string     `gorm:"type:varchar(20);not null;default:'pending';index:idx_leave_requests_company_status"`
	ApproverID      *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt      *time.Time
	ApproverRemarks *string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}

// Policy is a tenant's leave type definition.
type Policy struct {
	ID                uuid.UUID           `gorm:"type:uuid;primaryKey"`
	CompanyID         uuid.UUID           `gorm:"type:uuid;not null;index"`
	Name              string              `gorm:"type:varchar(100);not null"`
	LeaveType         string              `gorm:"type:varchar(30);not null"`
	AnnualAllocation  decimal.Decimal     `gorm:"type:decimal(5,2);not null;default:0"`
	MinDays           decimal.Decimal     `gorm:"type:decimal(5,2);not null;default:0.5"`
	MaxDays           decimal.NullDecimal `gorm:"type:decimal(5,2)"`
	AdvanceNoticeDays int                 `gorm:"not null;default:0"`
	NoticeExempt      bool                `gorm:"not null;default:false"`
	ApplicableGender  *string             `gorm:"type:varchar(20)"`
	MinTenureMonths   int                 `gorm:"not null;default:0"`
	IsPaid            bool                `gorm:"not null;default:true"`
	IsActive          bool                `gorm:"not null;default:true"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (Policy) TableName() string {
	return "leave_policies"
}

type Holiday struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;index:idx_holidays_company_date"`
	Name       string    `gorm:"type:varchar(100);not null"`
	Date       time.Time `gorm:"type:date;not null;index:idx_holidays_company_date"`
	IsOptional bool      `gorm:"not null;default:false"`
	IsActive   bool      `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Holiday) TableName() string {
	return "holidays"
}
