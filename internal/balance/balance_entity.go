package balance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EntryReserve = "reserve"
	EntryCommit  = "commit"
	EntryRelease = "release"
)

// LeaveBalance is one employee's allowance for one policy and year.
// Available() must stay >= 0 after every mutation.
type LeaveBalance struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompanyID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uq_leave_balance_key"`
	EmployeeID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uq_leave_balance_key"`
	PolicyID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uq_leave_balance_key"`
	Year           int             `gorm:"not null;uniqueIndex:uq_leave_balance_key"`
	OpeningBalance decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`
	Credited       decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`
	Used           decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`
	Pending        decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (LeaveBalance) TableName() string {
	return "leave_balances"
}

func (b LeaveBalance) Available() decimal.Decimal {
	return b.OpeningBalance.Add(b.Credited).Sub(b.Used).Sub(b.Pending)
}

// Entry journals one ledger operation. The (request_id, kind) pair is unique,
// which makes each operation apply at most once per leave request.
type Entry struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BalanceID uuid.UUID       `gorm:"type:uuid;not null;index"`
	RequestID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uq_leave_balance_entry"`
	Kind      string          `gorm:"type:varchar(10);not null;uniqueIndex:uq_leave_balance_entry"`
	Days      decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	CreatedAt time.Time
}

func (Entry) TableName() string {
	return "leave_balance_entries"
}

// Key addresses one balance row.
type Key struct {
	CompanyID  string
	EmployeeID string
	PolicyID   string
	Year       int
}
