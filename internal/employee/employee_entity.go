package employee

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Employee struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CompanyID          uuid.UUID  `gorm:"type:uuid;not null;index"`
	FullName           string     `gorm:"type:varchar(150);not null"`
	Email              string     `gorm:"type:varchar(150)"`
	Gender             *string    `gorm:"type:varchar(20)"`
	DateOfJoining      time.Time  `gorm:"type:date;not null"`
	ReportingManagerID *uuid.UUID `gorm:"type:uuid;index"`
	IsActive           bool       `gorm:"not null;default:true"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          gorm.DeletedAt `gorm:"index"`
}

func (Employee) TableName() string {
	return "employees"
}

// ManagerID returns the reporting manager id, or "" when none is assigned.
func (e *Employee) ManagerID() string {
	if e.ReportingManagerID == nil {
		return ""
	}
	return e.ReportingManagerID.String()
}
