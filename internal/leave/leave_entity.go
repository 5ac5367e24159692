package leave

import (
	"time"

	"github.com/google/uuid"
)

// Leave is a single leave request. Only Status, ApprovedBy, Remarks and
// DecidedAt change after creation, and only through a status transition.
type Leave struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeID string    `gorm:"type:varchar(64);not null;index:idx_leave_requests_employee_start"`

	LeaveType string    `gorm:"type:varchar(20);not null"`
	StartDate time.Time `gorm:"type:date;not null;index:idx_leave_requests_employee_start"`
	EndDate   time.Time `gorm:"type:date;not null;check:chk_leave_requests_date_range,start_date <= end_date"`
	Reason    string    `gorm:"type:text;not null"`

	Status      string    `gorm:"type:varchar(20);not null;default:'Pending';index:idx_leave_requests_status"`
	AppliedDate time.Time `gorm:"not null;index:idx_leave_requests_applied_date"`
	ApprovedBy  *string   `gorm:"type:varchar(64)"`
	Remarks     *string   `gorm:"type:text"`
	DecidedAt   *time.Time

	UpdatedAt time.Time
}

func (Leave) TableName() string {
	return "leave_requests"
}

// StatusChange is the only mutation a stored leave accepts.
type StatusChange struct {
	Status     string
	ApprovedBy *string
	Remarks    *string
	DecidedAt  time.Time
}
