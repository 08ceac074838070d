package profile

import (
	"time"

	"github.com/google/uuid"
)

// Profile is owned by the HR system; this service only reads the document expiry fields.
type Profile struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primaryKey"`
	FullName             string     `gorm:"column:full_name"`
	EmployeeID           string     `gorm:"column:employee_id"`
	IsForeignEmployee    bool       `gorm:"column:is_foreign_employee"`
	WorkPermitExpiryDate *time.Time `gorm:"column:work_permit_expiry_date;type:date"`
	PassportExpiryDate   *time.Time `gorm:"column:passport_expiry_date;type:date"`
}

func (Profile) TableName() string {
	return "profiles"
}
