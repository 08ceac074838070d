package site

import (
	"time"

	"github.com/google/uuid"
)

type Site struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"column:name;not null"`
	Code      string    `gorm:"column:code"`
	Address   string    `gorm:"column:address"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Site) TableName() string {
	return "sites"
}
