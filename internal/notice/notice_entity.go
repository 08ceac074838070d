package notice

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	PriorityHigh   = "high"
	PriorityNormal = "normal"

	StatusActive = "active"
)

type Notice struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title       string         `gorm:"column:title;not null"`
	Content     string         `gorm:"column:content;type:text;not null"`
	Priority    string         `gorm:"column:priority;type:varchar(16);not null"`
	Status      string         `gorm:"column:status;type:varchar(16);not null;default:active"`
	TargetRoles pq.StringArray `gorm:"column:target_roles;type:text[]"`
	StartDate   time.Time      `gorm:"column:start_date;type:timestamptz;not null"`
	EndDate     time.Time      `gorm:"column:end_date;type:timestamptz;not null"`
	CreatedAt   time.Time      `gorm:"column:created_at"`
}

func (Notice) TableName() string {
	return "notices"
}
