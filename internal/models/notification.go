package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/caseflowhq/mailroom/internal/utils"
)

type Notification struct {
	ID       string     `gorm:"column:id;type:varchar(50);primaryKey"`
	FirmID   string     `gorm:"column:firm_id;type:varchar(50);index;not null"`
	UserID   string     `gorm:"column:user_id;type:varchar(50);index;not null"`
	MatterID string     `gorm:"column:matter_id;type:varchar(50);index"`
	Kind     string     `gorm:"column:kind;type:varchar(100);not null"`
	Message  string     `gorm:"column:message;type:varchar(1000)"`
	ReadAt   *time.Time `gorm:"column:read_at;type:timestamp"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = utils.GenerateNanoIDWithPrefix("notif", 16)
	}
	n.CreatedAt = utils.Now()
	return nil
}
