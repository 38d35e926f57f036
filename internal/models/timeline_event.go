package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/caseflowhq/mailroom/internal/utils"
)

// TimelineEvent is an append-only activity row on a matter, rendered by the
// case-management UI.
type TimelineEvent struct {
	ID        string  `gorm:"column:id;type:varchar(50);primaryKey"`
	FirmID    string  `gorm:"column:firm_id;type:varchar(50);index;not null"`
	MatterID  string  `gorm:"column:matter_id;type:varchar(50);index;not null"`
	EventType string  `gorm:"column:event_type;type:varchar(100);not null"`
	Summary   string  `gorm:"column:summary;type:varchar(1000)"`
	Payload   JSONMap `gorm:"column:payload;type:jsonb"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp"`
}

func (TimelineEvent) TableName() string {
	return "timeline_events"
}

func (e *TimelineEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = utils.GenerateNanoIDWithPrefix("tle", 16)
	}
	e.CreatedAt = utils.Now()
	return nil
}
