package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/caseflowhq/mailroom/internal/enum"
	"github.com/caseflowhq/mailroom/internal/utils"
)

// Matter is an ongoing case belonging to a firm. The schema is owned by the
// case-management subsystem; the ingestion pipeline only reads it.
type Matter struct {
	ID             string            `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	FirmID         string            `gorm:"column:firm_id;type:varchar(50);index;not null" json:"firmId"`
	ReferenceCode  string            `gorm:"column:reference_code;type:varchar(100);index" json:"referenceCode"`
	Title          string            `gorm:"column:title;type:varchar(500)" json:"title"`
	Status         enum.MatterStatus `gorm:"column:status;type:varchar(50);index;not null" json:"status"`
	AssignedUserID string            `gorm:"column:assigned_user_id;type:varchar(50);index" json:"assignedUserId"`

	CreatedAt time.Time      `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (Matter) TableName() string {
	return "matters"
}

func (m *Matter) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = utils.GenerateNanoIDWithPrefix("matter", 16)
	}
	return nil
}

// MatterContact links a correspondent email address to a matter; the sender
// history matching strategy reads these rows.
type MatterContact struct {
	ID           string    `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	FirmID       string    `gorm:"column:firm_id;type:varchar(50);index;not null" json:"firmId"`
	MatterID     string    `gorm:"column:matter_id;type:varchar(50);index;not null" json:"matterId"`
	EmailAddress string    `gorm:"column:email_address;type:varchar(255);index;not null" json:"emailAddress"`
	DisplayName  string    `gorm:"column:display_name;type:varchar(255)" json:"displayName"`
	CreatedAt    time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
}

func (MatterContact) TableName() string {
	return "matter_contacts"
}

func (c *MatterContact) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = utils.GenerateNanoIDWithPrefix("mcon", 16)
	}
	return nil
}
