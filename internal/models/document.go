package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/caseflowhq/mailroom/internal/utils"
)

// Document is created for each stored attachment of a matched email and is
// owned by the matter. Each document triggers one analysis pipeline run.
type Document struct {
	ID          string `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	FirmID      string `gorm:"column:firm_id;type:varchar(50);index;not null" json:"firmId"`
	MatterID    string `gorm:"column:matter_id;type:varchar(50);index;not null" json:"matterId"`
	EmailID     string `gorm:"column:email_id;type:varchar(50);index" json:"emailId"`
	FileName    string `gorm:"column:file_name;type:varchar(500)" json:"fileName"`
	ContentType string `gorm:"column:content_type;type:varchar(255)" json:"contentType"`
	Size        int64  `gorm:"column:size" json:"size"`
	StorageKey  string `gorm:"column:storage_key;type:varchar(500);not null" json:"storageKey"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
}

func (Document) TableName() string {
	return "documents"
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = utils.GenerateNanoIDWithPrefix("doc", 16)
	}
	return nil
}
