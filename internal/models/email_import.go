package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/caseflowhq/mailroom/internal/enum"
	"github.com/caseflowhq/mailroom/internal/utils"
)

// EmailImport is the audit/dedup ledger. One row per (firm, message id);
// the composite unique index is the idempotency gate for the whole
// ingestion pipeline. Rows are inserted once and never updated.
type EmailImport struct {
	ID        string `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	FirmID    string `gorm:"column:firm_id;type:varchar(50);not null;uniqueIndex:idx_email_imports_firm_message" json:"firmId"`
	MessageID string `gorm:"column:message_id;type:varchar(255);not null;uniqueIndex:idx_email_imports_firm_message" json:"messageId"`
	AccountID string `gorm:"column:account_id;type:varchar(50);index;not null" json:"accountId"`
	EmailID   string `gorm:"column:email_id;type:varchar(50);index" json:"emailId"`

	Status          enum.ImportStatus `gorm:"column:status;type:varchar(50);index;not null" json:"status"`
	MatterID        string            `gorm:"column:matter_id;type:varchar(50);index" json:"matterId,omitempty"`
	MatchMethod     enum.MatchMethod  `gorm:"column:match_method;type:varchar(50)" json:"matchMethod,omitempty"`
	MatchConfidence int               `gorm:"column:match_confidence" json:"matchConfidence,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
}

func (EmailImport) TableName() string {
	return "email_imports"
}

func (i *EmailImport) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = utils.GenerateNanoIDWithPrefix("imp", 16)
	}
	i.CreatedAt = utils.Now()
	return nil
}
