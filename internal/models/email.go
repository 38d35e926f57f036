package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/caseflowhq/mailroom/internal/enum"
	"github.com/caseflowhq/mailroom/internal/utils"
)

// Email is the durable, firm-scoped record of a parsed inbound message.
// Immutable after creation except MatterID/MatchMethod/MatchConfidence and
// Processed, which are set by the ingestion worker.
type Email struct {
	ID        string `gorm:"column:id;type:varchar(50);primaryKey"`
	FirmID    string `gorm:"column:firm_id;type:varchar(50);not null;uniqueIndex:idx_emails_firm_message"`
	AccountID string `gorm:"column:account_id;type:varchar(50);index;not null"`

	// MessageID is the internet message id, unique per firm
	MessageID string         `gorm:"column:message_id;type:varchar(255);not null;uniqueIndex:idx_emails_firm_message"`
	ThreadID  string         `gorm:"column:thread_id;type:varchar(255);index"`
	InReplyTo string         `gorm:"column:in_reply_to;type:varchar(255)"`
	To        pq.StringArray `gorm:"column:to_addresses;type:text[]"`
	Cc        pq.StringArray `gorm:"column:cc_addresses;type:text[]"`

	// Core email metadata
	Subject     string `gorm:"column:subject;type:varchar(1000)"`
	FromAddress string `gorm:"column:from_address;type:varchar(255);index"`
	FromName    string `gorm:"column:from_name;type:varchar(255)"`

	// Content
	BodyText      string `gorm:"column:body_text;type:text"`
	BodyHTML      string `gorm:"column:body_html;type:text"`
	HasAttachment bool   `gorm:"column:has_attachment;default:false"`

	// Time information
	ReceivedAt *time.Time `gorm:"column:received_at;type:timestamp;index"`

	// Matching outcome, carried for audit
	MatterID        string           `gorm:"column:matter_id;type:varchar(50);index"`
	MatchMethod     enum.MatchMethod `gorm:"column:match_method;type:varchar(50)"`
	MatchConfidence int              `gorm:"column:match_confidence"`
	Processed       bool             `gorm:"column:processed;default:false"`

	// Raw data
	RawHeaders JSONMap `gorm:"column:raw_headers;type:jsonb"`

	// Standard timestamps
	CreatedAt time.Time      `gorm:"column:created_at;type:timestamp;default:current_timestamp"`
	UpdatedAt time.Time      `gorm:"column:updated_at;type:timestamp;default:current_timestamp"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (Email) TableName() string {
	return "emails"
}

func (e *Email) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = utils.GenerateNanoIDWithPrefix("email", 24)
	}
	e.CreatedAt = utils.Now()
	return nil
}
