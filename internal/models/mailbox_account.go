package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/caseflowhq/mailroom/internal/enum"
	"github.com/caseflowhq/mailroom/internal/utils"
)

// MailboxAccount is one external mailbox connected for a firm and owner.
// The ingestion worker mutates only Status, ErrorMessage and LastSyncAt;
// everything else belongs to the connection-setup flow.
type MailboxAccount struct {
	ID           string `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	FirmID       string `gorm:"column:firm_id;type:varchar(50);index;not null" json:"firmId"`
	UserID       string `gorm:"column:user_id;type:varchar(50);index;not null" json:"userId"`
	EmailAddress string `gorm:"column:email_address;type:varchar(255);index" json:"emailAddress"`
	DisplayName  string `gorm:"column:display_name;type:varchar(255)" json:"displayName"`

	// IMAP Configuration
	ImapServer   string `gorm:"column:imap_server;type:varchar(255);not null" json:"imapServer"`
	ImapPort     int    `gorm:"column:imap_port;not null" json:"imapPort"`
	ImapUsername string `gorm:"column:imap_username;type:varchar(255);not null" json:"imapUsername"`
	ImapPassword string `gorm:"column:imap_password;type:varchar(255);not null" json:"-"`
	ImapTLS      bool   `gorm:"column:imap_tls;not null;default:true" json:"imapTls"`
	Folder       string `gorm:"column:folder;type:varchar(100);not null;default:INBOX" json:"folder"`

	// Status Information
	Status       enum.AccountStatus `gorm:"column:status;type:varchar(50);index;not null" json:"status"`
	LastSyncAt   *time.Time         `gorm:"column:last_sync_at;type:timestamp" json:"lastSyncAt"`
	ErrorMessage string             `gorm:"column:error_message;type:text" json:"errorMessage"`

	// Standard timestamps
	CreatedAt time.Time      `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (MailboxAccount) TableName() string {
	return "mailbox_accounts"
}

func (m *MailboxAccount) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = utils.GenerateNanoIDWithPrefix("acct", 16)
	}
	return nil
}
