package interfaces

import (
	"context"
	"time"

	"github.com/caseflowhq/mailroom/internal/models"
)

// InboundMessage is the provider-shaped message mapped into an explicit
// struct at the adapter boundary. It is never persisted verbatim.
type InboundMessage struct {
	ProviderID     string
	MessageID      string // internet message id, the dedup key
	ThreadID       string
	FromAddress    string
	FromName       string
	To             []string
	Cc             []string
	Subject        string
	BodyText       string
	BodyHTML       string
	ReceivedAt     time.Time
	HasAttachments bool
	Attachments    []InboundAttachment
	Read           bool
}

type InboundAttachment struct {
	ID          string
	FileName    string
	ContentType string
	Size        int64
}

// MailboxClient is the boundary to the external mailbox provider. Token
// expiry must surface as errors.ErrAuthExpired; everything else is wrapped
// as a transient error.
type MailboxClient interface {
	ListSince(ctx context.Context, account *models.MailboxAccount, since time.Time) ([]*InboundMessage, error)
	FetchAttachment(ctx context.Context, account *models.MailboxAccount, messageID, attachmentID string) ([]byte, error)
	MarkRead(ctx context.Context, account *models.MailboxAccount, messageID string) error
}
