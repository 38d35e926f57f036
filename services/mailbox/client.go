package mailbox

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/emersion/go-imap"
	imap_client "github.com/emersion/go-imap/client"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	mailroom_errors "github.com/caseflowhq/mailroom/errors"
	"github.com/caseflowhq/mailroom/interfaces"
	"github.com/caseflowhq/mailroom/internal/logger"
	"github.com/caseflowhq/mailroom/internal/models"
	"github.com/caseflowhq/mailroom/internal/tracing"
)

const (
	dialTimeout  = 30 * time.Second
	fetchTimeout = 60 * time.Second
)

// IMAPMailboxClient talks to the external mailbox over IMAP. Connections
// are opened per call; polls are minutes apart and holding idle IMAP
// sessions per account does not pay for itself.
type IMAPMailboxClient struct {
	log logger.Logger
}

func NewIMAPMailboxClient(log logger.Logger) interfaces.MailboxClient {
	return &IMAPMailboxClient{log: log}
}

// ListSince returns messages received after the given timestamp, parsed
// into provider-independent structs. Token/credential rejections surface as
// ErrAuthExpired so the worker can branch on them.
func (c *IMAPMailboxClient) ListSince(ctx context.Context, account *models.MailboxAccount, since time.Time) ([]*interfaces.InboundMessage, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IMAPMailboxClient.ListSince")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagAccount(span, account.ID)
	span.SetTag("since", since.Format(time.RFC3339))

	cl, err := c.connect(ctx, account)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	defer cl.Logout()

	if _, err := cl.Select(folderOrInbox(account), true); err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to select folder")
	}

	// SINCE has day granularity on the wire; the exact cut happens below on
	// the parsed receive timestamps.
	criteria := imap.NewSearchCriteria()
	criteria.Since = since.Truncate(24 * time.Hour)

	uids, err := cl.UidSearch(criteria)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to search messages")
	}
	if len(uids) == 0 {
		span.SetTag("result.count", 0)
		return nil, nil
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uids...)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{
		imap.FetchEnvelope,
		imap.FetchFlags,
		imap.FetchUid,
		imap.FetchInternalDate,
		section.FetchItem(),
	}

	messages := make(chan *imap.Message, len(uids))
	if err := cl.UidFetch(seqSet, items, messages); err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to fetch messages")
	}

	var result []*interfaces.InboundMessage
	for msg := range messages {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		parsed, err := parseMessage(msg, section)
		if err != nil {
			c.log.Warnf("[%s] Skipping unparsable message uid=%d: %v", account.ID, msg.Uid, err)
			continue
		}
		if parsed.ReceivedAt.Before(since) {
			continue
		}
		result = append(result, parsed)
	}

	span.SetTag("result.count", len(result))
	return result, nil
}

// FetchAttachment retrieves the raw bytes of one attachment. attachmentID
// is the zero-based index assigned by ListSince.
func (c *IMAPMailboxClient) FetchAttachment(ctx context.Context, account *models.MailboxAccount, messageID, attachmentID string) ([]byte, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IMAPMailboxClient.FetchAttachment")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagAccount(span, account.ID)
	span.SetTag("message.provider_id", messageID)
	span.SetTag("attachment.id", attachmentID)

	uid, err := strconv.ParseUint(messageID, 10, 32)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid provider message id %q", messageID)
	}
	index, err := strconv.Atoi(attachmentID)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid attachment id %q", attachmentID)
	}

	cl, err := c.connect(ctx, account)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	defer cl.Logout()

	if _, err := cl.Select(folderOrInbox(account), true); err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to select folder")
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uint32(uid))

	section := &imap.BodySectionName{Peek: true}
	messages := make(chan *imap.Message, 1)
	if err := cl.UidFetch(seqSet, []imap.FetchItem{imap.FetchUid, section.FetchItem()}, messages); err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to fetch message")
	}

	msg, ok := <-messages
	if !ok || msg == nil {
		err := fmt.Errorf("message uid %d not found", uid)
		tracing.TraceErr(span, err)
		return nil, err
	}

	content, err := extractAttachmentContent(msg, section, index)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	span.SetTag("attachment.size", len(content))
	return content, nil
}

// MarkRead flags the message as seen. Callers treat failures as
// best-effort.
func (c *IMAPMailboxClient) MarkRead(ctx context.Context, account *models.MailboxAccount, messageID string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IMAPMailboxClient.MarkRead")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagAccount(span, account.ID)
	span.SetTag("message.provider_id", messageID)

	uid, err := strconv.ParseUint(messageID, 10, 32)
	if err != nil {
		return errors.Wrapf(err, "invalid provider message id %q", messageID)
	}

	cl, err := c.connect(ctx, account)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	defer cl.Logout()

	if _, err := cl.Select(folderOrInbox(account), false); err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "failed to select folder")
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uint32(uid))

	item := imap.FormatFlagsOp(imap.AddFlags, true)
	flags := []interface{}{imap.SeenFlag}
	if err := cl.UidStore(seqSet, item, flags, nil); err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "failed to mark message read")
	}
	return nil
}

func (c *IMAPMailboxClient) connect(ctx context.Context, account *models.MailboxAccount) (*imap_client.Client, error) {
	addr := fmt.Sprintf("%s:%d", account.ImapServer, account.ImapPort)

	dialer := &net.Dialer{Timeout: dialTimeout}
	var cl *imap_client.Client
	var err error
	if account.ImapTLS {
		cl, err = imap_client.DialWithDialerTLS(dialer, addr, &tls.Config{ServerName: account.ImapServer})
	} else {
		cl, err = imap_client.DialWithDialer(dialer, addr)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to %s", addr)
	}
	cl.Timeout = fetchTimeout

	if err := cl.Login(account.ImapUsername, account.ImapPassword); err != nil {
		cl.Logout()
		if isAuthError(err) {
			return nil, errors.Wrap(mailroom_errors.ErrAuthExpired, err.Error())
		}
		return nil, errors.Wrap(err, "login failed")
	}

	return cl, nil
}

func folderOrInbox(account *models.MailboxAccount) string {
	if account.Folder != "" {
		return account.Folder
	}
	return "INBOX"
}
