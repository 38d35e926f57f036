package mailbox

import (
	"bytes"
	"io"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/jhillyerd/enmime"
	"github.com/pkg/errors"

	"github.com/caseflowhq/mailroom/interfaces"
	"github.com/caseflowhq/mailroom/internal/utils"
)

// parseMessage maps a fetched IMAP message into the provider-independent
// inbound struct. Messages without an internet message id are rejected here
// so nothing without a dedup key crosses the boundary.
func parseMessage(msg *imap.Message, section *imap.BodySectionName) (*interfaces.InboundMessage, error) {
	if msg == nil {
		return nil, errors.New("nil message")
	}

	literal := msg.GetBody(section)
	if literal == nil {
		return nil, errors.New("message body section missing")
	}
	raw, err := io.ReadAll(literal)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read message body")
	}

	envelope, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse mime envelope")
	}

	messageID := utils.NormalizeMessageID(envelope.GetHeader("Message-Id"))
	if messageID == "" {
		return nil, errors.New("message has no Message-Id header")
	}

	fromName, fromAddress := parseFrom(envelope.GetHeader("From"))
	if fromAddress == "" {
		return nil, errors.New("message has no parsable From address")
	}

	inbound := &interfaces.InboundMessage{
		ProviderID:  strconv.FormatUint(uint64(msg.Uid), 10),
		MessageID:   messageID,
		ThreadID:    threadID(envelope, messageID),
		FromAddress: fromAddress,
		FromName:    fromName,
		To:          addressList(envelope.GetHeader("To")),
		Cc:          addressList(envelope.GetHeader("Cc")),
		Subject:     envelope.GetHeader("Subject"),
		BodyText:    envelope.Text,
		BodyHTML:    envelope.HTML,
		ReceivedAt:  receivedAt(msg, envelope),
		Read:        hasSeenFlag(msg.Flags),
	}

	for i, att := range envelope.Attachments {
		inbound.Attachments = append(inbound.Attachments, interfaces.InboundAttachment{
			ID:          strconv.Itoa(i),
			FileName:    att.FileName,
			ContentType: att.ContentType,
			Size:        int64(len(att.Content)),
		})
	}
	inbound.HasAttachments = len(inbound.Attachments) > 0

	return inbound, nil
}

func extractAttachmentContent(msg *imap.Message, section *imap.BodySectionName, index int) ([]byte, error) {
	literal := msg.GetBody(section)
	if literal == nil {
		return nil, errors.New("message body section missing")
	}
	raw, err := io.ReadAll(literal)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read message body")
	}

	envelope, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse mime envelope")
	}

	if index < 0 || index >= len(envelope.Attachments) {
		return nil, errors.Errorf("attachment index %d out of range, message has %d", index, len(envelope.Attachments))
	}
	return envelope.Attachments[index].Content, nil
}

// threadID resolves the conversation id for a message. Replies carry their
// root in References (first entry) or In-Reply-To; a fresh message starts
// its own thread under its message id.
func threadID(envelope *enmime.Envelope, messageID string) string {
	if refs := strings.Fields(envelope.GetHeader("References")); len(refs) > 0 {
		if root := utils.NormalizeMessageID(refs[0]); root != "" {
			return root
		}
	}
	if inReplyTo := utils.NormalizeMessageID(envelope.GetHeader("In-Reply-To")); inReplyTo != "" {
		return inReplyTo
	}
	return messageID
}

func parseFrom(header string) (name, address string) {
	addr, err := mail.ParseAddress(header)
	if err != nil {
		return "", utils.NormalizeEmailAddress(header)
	}
	return addr.Name, utils.NormalizeEmailAddress(addr.Address)
}

func addressList(header string) []string {
	if strings.TrimSpace(header) == "" {
		return nil
	}
	addrs, err := mail.ParseAddressList(header)
	if err != nil {
		return []string{utils.NormalizeEmailAddress(header)}
	}
	result := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		result = append(result, utils.NormalizeEmailAddress(addr.Address))
	}
	return result
}

func receivedAt(msg *imap.Message, envelope *enmime.Envelope) time.Time {
	if date, err := mail.ParseDate(envelope.GetHeader("Date")); err == nil {
		return date.UTC()
	}
	if !msg.InternalDate.IsZero() {
		return msg.InternalDate.UTC()
	}
	return utils.Now()
}

func hasSeenFlag(flags []string) bool {
	for _, flag := range flags {
		if flag == imap.SeenFlag {
			return true
		}
	}
	return false
}

// isAuthError decides whether a login failure means the stored credentials
// are no longer valid, as opposed to a transient network or server problem.
func isAuthError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"authenticationfailed",
		"authentication failed",
		"invalid credentials",
		"login failed",
		"incorrect username or password",
		"token has expired",
		"authorizationfailed",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
