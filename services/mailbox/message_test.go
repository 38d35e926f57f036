package mailbox

import (
	"strings"
	"testing"

	"github.com/jhillyerd/enmime"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envelopeFromRaw(t *testing.T, raw string) *enmime.Envelope {
	t.Helper()
	envelope, err := enmime.ReadEnvelope(strings.NewReader(raw))
	require.NoError(t, err)
	return envelope
}

func TestThreadID_ReplyUsesReferenceRoot(t *testing.T) {
	envelope := envelopeFromRaw(t, "Message-Id: <reply@example.com>\r\n"+
		"References: <root@example.com> <mid@example.com>\r\n"+
		"From: a@example.com\r\n\r\nbody")

	assert.Equal(t, "root@example.com", threadID(envelope, "reply@example.com"))
}

func TestThreadID_FallsBackToInReplyTo(t *testing.T) {
	envelope := envelopeFromRaw(t, "Message-Id: <reply@example.com>\r\n"+
		"In-Reply-To: <root@example.com>\r\n"+
		"From: a@example.com\r\n\r\nbody")

	assert.Equal(t, "root@example.com", threadID(envelope, "reply@example.com"))
}

func TestThreadID_FreshMessageStartsOwnThread(t *testing.T) {
	envelope := envelopeFromRaw(t, "Message-Id: <fresh@example.com>\r\n"+
		"From: a@example.com\r\n\r\nbody")

	assert.Equal(t, "fresh@example.com", threadID(envelope, "fresh@example.com"))
}

func TestParseFrom(t *testing.T) {
	name, address := parseFrom(`"Jane Counsel" <Jane.Counsel@Firm.Example>`)
	assert.Equal(t, "Jane Counsel", name)
	assert.Equal(t, "jane.counsel@firm.example", address)
}

func TestParseFrom_BareAddress(t *testing.T) {
	name, address := parseFrom("client@example.com")
	assert.Empty(t, name)
	assert.Equal(t, "client@example.com", address)
}

func TestAddressList(t *testing.T) {
	addrs := addressList("One <one@example.com>, two@example.com")
	assert.Equal(t, []string{"one@example.com", "two@example.com"}, addrs)
}

func TestAddressList_Empty(t *testing.T) {
	assert.Nil(t, addressList("  "))
}

func TestIsAuthError(t *testing.T) {
	assert.True(t, isAuthError(errors.New("LOGIN failed: [AUTHENTICATIONFAILED] Invalid credentials")))
	assert.True(t, isAuthError(errors.New("token has expired for user")))
	assert.False(t, isAuthError(errors.New("connection reset by peer")))
	assert.False(t, isAuthError(nil))
}
