package email

import (
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/skill_exchange_server/config"
)

type sent struct {
	addr string
	from string
	to   []string
	msg  string
}

func newTestService(t *testing.T) (*Service, *[]sent) {
	t.Helper()

	var outbox []sent
	s := NewService(&config.EmailConfig{
		SMTPHost: "smtp.example.com",
		SMTPPort: 587,
		From:     "noreply@skillx.dev",
	})
	s.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		outbox = append(outbox, sent{addr: addr, from: from, to: to, msg: string(msg)})
		return nil
	}
	return s, &outbox
}

func TestSendRequestCreated(t *testing.T) {
	s, outbox := newTestService(t)

	err := s.SendRequestCreated("tutor@example.com", "Tina", "Sam <script>", "Guitar", 45, "see you")
	require.NoError(t, err)

	require.Len(t, *outbox, 1)
	m := (*outbox)[0]
	assert.Equal(t, "smtp.example.com:587", m.addr)
	assert.Equal(t, "noreply@skillx.dev", m.from)
	assert.Equal(t, []string{"tutor@example.com"}, m.to)
	assert.Contains(t, m.msg, "Subject: New tutoring request for Guitar\r\n")
	assert.Contains(t, m.msg, "45-minute session")
	assert.Contains(t, m.msg, "Sam &lt;script&gt;")
	assert.Contains(t, m.msg, "see you")
}

func TestSendRequestAccepted(t *testing.T) {
	s, outbox := newTestService(t)

	require.NoError(t, s.SendRequestAccepted("sam@example.com", "Sam", "Tina", "Guitar", 30, ""))

	m := (*outbox)[0]
	assert.Contains(t, m.msg, "Subject: Tina accepted your tutoring request")
	assert.Contains(t, m.msg, "30 skillcoins")
	assert.NotContains(t, m.msg, "<blockquote")
}

func TestSendRequestRejected(t *testing.T) {
	s, outbox := newTestService(t)

	require.NoError(t, s.SendRequestRejected("sam@example.com", "Sam", "Tina", "Guitar", "fully booked"))

	m := (*outbox)[0]
	assert.Contains(t, m.msg, "declined your request")
	assert.Contains(t, m.msg, "fully booked")
}

func TestEnabled(t *testing.T) {
	assert.False(t, NewService(&config.EmailConfig{}).Enabled())
	assert.True(t, NewService(&config.EmailConfig{SMTPHost: "localhost"}).Enabled())
}
