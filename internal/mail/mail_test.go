package mail

import (
	"bytes"
	"context"
	"reflect"
	"testing"

	"socialhub/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSender(t *testing.T) {
	assert.IsType(t, LogSender{}, NewSender(&config.Config{}))
	assert.IsType(t, &SMTPSender{}, NewSender(&config.Config{SMTPHost: "smtp.example.com", SMTPPort: 587}))
}

func TestLogSenderKeepsNothing(t *testing.T) {
	var s LogSender
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Send(context.Background(), Message{To: "a@example.com", Subject: "hi"}))
	}
	assert.Zero(t, reflect.TypeOf(s).NumField(), "the log sender holds no message state")
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	require.NoError(t, r.Send(context.Background(), Message{To: "a@example.com", Subject: "hi"}))
	sent := r.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "a@example.com", sent[0].To)

	sent[0].To = "changed@example.com"
	assert.Equal(t, "a@example.com", r.Sent()[0].To, "Sent returns a copy")
}

func TestVerificationMessage(t *testing.T) {
	msg := VerificationMessage("a@example.com", "<alice>", "https://social.example.com/", "tok en")
	assert.Equal(t, "a@example.com", msg.To)
	assert.Contains(t, msg.Text, "https://social.example.com/api/auth/verify?token=tok+en")
	assert.Contains(t, msg.HTML, "&lt;alice&gt;")
	assert.NotContains(t, msg.HTML, "<alice>")
}

func TestSMTPSenderBuild(t *testing.T) {
	s := NewSMTPSender("smtp.example.com", 587, "user", "pass", "noreply@example.com")
	m := s.Build(Message{To: "a@example.com", Subject: "Subject line", Text: "plain body", HTML: "<p>html</p>"})

	assert.Equal(t, []string{"noreply@example.com"}, m.GetHeader("From"))
	assert.Equal(t, []string{"a@example.com"}, m.GetHeader("To"))

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "plain body")
	assert.Contains(t, buf.String(), "text/html")
}

func TestSMTPSenderHonoursCancelledContext(t *testing.T) {
	s := NewSMTPSender("127.0.0.1", 1, "", "", "noreply@example.com")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Send(ctx, Message{To: "a@example.com"}), context.Canceled)
}
