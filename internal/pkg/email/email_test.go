package email

import (
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/workforce-portal/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type fakeSender struct {
	failures int
	calls    int
	sent     []*gomail.Message
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("smtp unavailable")
	}
	f.sent = append(f.sent, m...)
	return nil
}

func newTestService(t *testing.T, s sender) *emailServiceImpl {
	t.Helper()
	svc, err := NewEmailService(config.SMTPConfig{From: "noreply@example.com", FromName: "Portal"})
	require.NoError(t, err)
	impl := svc.(*emailServiceImpl)
	impl.dialer = s
	impl.backoff = time.Millisecond
	return impl
}

func TestRenderPasswordReset(t *testing.T) {
	svc := newTestService(t, nil)

	body, err := svc.renderPasswordReset(passwordResetEmailData{
		Name:      "Jane <Doe>",
		ResetLink: "http://localhost:5173/?token=abc&type=employee",
		ExpiresAt: "soon",
	})
	require.NoError(t, err)
	assert.Contains(t, body, "Hello Jane &lt;Doe&gt;")
	assert.Contains(t, body, "token=abc")
}

func TestSendPasswordReset_NotConfigured(t *testing.T) {
	svc := newTestService(t, nil)

	err := svc.SendPasswordReset("jane@example.com", "Jane", "http://localhost/?token=x", time.Now())
	assert.NoError(t, err)
}

func TestSendPasswordReset_RetriesThenSucceeds(t *testing.T) {
	fake := &fakeSender{failures: 2}
	svc := newTestService(t, fake)

	err := svc.SendPasswordReset("jane@example.com", "Jane", "http://localhost/?token=x", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 3, fake.calls)
	require.Len(t, fake.sent, 1)
	assert.Equal(t, []string{"jane@example.com"}, fake.sent[0].GetHeader("To"))
}

func TestSendPasswordReset_GivesUp(t *testing.T) {
	fake := &fakeSender{failures: maxRetries}
	svc := newTestService(t, fake)

	err := svc.SendPasswordReset("jane@example.com", "Jane", "http://localhost/?token=x", time.Now())
	assert.Error(t, err)
	assert.Equal(t, maxRetries, fake.calls)
}
