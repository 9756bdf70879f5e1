package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccountMessage(t *testing.T) {
	msg, err := NewAccountMessage("Doe", "John", "john.doe@example.com", "s3cret-Pass!")
	require.NoError(t, err)

	assert.Equal(t, []string{"john.doe@example.com"}, msg.To)
	assert.Equal(t, "Your new mailbox john.doe@example.com", msg.Subject)
	assert.Contains(t, msg.HTML, "John Doe")
	assert.Contains(t, msg.HTML, "john.doe@example.com")
	assert.Contains(t, msg.HTML, "s3cret-Pass!")
}

func TestPasswordResetMessage(t *testing.T) {
	msg, err := PasswordResetMessage("Doe", "John", "john.doe@example.com", "n3w-Pass?word")
	require.NoError(t, err)

	assert.Equal(t, []string{"john.doe@example.com"}, msg.To)
	assert.Contains(t, msg.HTML, "n3w-Pass?word")
	assert.Contains(t, msg.HTML, "has been reset")
}

func TestForgotPasswordMessage(t *testing.T) {
	msg, err := ForgotPasswordMessage("admin@example.com", "https://admin.example.com/reset-password", "abc123", "1h0m0s")
	require.NoError(t, err)

	assert.Equal(t, []string{"admin@example.com"}, msg.To)
	assert.Contains(t, msg.HTML, "https://admin.example.com/reset-password/abc123")
	assert.Contains(t, msg.HTML, "1h0m0s")
}
