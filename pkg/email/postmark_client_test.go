package email_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/email"
)

func validPostmarkConfig() email.Config {
	return email.Config{
		PostmarkServerToken:  "test-server-token",
		PostmarkAccountToken: "test-account-token",
		SenderEmail:          "sender@example.com",
		SupportEmail:         "support@example.com",
	}
}

func TestNewPostmarkClient_ValidConfig(t *testing.T) {
	t.Parallel()

	client, err := email.NewPostmarkClient(validPostmarkConfig())
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestNewPostmarkClient_InvalidConfig(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*email.Config)
		substr string
	}{
		{"empty server token", func(c *email.Config) { c.PostmarkServerToken = "" }, "PostmarkServerToken is required"},
		{"empty account token", func(c *email.Config) { c.PostmarkAccountToken = "" }, "PostmarkAccountToken is required"},
		{"missing sender email", func(c *email.Config) { c.SenderEmail = "" }, "SenderEmail is required"},
		{"invalid sender email", func(c *email.Config) { c.SenderEmail = "invalid-email" }, "SenderEmail must be a valid email address"},
		{"missing support email", func(c *email.Config) { c.SupportEmail = "" }, "SupportEmail is required"},
		{"invalid support email", func(c *email.Config) { c.SupportEmail = "@invalid.com" }, "SupportEmail must be a valid email address"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := validPostmarkConfig()
			tc.mutate(&cfg)

			client, err := email.NewPostmarkClient(cfg)
			require.Error(t, err)
			assert.Nil(t, client)
			assert.ErrorIs(t, err, email.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tc.substr)
		})
	}
}

func TestPostmarkClient_SendEmail_ValidationError(t *testing.T) {
	t.Parallel()

	client, err := email.NewPostmarkClient(validPostmarkConfig())
	require.NoError(t, err)

	// Params validation fails before any network call is made.
	err = client.SendEmail(context.Background(), email.SendEmailParams{
		SendTo:   "",
		Subject:  "Test",
		BodyHTML: "<p>body</p>",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, email.ErrInvalidParams)
}

func TestMustNewPostmarkClient_Panics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		email.MustNewPostmarkClient(email.Config{})
	})
}
