package utils

import (
	"testing"
	"time"

	"contract-admin/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken(t *testing.T) {
	token, err := CreateToken("admin", "secret", time.Hour)
	require.NoError(t, err)

	username, err := ParseToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "admin", username)

	_, err = ParseToken(token, "other")
	assert.Error(t, err)

	expired, err := CreateToken("admin", "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(expired, "secret")
	assert.Error(t, err)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "hunter2"))
	assert.False(t, CheckPassword(hash, "hunter3"))
	assert.False(t, CheckPassword("not-a-hash", "hunter2"))
}

func TestEmail(t *testing.T) {
	conf := config.EmailConfig{From: "panel@example.com", Subject: "alert", To: []string{"ops@example.com"}}

	e := NewEmail(conf, []byte("low balance"), EmailText)
	assert.Equal(t, []byte("low balance"), e.Text)
	assert.Nil(t, e.HTML)
	assert.Equal(t, []string{"ops@example.com"}, e.To)

	e = NewEmail(conf, []byte("<b>low</b>"), EmailHTML)
	assert.Equal(t, []byte("<b>low</b>"), e.HTML)

	assert.ErrorIs(t, SendEmail(conf, []byte("x"), EmailText), ErrEmailDisabled)
}
