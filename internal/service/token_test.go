package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nocodecorp/portal-api/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	tk := NewTokenizer("test-secret")

	signed, err := tk.Sign(&models.Session{Token: "sess-abc", ClientID: "cli_1"})
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	sid, clientID, err := tk.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "sess-abc", sid)
	assert.Equal(t, "cli_1", clientID)
}

func TestTokenWrongSecret(t *testing.T) {
	signed, err := NewTokenizer("secret-a").Sign(&models.Session{Token: "sess-abc", ClientID: "cli_1"})
	require.NoError(t, err)

	_, _, err = NewTokenizer("secret-b").Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenGarbage(t *testing.T) {
	_, _, err := NewTokenizer("test-secret").Parse("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
