package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerGenerateAndParse(t *testing.T) {
	signer := NewSignedURLSigner("test-secret", 15*time.Minute)

	token, expiresAt, err := signer.Generate("req-123", "certificates/req-123.pdf")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.True(t, expiresAt.After(time.Now()))

	requestID, relPath, parsedExpiry, err := signer.Parse(token, false)
	require.NoError(t, err)
	require.Equal(t, "req-123", requestID)
	require.Equal(t, "certificates/req-123.pdf", relPath)
	require.WithinDuration(t, expiresAt, parsedExpiry, time.Second)
}

func TestSignedURLSignerExpired(t *testing.T) {
	signer := NewSignedURLSigner("test-secret", -1*time.Minute)
	signer.ttl = -1 * time.Minute

	token, _, err := signer.Generate("req-123", "certificates/req-123.pdf")
	require.NoError(t, err)

	_, _, _, err = signer.Parse(token, false)
	require.Error(t, err)
	require.Contains(t, err.Error(), "expired")

	_, relPath, _, err := signer.Parse(token, true)
	require.NoError(t, err)
	require.Equal(t, "certificates/req-123.pdf", relPath)
}

func TestSignedURLSignerTamperedSignature(t *testing.T) {
	signer := NewSignedURLSigner("test-secret", 15*time.Minute)

	token, _, err := signer.Generate("req-123", "certificates/req-123.pdf")
	require.NoError(t, err)

	other := NewSignedURLSigner("other-secret", 15*time.Minute)
	_, _, _, err = other.Parse(token, false)
	require.Error(t, err)
	require.Contains(t, err.Error(), "signature")
}
