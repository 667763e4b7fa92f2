package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerifyDeviceToken(t *testing.T) {
	svc := NewJWTService("test-secret")

	token, expiresAt, err := svc.IssueDeviceToken("tablet-07", time.Hour)
	require.NoError(t, err)
	assert.InDelta(t, time.Now().Add(time.Hour).Unix(), expiresAt, 5)

	deviceID, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "tablet-07", deviceID)
}

func TestVerify_Rejections(t *testing.T) {
	svc := NewJWTService("test-secret")

	other, _, err := NewJWTService("other-secret").IssueDeviceToken("tablet-07", time.Hour)
	require.NoError(t, err)
	_, err = svc.Verify(other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	fallback, _, err := svc.IssueDeviceToken("tablet-07", -time.Hour)
	require.NoError(t, err)
	// a negative ttl falls back to the default, so the token is still valid
	_, err = svc.Verify(fallback)
	assert.NoError(t, err)

	token, _, err := svc.IssueDeviceToken("tablet-07", time.Hour)
	require.NoError(t, err)
	svc.RevokeToken(token)
	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	_, _, err = svc.IssueDeviceToken("", time.Hour)
	assert.Error(t, err)
}

func TestVerify_RejectsOtherTokenTypes(t *testing.T) {
	svc := NewJWTService("test-secret")

	_, token, err := svc.JWTAuth().Encode(map[string]interface{}{
		"sub":  "user-1",
		"type": "access",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
