package token

import (
	"testing"
	"time"

	"quill/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec() *Codec {
	return NewCodec("test-secret-which-is-long-enough", 30*time.Minute, 10*time.Second)
}

func TestIssueAndVerify(t *testing.T) {
	codec := newTestCodec()

	for _, purpose := range []Purpose{PurposeConfirm, PurposeReset, PurposeEmailChange, PurposeAPI} {
		t.Run(string(purpose), func(t *testing.T) {
			signed, err := codec.Issue(purpose, 42)
			require.NoError(t, err)
			require.NotEmpty(t, signed)

			claims, err := codec.Verify(signed, purpose)
			require.NoError(t, err)
			assert.Equal(t, uint(42), claims.UserID)
			assert.Empty(t, claims.NewEmail)
		})
	}
}

func TestVerifyPurposeMismatch(t *testing.T) {
	codec := newTestCodec()

	signed, err := codec.Issue(PurposeConfirm, 1)
	require.NoError(t, err)

	_, err = codec.Verify(signed, PurposeReset)
	require.Error(t, err)
	assert.True(t, models.IsCode(err, "TOKEN_INVALID"))
}

func TestVerifyTampered(t *testing.T) {
	codec := newTestCodec()

	signed, err := codec.Issue(PurposeAPI, 7)
	require.NoError(t, err)

	tampered := signed + "x"
	_, err = codec.Verify(tampered, PurposeAPI)
	assert.True(t, models.IsCode(err, "TOKEN_INVALID"))
}

func TestVerifyWrongSecret(t *testing.T) {
	codec := newTestCodec()
	other := NewCodec("a-completely-different-secret-key", 30*time.Minute, 0)

	signed, err := codec.Issue(PurposeConfirm, 1)
	require.NoError(t, err)

	_, err = other.Verify(signed, PurposeConfirm)
	assert.True(t, models.IsCode(err, "TOKEN_INVALID"))
}

func TestVerifyExpired(t *testing.T) {
	// No leeway: an already-expired token must be rejected.
	codec := NewCodec("test-secret-which-is-long-enough", 30*time.Minute, 0)

	signed, err := codec.Issue(PurposeReset, 5, WithTTL(-1*time.Minute))
	require.NoError(t, err)

	_, err = codec.Verify(signed, PurposeReset)
	assert.True(t, models.IsCode(err, "TOKEN_INVALID"))
}

func TestVerifyExpiredWithinLeeway(t *testing.T) {
	// Expired 5s ago but leeway is 30s: still accepted.
	codec := NewCodec("test-secret-which-is-long-enough", 30*time.Minute, 30*time.Second)

	signed, err := codec.Issue(PurposeConfirm, 5, WithTTL(-5*time.Second))
	require.NoError(t, err)

	claims, err := codec.Verify(signed, PurposeConfirm)
	require.NoError(t, err)
	assert.Equal(t, uint(5), claims.UserID)
}

func TestEmailChangeClaim(t *testing.T) {
	codec := newTestCodec()

	signed, err := codec.Issue(PurposeEmailChange, 9, WithNewEmail("new@example.com"))
	require.NoError(t, err)

	claims, err := codec.Verify(signed, PurposeEmailChange)
	require.NoError(t, err)
	assert.Equal(t, uint(9), claims.UserID)
	assert.Equal(t, "new@example.com", claims.NewEmail)
}

func TestVerifyGarbage(t *testing.T) {
	codec := newTestCodec()

	for _, input := range []string{"", "not-a-token", "a.b.c"} {
		_, err := codec.Verify(input, PurposeAPI)
		assert.True(t, models.IsCode(err, "TOKEN_INVALID"), "input %q", input)
	}
}
