// Package token encodes and decodes the signed, expiring claims behind the
// account-lifecycle workflows and API auth.
//
// All four purposes (account confirmation, password reset, email change and
// API bearer auth) share one codec: the signing, expiry and leeway logic
// lives here once, while each workflow keeps its own semantics (what must
// match) at the call site.
package token

import (
	"strconv"
	"time"

	"quill/internal/models"
	"quill/internal/observability"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Purpose tags a token with the workflow it belongs to. A token issued for
// one purpose never verifies under another.
type Purpose string

const (
	// PurposeConfirm is an account-confirmation token.
	PurposeConfirm Purpose = "confirm"
	// PurposeReset is a password-reset token.
	PurposeReset Purpose = "reset"
	// PurposeEmailChange is an email-change token carrying the proposed address.
	PurposeEmailChange Purpose = "email-change"
	// PurposeAPI is a bearer token for API auth.
	PurposeAPI Purpose = "api"
)

// Claims is the verified content of a token.
type Claims struct {
	UserID uint
	// NewEmail is set only on email-change tokens.
	NewEmail string
}

// Codec issues and verifies signed tokens with a symmetric key.
type Codec struct {
	secret []byte
	ttl    time.Duration
	leeway time.Duration
}

// NewCodec returns a Codec signing with the given secret. ttl is the default
// token lifetime; leeway is the clock-skew tolerance applied to expiry checks.
func NewCodec(secret string, ttl, leeway time.Duration) *Codec {
	return &Codec{secret: []byte(secret), ttl: ttl, leeway: leeway}
}

type issueOptions struct {
	ttl      time.Duration
	newEmail string
}

// IssueOption customizes a single issued token.
type IssueOption func(*issueOptions)

// WithTTL overrides the codec's default lifetime for this token.
func WithTTL(ttl time.Duration) IssueOption {
	return func(o *issueOptions) { o.ttl = ttl }
}

// WithNewEmail embeds the proposed address in an email-change token.
func WithNewEmail(email string) IssueOption {
	return func(o *issueOptions) { o.newEmail = email }
}

// Issue signs a token for the given purpose and subject user.
func (c *Codec) Issue(purpose Purpose, userID uint, opts ...IssueOption) (string, error) {
	o := issueOptions{ttl: c.ttl}
	for _, opt := range opts {
		opt(&o)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":     strconv.FormatUint(uint64(userID), 10),
		"purpose": string(purpose),
		"exp":     now.Add(o.ttl).Unix(),
		"iat":     now.Unix(),
		"nbf":     now.Unix(),
		"jti":     uuid.New().String(),
	}
	if o.newEmail != "" {
		claims["new_email"] = o.newEmail
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err == nil {
		observability.TokensIssued.WithLabelValues(string(purpose)).Inc()
	}
	return signed, err
}

// Verify checks signature, expiry (within leeway) and purpose, and returns
// the embedded claims. Every failure mode collapses to the single
// token-invalid outcome; Verify never panics across the API boundary.
func (c *Codec) Verify(tokenString string, purpose Purpose) (*Claims, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return c.secret, nil
	}, jwt.WithLeeway(c.leeway), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return nil, c.reject(purpose)
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, c.reject(purpose)
	}

	gotPurpose, ok := mapClaims["purpose"].(string)
	if !ok || gotPurpose != string(purpose) {
		return nil, c.reject(purpose)
	}

	subStr, ok := mapClaims["sub"].(string)
	if !ok {
		return nil, c.reject(purpose)
	}
	userID, err := strconv.ParseUint(subStr, 10, 32)
	if err != nil {
		return nil, c.reject(purpose)
	}

	claims := &Claims{UserID: uint(userID)}
	if newEmail, ok := mapClaims["new_email"].(string); ok {
		claims.NewEmail = newEmail
	}
	return claims, nil
}

func (c *Codec) reject(purpose Purpose) error {
	observability.TokensRejected.WithLabelValues(string(purpose)).Inc()
	return models.NewTokenInvalidError()
}
