package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidSignature covers every verification failure other than expiry:
	// bad signature, wrong algorithm, malformed token, unknown role.
	ErrInvalidSignature = errors.New("invalid token")
	// ErrExpired is returned for a well-signed token past its exp claim.
	ErrExpired = errors.New("token expired")
)

// Identity is what a verified credential asserts.
type Identity struct {
	SubjectID uuid.UUID
	Role      Role
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type claims struct {
	jwt.RegisteredClaims
	Role  Role   `json:"role"`
	Email string `json:"email"`
}

// TokenCodec issues and verifies HS256 credentials.
type TokenCodec struct {
	key    []byte
	issuer string
	now    func() time.Time
}

func NewTokenCodec(secret []byte, issuer string) *TokenCodec {
	return &TokenCodec{key: secret, issuer: issuer, now: time.Now}
}

// Issue signs a credential valid for ttl. Every token carries a random jti,
// so two issuances for the same subject are not linkable without the key.
func (tc *TokenCodec) Issue(subjectID uuid.UUID, role Role, email string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("token ttl must be positive")
	}
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", role)
	}

	now := tc.now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subjectID.String(),
			Issuer:    tc.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role:  role,
		Email: email,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(tc.key)
}

// Verify checks signature, algorithm, issuer and expiry. It performs no I/O.
func (tc *TokenCodec) Verify(token string) (*Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(tc.now),
	}
	if tc.issuer != "" {
		opts = append(opts, jwt.WithIssuer(tc.issuer))
	}

	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (interface{}, error) {
		return tc.key, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalidSignature
	}

	sub, err := uuid.Parse(c.Subject)
	if err != nil || !c.Role.Valid() {
		return nil, ErrInvalidSignature
	}

	id := &Identity{SubjectID: sub, Role: c.Role, Email: c.Email}
	if c.IssuedAt != nil {
		id.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		id.ExpiresAt = c.ExpiresAt.Time
	}
	return id, nil
}
