package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenMalformed         = errors.New("token malformed")
	ErrTokenSignatureMismatch = errors.New("token signature mismatch")
)

// TokenClaims is the decoded payload of a bearer token.
type TokenClaims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenCodec issues and decodes HS256 bearer tokens. The secret is fixed
// for the codec's lifetime, so a codec is safe for concurrent use.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	parser *jwt.Parser
}

func NewTokenCodec(secret []byte, ttl time.Duration) (*TokenCodec, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: JWT_SECRET is required", ErrMisconfigured)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("%w: token ttl must be positive", ErrMisconfigured)
	}

	key := make([]byte, len(secret))
	copy(key, secret)

	return &TokenCodec{
		secret: key,
		ttl:    ttl,
		// Expiry is the caller's decision, so claim validation is off here.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
			jwt.WithStrictDecoding(),
		),
	}, nil
}

func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a token for subject valid from now until now+ttl. Claim
// timestamps carry whole seconds, so now is truncated first.
func (c *TokenCodec) Issue(subject string, now time.Time) (string, error) {
	now = now.Truncate(time.Second)
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature of a serialized token and returns its claims.
// It does not check expiry; see IsExpired.
func (c *TokenCodec) Decode(tokenStr string) (*TokenClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := c.parser.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenSignatureMismatch
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, c.classify(tokenStr, err)
	}

	if claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing sub or exp claim", ErrTokenMalformed)
	}

	decoded := &TokenClaims{
		Subject:   claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		decoded.IssuedAt = claims.IssuedAt.Time
	}
	return decoded, nil
}

// IsExpired reports whether claims are no longer valid at now.
func (c *TokenCodec) IsExpired(claims *TokenClaims, now time.Time) bool {
	return !claims.ExpiresAt.After(now)
}

// classify maps parser errors onto the two decode failures callers see.
// A token whose header and claims parse but whose signature segment does
// not decode counts as a signature mismatch, not as malformed. That
// includes a signature carrying extra dots, which the parser reports as
// a segment count error.
func (c *TokenCodec) classify(tokenStr string, err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, ErrTokenSignatureMismatch):
		return fmt.Errorf("%w: %v", ErrTokenSignatureMismatch, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		parts := strings.Split(tokenStr, ".")
		if len(parts) >= 3 {
			unsigned := parts[0] + "." + parts[1] + "."
			if _, _, uerr := c.parser.ParseUnverified(unsigned, &jwt.RegisteredClaims{}); uerr == nil {
				return fmt.Errorf("%w: %v", ErrTokenSignatureMismatch, err)
			}
		}
	}
	return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
}
