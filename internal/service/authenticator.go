package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/webpro/backend/internal/db"
	"github.com/webpro/backend/internal/model"
)

const bearerPrefix = "Bearer "

// AuthorityUser is the single authority granted to every authenticated caller.
const AuthorityUser = "USER"

// Outcome says why a request ended up authenticated or not. It is for
// logs and metrics only; clients never see it.
type Outcome string

const (
	OutcomeAuthenticated     Outcome = "authenticated"
	OutcomeNoToken           Outcome = "no_token"
	OutcomeMalformed         Outcome = "malformed"
	OutcomeSignatureMismatch Outcome = "signature_mismatch"
	OutcomeExpired           Outcome = "expired"
	OutcomeUnknownSubject    Outcome = "unknown_subject"
	OutcomeStoreError        Outcome = "store_error"
	OutcomeSubjectMismatch   Outcome = "subject_mismatch"
	OutcomeAccountInactive   Outcome = "account_inactive"
)

// RequestAuthenticator turns an Authorization header into a Principal.
// It never fails: every problem yields a nil principal, and rejecting
// the request is left to the authorization gate.
type RequestAuthenticator struct {
	tokens      *TokenCodec
	store       IdentityStore
	authorities []string
	now         func() time.Time
}

func NewRequestAuthenticator(tokens *TokenCodec, store IdentityStore, now func() time.Time) *RequestAuthenticator {
	if now == nil {
		now = time.Now
	}
	return &RequestAuthenticator{
		tokens:      tokens,
		store:       store,
		authorities: []string{AuthorityUser},
		now:         now,
	}
}

func (a *RequestAuthenticator) Authenticate(ctx context.Context, authorization string) (*model.Principal, Outcome) {
	token, ok := BearerToken(authorization)
	if !ok {
		return nil, OutcomeNoToken
	}

	claims, err := a.tokens.Decode(token)
	if err != nil {
		if errors.Is(err, ErrTokenSignatureMismatch) {
			return nil, OutcomeSignatureMismatch
		}
		return nil, OutcomeMalformed
	}

	if a.tokens.IsExpired(claims, a.now()) {
		return nil, OutcomeExpired
	}

	identity, err := a.store.FindByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, OutcomeUnknownSubject
		}
		return nil, OutcomeStoreError
	}

	if identity.Username != claims.Subject {
		return nil, OutcomeSubjectMismatch
	}

	if !identity.Active() {
		return nil, OutcomeAccountInactive
	}

	authorities := make([]string, len(a.authorities))
	copy(authorities, a.authorities)

	return &model.Principal{
		Username:    identity.Username,
		Authorities: authorities,
	}, OutcomeAuthenticated
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if token == "" {
		return "", false
	}
	return token, true
}
