package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webpro/backend/internal/model"
)

type authFixture struct {
	codec *TokenCodec
	store *fakeStore
	now   time.Time
	auth  *RequestAuthenticator
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		codec: newTestCodec(t),
		store: &fakeStore{identity: &model.Identity{ID: "id-1", Username: "alice", Enabled: true}},
		now:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	f.auth = NewRequestAuthenticator(f.codec, f.store, func() time.Time { return f.now })
	return f
}

func (f *authFixture) bearer(t *testing.T, subject string) string {
	t.Helper()
	token, err := f.codec.Issue(subject, f.now)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestAuthenticate_Success(t *testing.T) {
	f := newAuthFixture(t)

	p, outcome := f.auth.Authenticate(context.Background(), f.bearer(t, "alice"))
	require.NotNil(t, p)
	assert.Equal(t, OutcomeAuthenticated, outcome)
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, []string{AuthorityUser}, p.Authorities)
}

func TestAuthenticate_Idempotent(t *testing.T) {
	f := newAuthFixture(t)
	header := f.bearer(t, "alice")

	first, o1 := f.auth.Authenticate(context.Background(), header)
	second, o2 := f.auth.Authenticate(context.Background(), header)
	assert.Equal(t, o1, o2)
	assert.Equal(t, first, second)
}

func TestAuthenticate_Unauthenticated(t *testing.T) {
	tests := []struct {
		name   string
		header func(t *testing.T, f *authFixture) string
		setup  func(f *authFixture)
		want   Outcome
	}{
		{
			name:   "no-header",
			header: func(t *testing.T, f *authFixture) string { return "" },
			want:   OutcomeNoToken,
		},
		{
			name:   "basic-scheme",
			header: func(t *testing.T, f *authFixture) string { return "Basic YWxpY2U6czNjcmV0" },
			want:   OutcomeNoToken,
		},
		{
			name:   "empty-bearer",
			header: func(t *testing.T, f *authFixture) string { return "Bearer   " },
			want:   OutcomeNoToken,
		},
		{
			name:   "malformed",
			header: func(t *testing.T, f *authFixture) string { return "Bearer not-a-token" },
			want:   OutcomeMalformed,
		},
		{
			name:   "tampered",
			header: func(t *testing.T, f *authFixture) string { return f.bearer(t, "alice") + "x" },
			want:   OutcomeSignatureMismatch,
		},
		{
			name:   "expired",
			header: func(t *testing.T, f *authFixture) string { return f.bearer(t, "alice") },
			setup:  func(f *authFixture) { f.now = f.now.Add(10 * time.Hour) },
			want:   OutcomeExpired,
		},
		{
			name:   "unknown-subject",
			header: func(t *testing.T, f *authFixture) string { return f.bearer(t, "alice") },
			setup:  func(f *authFixture) { f.store.identity = nil },
			want:   OutcomeUnknownSubject,
		},
		{
			name:   "store-error",
			header: func(t *testing.T, f *authFixture) string { return f.bearer(t, "alice") },
			setup:  func(f *authFixture) { f.store.findErr = errors.New("db down") },
			want:   OutcomeStoreError,
		},
		{
			name:   "subject-mismatch",
			header: func(t *testing.T, f *authFixture) string { return f.bearer(t, "ALICE") },
			want:   OutcomeSubjectMismatch,
		},
		{
			name:   "disabled",
			header: func(t *testing.T, f *authFixture) string { return f.bearer(t, "alice") },
			setup:  func(f *authFixture) { f.store.identity.Enabled = false },
			want:   OutcomeAccountInactive,
		},
		{
			name:   "locked",
			header: func(t *testing.T, f *authFixture) string { return f.bearer(t, "alice") },
			setup:  func(f *authFixture) { f.store.identity.Locked = true },
			want:   OutcomeAccountInactive,
		},
		{
			name:   "credentials-expired",
			header: func(t *testing.T, f *authFixture) string { return f.bearer(t, "alice") },
			setup:  func(f *authFixture) { f.store.identity.CredentialsExpired = true },
			want:   OutcomeAccountInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			header := tt.header(t, f)
			if tt.setup != nil {
				tt.setup(f)
			}

			p, outcome := f.auth.Authenticate(context.Background(), header)
			assert.Nil(t, p)
			assert.Equal(t, tt.want, outcome)
		})
	}
}

func TestAuthenticate_ExpiredOneSecondBefore(t *testing.T) {
	f := newAuthFixture(t)
	header := f.bearer(t, "alice")
	f.now = f.now.Add(10*time.Hour - time.Second)

	p, outcome := f.auth.Authenticate(context.Background(), header)
	require.NotNil(t, p)
	assert.Equal(t, OutcomeAuthenticated, outcome)
}

func TestBearerToken(t *testing.T) {
	token, ok := BearerToken("Bearer abc.def.ghi")
	assert.True(t, ok)
	assert.Equal(t, "abc.def.ghi", token)

	_, ok = BearerToken("bearer abc")
	assert.False(t, ok)
	_, ok = BearerToken(strings.TrimSpace("Bearer "))
	assert.False(t, ok)
}
