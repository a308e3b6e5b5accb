package model

import "time"

type AuthRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type RegisterResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`
}

type AuthConfigResponse struct {
	AllowSignup bool `json:"allowSignup"`
}

type AuthMeResponse struct {
	Username    string   `json:"username"`
	Authorities []string `json:"authorities"`
}

// Identity is a stored account. PasswordHash is never the plaintext.
type Identity struct {
	ID                 string
	Username           string
	PasswordHash       string
	Enabled            bool
	Locked             bool
	CredentialsExpired bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Active reports whether the account may authenticate.
func (i *Identity) Active() bool {
	return i.Enabled && !i.Locked && !i.CredentialsExpired
}

// Principal is the authenticated caller attached to a single request.
type Principal struct {
	Username    string
	Authorities []string
}

func (p *Principal) HasAuthority(authority string) bool {
	for _, a := range p.Authorities {
		if a == authority {
			return true
		}
	}
	return false
}
