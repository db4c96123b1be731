package types

import "time"

// Credentials are the per-user provider keys the client attaches to
// research and chat requests.
type Credentials struct {
	GoogleAPIKey     string `json:"googleApiKey" yaml:"googleApiKey"`
	CseID            string `json:"cseId" yaml:"cseId"`
	OpenRouterAPIKey string `json:"openRouterApiKey" yaml:"openRouterApiKey"`
	OpenRouterModel  string `json:"openRouterModel" yaml:"openRouterModel"`
}

// User is a registered account. PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"id" yaml:"id"`
	Username     string    `json:"username" yaml:"username"`
	PasswordHash string    `json:"-" yaml:"-"`
	CreatedAt    time.Time `json:"createdAt" yaml:"createdAt"`
	Credentials  `yaml:",inline"`
}

// Session maps an opaque bearer token to a user until ExpiresAt
type Session struct {
	// ID names the session in logs so the token itself is never written out
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session is no longer valid at now
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// AuthRequest is the body of signup and login
type AuthRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is returned by signup and login
type AuthResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	User    User   `json:"user"`
}

// SettingsRequest is the body of POST /user/settings
type SettingsRequest struct {
	UserID string `json:"userId,omitempty"`
	Credentials
}

// SettingsResponse acknowledges a settings update
type SettingsResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
