package model

import "time"

// YouTubeToken stores the YouTube OAuth credentials of a user (one row per user).
type YouTubeToken struct {
	ID           int64     `json:"id"`
	UserID       string    `json:"user_id"`
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	ExpiresAt    time.Time `json:"expires_at"`
	ChannelID    *string   `json:"channel_id,omitempty"`
	ChannelName  *string   `json:"channel_name,omitempty"`
	Scope        string    `json:"scope"`
	TokenType    string    `json:"token_type"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsValid reports whether the access token is still usable at the given instant.
func (t *YouTubeToken) IsValid(now time.Time) bool {
	return t != nil && t.ExpiresAt.After(now)
}

// SocialToken is the generic per (user, platform) connection record.
type SocialToken struct {
	ID           int64      `json:"id"`
	UserID       string     `json:"user_id"`
	Platform     string     `json:"platform"`
	AccessToken  string     `json:"-"`
	RefreshToken *string    `json:"-"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	Username     *string    `json:"username,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsValid reports whether the token has not expired. A token without expiry never expires.
func (t *SocialToken) IsValid(now time.Time) bool {
	if t == nil {
		return false
	}
	return t.ExpiresAt == nil || t.ExpiresAt.After(now)
}

// ConnectionStatus is the user facing view of one platform connection.
type ConnectionStatus struct {
	Platform    string     `json:"platform"`
	Connected   bool       `json:"connected"`
	Supported   bool       `json:"supported"`
	AccountName *string    `json:"channel_name,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// OAuthOutcome is the result of a consent flow as delivered to waiting clients.
type OAuthOutcome struct {
	SessionID   string `json:"session_id"`
	UserID      string `json:"-"`
	Success     bool   `json:"success"`
	ChannelName string `json:"channel_name,omitempty"`
	Error       string `json:"error,omitempty"`
	Timestamp   int64  `json:"timestamp"`
}
