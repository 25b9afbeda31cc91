package dto

import "time"

// Res is the generic error envelope used by middlewares.
type Res struct {
	ResponseCode    string `json:"responseCode"`
	ResponseMessage string `json:"responseMessage"`
}

// OAuthSetupRequest starts a consent flow. DemoMode binds the flow to the demo identity.
type OAuthSetupRequest struct {
	DemoMode bool `json:"demo_mode"`
}

// OAuthSetupResponse is returned by the setup phase.
type OAuthSetupResponse struct {
	AuthURL   string `json:"auth_url"`
	State     string `json:"state"`
	SessionID string `json:"session_id"`
	ExpiresIn int    `json:"expires_in"`
}

// OAuthCallbackParams are the query parameters of the provider redirect.
type OAuthCallbackParams struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
	SessionID        string
}

// OAuthStatusResponse reports the YouTube connection state of the caller.
type OAuthStatusResponse struct {
	Connected   bool       `json:"connected"`
	ChannelName *string    `json:"channel_name,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// OAuthWaitResponse is returned by the long-poll wait endpoint.
type OAuthWaitResponse struct {
	Status  string `json:"status"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
}
