package configuration

import (
	"fmt"
	"os"
	"strings"
)

// YouTubeConfig represents the YouTube OAuth client configuration
type YouTubeConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	StateSecret  string
	DemoUserID   string
	Scopes       []string
}

// GetYouTubeConfig returns YouTube configuration from JSON config with environment variable fallback
func GetYouTubeConfig() *YouTubeConfig {
	scheme := "http"
	if C.App.TLSEnabled {
		scheme = "https"
	}
	port := C.App.Port
	if port == 0 {
		port = 10001
	}
	defaultRedirect := fmt.Sprintf("%s://localhost:%d/functions/youtube-oauth-callback", scheme, port)
	return &YouTubeConfig{
		ClientID:     getConfigValue(C.YouTube.ClientID, "GOOGLE_CLIENT_ID", ""),
		ClientSecret: getConfigValue(C.YouTube.ClientSecret, "GOOGLE_CLIENT_SECRET", ""),
		RedirectURL:  getConfigValue(C.YouTube.RedirectURI, "YOUTUBE_REDIRECT_URL", defaultRedirect),
		StateSecret:  getConfigValue(C.YouTube.StateSecret, "OAUTH_STATE_SECRET", ""),
		DemoUserID:   getConfigValue(C.YouTube.DemoUserID, "DEMO_USER_ID", ""),
		Scopes:       C.YouTube.Scopes,
	}
}

// Missing lists the names of required settings that are empty.
func (c *YouTubeConfig) Missing() []string {
	var missing []string
	if c.ClientID == "" {
		missing = append(missing, "GOOGLE_CLIENT_ID")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "GOOGLE_CLIENT_SECRET")
	}
	if c.StateSecret == "" {
		missing = append(missing, "OAUTH_STATE_SECRET")
	}
	return missing
}

// Validate checks the settings needed to start a consent flow.
func (c *YouTubeConfig) Validate() error {
	if missing := c.Missing(); len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if len(c.ClientID) < 10 {
		return fmt.Errorf("GOOGLE_CLIENT_ID appears to be invalid")
	}
	if !hasHTTPS(c.RedirectURL) {
		return fmt.Errorf("redirect URI must use https: %s", c.RedirectURL)
	}
	return nil
}

// getConfigValue gets value from config first, then environment variable, then default
func getConfigValue(configValue, envKey, defaultValue string) string {
	// Environment variable takes precedence when provided
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	if configValue != "" && !strings.HasPrefix(configValue, "YOUR_") {
		return configValue
	}
	return defaultValue
}

func hasHTTPS(u string) bool { return strings.HasPrefix(u, "https://") }
