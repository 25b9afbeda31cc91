package model

import "strings"

// Social platforms.
const (
	PlatformYouTube   = "youtube"
	PlatformTikTok    = "tiktok"
	PlatformInstagram = "instagram"
	PlatformFacebook  = "facebook"
	PlatformX         = "x"
	PlatformLinkedIn  = "linkedin"
	PlatformThreads   = "threads"
)

// Platform describes a connectable social platform.
type Platform struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	// Supported is true when an OAuth integration exists.
	Supported bool `json:"supported"`
	// Generation is true when ideas may target this platform.
	Generation bool `json:"generation"`
}

var platforms = []Platform{
	{Name: PlatformYouTube, DisplayName: "YouTube", Supported: true, Generation: true},
	{Name: PlatformTikTok, DisplayName: "TikTok", Generation: true},
	{Name: PlatformInstagram, DisplayName: "Instagram", Generation: true},
	{Name: PlatformFacebook, DisplayName: "Facebook"},
	{Name: PlatformX, DisplayName: "X"},
	{Name: PlatformLinkedIn, DisplayName: "LinkedIn"},
	{Name: PlatformThreads, DisplayName: "Threads"},
}

// Platforms returns every known platform in display order.
func Platforms() []Platform {
	out := make([]Platform, len(platforms))
	copy(out, platforms)
	return out
}

// LookupPlatform finds a platform by name, case-insensitively.
func LookupPlatform(name string) (Platform, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range platforms {
		if p.Name == name {
			return p, true
		}
	}
	return Platform{}, false
}

// TierAllowsPlatform reports whether a subscription tier may target a generation platform.
func TierAllowsPlatform(tier, platform string) bool {
	p, ok := LookupPlatform(platform)
	if !ok || !p.Generation {
		return false
	}
	switch tier {
	case TierPremium, TierPro:
		return true
	default:
		return p.Name == PlatformYouTube
	}
}
