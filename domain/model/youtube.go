package model

import "time"

// YouTubeChannel is the subset of channel data shown after connecting.
type YouTubeChannel struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	CustomURL   string    `json:"custom_url,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// YouTubeVideo is an uploaded video as returned by the Data API.
type YouTubeVideo struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	URL              string `json:"url"`
	PrivacyStatus    string `json:"privacy_status"`
	UploadStatus     string `json:"upload_status"`
	ProcessingStatus string `json:"processing_status"`
}

// WatchURL returns the public watch link of a video id.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}
