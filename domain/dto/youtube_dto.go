package dto

// YouTubeVideoUpload is the metadata of a video insert.
type YouTubeVideoUpload struct {
	Title         string
	Description   string
	Tags          []string
	CategoryID    string
	PrivacyStatus string
}
