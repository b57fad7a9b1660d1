// Package youtube extracts video IDs from the URL forms users paste.
package youtube

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidURL is returned when no video ID can be extracted.
var ErrInvalidURL = errors.New("not a recognized youtube url")

// Accepted forms: watch?v=ID, youtu.be/ID, embed/ID, shorts/ID, v/ID.
// Video IDs are 11 characters of [A-Za-z0-9_-].
var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:^|[?&])v=([A-Za-z0-9_-]{11})(?:[&#]|$)`),
	regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{11})(?:[?&#]|$)`),
	regexp.MustCompile(`youtube\.com/(?:embed|shorts|v)/([A-Za-z0-9_-]{11})(?:[?&#]|$)`),
}

// ExtractVideoID returns the 11-character video ID from a YouTube URL.
func ExtractVideoID(rawURL string) (string, error) {
	for _, re := range idPatterns {
		if m := re.FindStringSubmatch(rawURL); m != nil {
			return m[1], nil
		}
	}
	return "", ErrInvalidURL
}

// ThumbnailURL returns the stable high-quality thumbnail for a video ID.
func ThumbnailURL(videoID string) string {
	return fmt.Sprintf("https://img.youtube.com/vi/%s/hqdefault.jpg", videoID)
}
