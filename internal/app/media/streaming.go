package media

import "strings"

// streamingServiceHosts are platforms known not to expose direct file
// access. In-app decode of their URLs will fail, so the caller should
// short-circuit to opening them externally.
var streamingServiceHosts = []string{
	"open.spotify.com",
	"spotify.com",
	"soundcloud.com",
	"music.apple.com",
	"podcasts.apple.com",
	"podcasts.google.com",
	"music.youtube.com",
	"youtube.com",
	"youtu.be",
	"mixcloud.com",
	"audiomack.com",
	"deezer.com",
	"tidal.com",
	"pandora.com",
	"iheart.com",
	"tunein.com",
	"anchor.fm",
	"castbox.fm",
}

// IsStreamingService reports whether the URL belongs to a known
// streaming platform. Best effort: false negatives are possible and
// callers must still handle in-app decode failure gracefully.
func IsStreamingService(rawURL string) bool {
	lower := strings.ToLower(strings.TrimSpace(rawURL))
	if lower == "" {
		return false
	}
	for _, host := range streamingServiceHosts {
		if strings.Contains(lower, host) {
			return true
		}
	}
	return false
}
