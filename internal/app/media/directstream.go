package media

import (
	"net/url"
	"path"
	"strings"
)

// defaultStreamExtensions are the container extensions handed straight
// to a native decoder.
var defaultStreamExtensions = []string{
	".m3u8", ".mpd",
	".mp4", ".m4v", ".webm", ".mov",
	".mp3", ".m4a", ".aac", ".ogg", ".oga", ".opus", ".wav", ".flac",
}

// pathHints are path fragments that strongly indicate a direct stream
// even without a recognized extension.
var pathHints = []string{
	"/hls/",
	"/dash/",
}

// directStreamRule flags URLs that point at a playable container
// directly. It must run after the provider rules so embeddable hosts
// keep precedence.
type directStreamRule struct {
	extensions []string
}

// NewDirectStreamRule creates the direct-stream rule. A nil extension
// list uses the built-in set.
func NewDirectStreamRule(extensions []string) Rule {
	if len(extensions) == 0 {
		extensions = defaultStreamExtensions
	}
	return &directStreamRule{extensions: extensions}
}

func (d *directStreamRule) Name() string { return "direct_stream" }

func (d *directStreamRule) Classify(rawURL string) (Descriptor, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Descriptor{}, false
	}

	ext := strings.ToLower(path.Ext(u.Path))
	for _, known := range d.extensions {
		if ext == known {
			return d.descriptor(rawURL), true
		}
	}

	lowerPath := strings.ToLower(u.Path)
	for _, hint := range pathHints {
		if strings.Contains(lowerPath, hint) {
			return d.descriptor(rawURL), true
		}
	}
	return Descriptor{}, false
}

func (d *directStreamRule) descriptor(rawURL string) Descriptor {
	return Descriptor{
		Kind:         KindDirectStream,
		PlaybackURL:  rawURL,
		ProviderHint: d.Name(),
	}
}
