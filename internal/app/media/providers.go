package media

import (
	"net/url"
	"regexp"
	"strings"
)

// providerRule recognizes an embeddable video host by URL substring and
// extracts a provider-specific identifier with an ordered pattern list.
// A recognized host whose identifier cannot be extracted is reported as
// unsupported rather than guessed at.
type providerRule struct {
	name     string
	hosts    []string
	patterns []*regexp.Regexp
	embed    func(id, rawURL string) string
}

func (p *providerRule) Name() string { return p.name }

func (p *providerRule) Classify(rawURL string) (Descriptor, bool) {
	lower := strings.ToLower(rawURL)
	claimed := false
	for _, h := range p.hosts {
		if strings.Contains(lower, h) {
			claimed = true
			break
		}
	}
	if !claimed {
		return Descriptor{}, false
	}

	for _, re := range p.patterns {
		if m := re.FindStringSubmatch(rawURL); len(m) > 1 && m[1] != "" {
			return Descriptor{
				Kind:         KindEmbeddablePlayer,
				PlaybackURL:  p.embed(m[1], rawURL),
				ProviderHint: p.name,
			}, true
		}
	}
	return Descriptor{Kind: KindUnsupported, ProviderHint: p.name}, true
}

// YouTubeOptions control the normalized YouTube embed URL.
type YouTubeOptions struct {
	Autoplay       bool `mapstructure:"autoplay" default:"true"`
	ModestBranding bool `mapstructure:"modest_branding" default:"true"`
}

// NewYouTubeRule recognizes youtube.com, youtu.be and youtube-nocookie
// URLs in their common shapes (watch, short link, embed, live, shorts).
func NewYouTubeRule(opts YouTubeOptions) Rule {
	return &providerRule{
		name: "youtube",
		hosts: []string{
			"youtube.com",
			"youtu.be",
			"youtube-nocookie.com",
		},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{6,})`),
			regexp.MustCompile(`[?&]v=([A-Za-z0-9_-]{6,})`),
			regexp.MustCompile(`/embed/([A-Za-z0-9_-]{6,})`),
			regexp.MustCompile(`/live/([A-Za-z0-9_-]{6,})`),
			regexp.MustCompile(`/shorts/([A-Za-z0-9_-]{6,})`),
		},
		embed: func(id, _ string) string {
			params := url.Values{}
			if opts.Autoplay {
				params.Set("autoplay", "1")
			}
			if opts.ModestBranding {
				params.Set("modestbranding", "1")
				params.Set("rel", "0")
			}
			embedURL := "https://www.youtube.com/embed/" + id
			if encoded := params.Encode(); encoded != "" {
				embedURL += "?" + encoded
			}
			return embedURL
		},
	}
}

// VimeoOptions control the normalized Vimeo embed URL.
type VimeoOptions struct {
	Autoplay bool `mapstructure:"autoplay" default:"true"`
}

// NewVimeoRule recognizes vimeo.com and player.vimeo.com video URLs.
func NewVimeoRule(opts VimeoOptions) Rule {
	return &providerRule{
		name: "vimeo",
		hosts: []string{
			"vimeo.com",
		},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`player\.vimeo\.com/video/(\d+)`),
			regexp.MustCompile(`vimeo\.com/(\d+)`),
		},
		embed: func(id, _ string) string {
			params := url.Values{}
			if opts.Autoplay {
				params.Set("autoplay", "1")
			}
			params.Set("title", "0")
			params.Set("byline", "0")
			params.Set("portrait", "0")
			return "https://player.vimeo.com/video/" + id + "?" + params.Encode()
		},
	}
}

// NewFacebookRule recognizes facebook.com video and fb.watch URLs.
// Facebook embeds carry the original URL through the video plugin.
func NewFacebookRule() Rule {
	return &providerRule{
		name: "facebook",
		hosts: []string{
			"facebook.com",
			"fb.watch",
		},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`/videos/(\d+)`),
			regexp.MustCompile(`fb\.watch/([A-Za-z0-9_-]+)`),
			regexp.MustCompile(`[?&]v=(\d+)`),
		},
		embed: func(_, rawURL string) string {
			return "https://www.facebook.com/plugins/video.php?autoplay=1&href=" + url.QueryEscape(rawURL)
		},
	}
}
