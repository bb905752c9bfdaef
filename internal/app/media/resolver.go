// Package media classifies raw media references into playable
// descriptors. Classification is pure: no I/O, no state, identical
// input always yields an identical descriptor.
package media

import (
	"strings"

	"github.com/flockcast/engage/internal/domain/session"
)

// Kind describes how a URL should be played back.
type Kind int

const (
	KindUnsupported      Kind = iota // Cannot classify; caller should offer external open
	KindEmbeddablePlayer             // Third-party host playable via an embedded frame
	KindDirectStream                 // Direct audio/video container for a native decoder
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindEmbeddablePlayer:
		return "embeddable_player"
	case KindDirectStream:
		return "direct_stream"
	case KindUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Quality selects among a session's media variants.
type Quality string

const (
	QualityAuto Quality = "auto" // Base media reference
	QualityHD   Quality = "hd"
	QualitySD   Quality = "sd"
)

// Descriptor is the resolver output. It is never persisted.
type Descriptor struct {
	Kind         Kind
	PlaybackURL  string
	ProviderHint string // Which rule matched (e.g. "youtube")
	QualityUsed  Quality
}

// Rule classifies a URL. Rules are tried in order; the first rule that
// claims the URL decides the outcome, so new providers can be added
// without touching call sites.
type Rule interface {
	Name() string
	Classify(rawURL string) (Descriptor, bool)
}

// Resolver runs an ordered rule list.
type Resolver struct {
	rules []Rule
}

// NewResolver creates a resolver with the given rules, in order.
func NewResolver(rules ...Rule) *Resolver {
	return &Resolver{rules: rules}
}

// Default returns the resolver with the built-in rule order: embeddable
// providers first, then direct-stream detection.
func Default() *Resolver {
	return NewResolver(
		NewYouTubeRule(YouTubeOptions{Autoplay: true, ModestBranding: true}),
		NewVimeoRule(VimeoOptions{Autoplay: true}),
		NewFacebookRule(),
		NewDirectStreamRule(nil),
	)
}

// Classify turns a raw URL into a playable descriptor.
func (r *Resolver) Classify(rawURL string) Descriptor {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return Descriptor{Kind: KindUnsupported}
	}
	for _, rule := range r.rules {
		if d, ok := rule.Classify(trimmed); ok {
			return d
		}
	}
	return Descriptor{Kind: KindUnsupported}
}

// Resolve picks the quality variant for a session's media reference and
// classifies it.
func (r *Resolver) Resolve(ref session.MediaRef, want Quality) Descriptor {
	url, used := PickVariant(ref, want)
	d := r.Classify(url)
	d.QualityUsed = used
	return d
}

// PickVariant selects a playback URL deterministically: the requested
// quality if present, then the alternate quality, then the base
// reference. It never returns an empty URL when any variant exists.
func PickVariant(ref session.MediaRef, want Quality) (string, Quality) {
	switch want {
	case QualityHD:
		if ref.HD != "" {
			return ref.HD, QualityHD
		}
		if ref.SD != "" {
			return ref.SD, QualitySD
		}
	case QualitySD:
		if ref.SD != "" {
			return ref.SD, QualitySD
		}
		if ref.HD != "" {
			return ref.HD, QualityHD
		}
	}
	return ref.URL, QualityAuto
}
