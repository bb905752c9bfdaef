package media

import (
	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/flockcast/engage/internal/infra/config"
)

// NewResolverFromConfig builds the ordered rule list from configuration.
// An empty rule list uses the built-in order. Unknown rule types are an
// error so a misconfigured resolver fails at startup, not at classify
// time.
func NewResolverFromConfig(cfg *config.Config) (*Resolver, error) {
	if len(cfg.Media.Rules) == 0 {
		return Default(), nil
	}

	var rules []Rule
	for i, rcfg := range cfg.Media.Rules {
		rule, err := newRule(rcfg)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create media rule (index %d, type %s)", i, rcfg.Type)
		}
		rules = append(rules, rule)
		zlog.Info().Msgf("registered media rule: index=%d type=%s", i+1, rcfg.Type)
	}
	return NewResolver(rules...), nil
}

func newRule(rcfg config.MediaRuleConfig) (Rule, error) {
	switch rcfg.Type {
	case "youtube":
		var opts YouTubeOptions
		if err := decodeSettings(rcfg.Settings, &opts); err != nil {
			return nil, err
		}
		return NewYouTubeRule(opts), nil

	case "vimeo":
		var opts VimeoOptions
		if err := decodeSettings(rcfg.Settings, &opts); err != nil {
			return nil, err
		}
		return NewVimeoRule(opts), nil

	case "facebook":
		return NewFacebookRule(), nil

	case "direct_stream":
		var opts struct {
			Extensions []string `mapstructure:"extensions"`
		}
		if err := decodeSettings(rcfg.Settings, &opts); err != nil {
			return nil, err
		}
		return NewDirectStreamRule(opts.Extensions), nil

	default:
		return nil, errors.Newf("unsupported rule type: %s", rcfg.Type)
	}
}

func decodeSettings(settings map[string]any, out any) error {
	if err := mapstructure.Decode(settings, out); err != nil {
		return errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(out); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}
	return nil
}
