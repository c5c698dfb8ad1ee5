package prompt

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
)

// fragmentHeader separates the base instruction from loaded fragments.
const fragmentHeader = "--- ADDITIONAL INSTRUCTIONS ---"

// Composer builds system instructions from a base directive plus the
// common and feature-scoped fragment sets.
type Composer struct {
	provider FragmentProvider
	logger   *logrus.Entry
}

// NewComposer creates a composer backed by the given provider.
func NewComposer(provider FragmentProvider) *Composer {
	return &Composer{
		provider: provider,
		logger:   logrus.WithField("component", "composer"),
	}
}

// Compose returns base followed by the surviving common fragments, then
// the feature fragments, joined by blank lines under a separator header.
// Fragments are trimmed and empties discarded; scope load failures are
// logged and skipped, never propagated. With no surviving fragments the
// base instruction is returned unchanged.
func (c *Composer) Compose(ctx context.Context, base, feature string) string {
	parts := c.collect(ctx, ScopeCommon)
	if feature != "" && feature != ScopeCommon {
		parts = append(parts, c.collect(ctx, feature)...)
	}

	if len(parts) == 0 {
		return base
	}

	sections := append([]string{base, fragmentHeader}, parts...)
	return strings.Join(sections, "\n\n")
}

func (c *Composer) collect(ctx context.Context, scope string) []string {
	fragments, err := c.provider.LoadFragments(ctx, scope)
	if err != nil {
		c.logger.WithError(err).WithField("scope", scope).Warn("Failed to load prompt fragments")
		return nil
	}

	texts := make([]string, 0, len(fragments))
	for _, fragment := range fragments {
		text := strings.TrimSpace(fragment.Text)
		if text == "" {
			continue
		}
		texts = append(texts, text)
	}
	return texts
}
