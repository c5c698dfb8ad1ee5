package prompt

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapProvider serves fragments from a fixture map; scopes listed in
// failing return an error.
type mapProvider struct {
	fragments map[string][]Fragment
	failing   map[string]bool
}

func (p *mapProvider) LoadFragments(ctx context.Context, scope string) ([]Fragment, error) {
	if p.failing[scope] {
		return nil, errors.New("scope unavailable")
	}
	return p.fragments[scope], nil
}

func TestComposeNoFragmentsReturnsBaseUnchanged(t *testing.T) {
	composer := NewComposer(&mapProvider{})

	result := composer.Compose(context.Background(), "You are a helpful assistant.", "chat")

	assert.Equal(t, "You are a helpful assistant.", result)
}

func TestComposeGlobalThenFeatureOrder(t *testing.T) {
	composer := NewComposer(&mapProvider{
		fragments: map[string][]Fragment{
			ScopeCommon: {{Name: "tone.txt", Text: "Keep a gentle tone."}},
			"chat":      {{Name: "chat.txt", Text: "Ask one question at a time."}},
		},
	})

	result := composer.Compose(context.Background(), "Base.", "chat")

	assert.True(t, strings.HasPrefix(result, "Base."))
	assert.Contains(t, result, fragmentHeader)
	common := strings.Index(result, "Keep a gentle tone.")
	feature := strings.Index(result, "Ask one question at a time.")
	require.True(t, common >= 0 && feature >= 0)
	assert.Less(t, common, feature, "common fragments come before feature fragments")
}

func TestComposeSkipsEmptyFragments(t *testing.T) {
	composer := NewComposer(&mapProvider{
		fragments: map[string][]Fragment{
			ScopeCommon: {
				{Name: "empty.txt", Text: "   \n\t  "},
				{Name: "real.txt", Text: "  Use short sentences.  "},
			},
		},
	})

	result := composer.Compose(context.Background(), "Base.", "chat")

	assert.Contains(t, result, "Use short sentences.")
	assert.NotContains(t, result, "  Use short sentences.  ")
}

func TestComposeAllFragmentsEmptyReturnsBase(t *testing.T) {
	composer := NewComposer(&mapProvider{
		fragments: map[string][]Fragment{
			ScopeCommon: {{Name: "a.txt", Text: ""}},
			"chat":      {{Name: "b.txt", Text: "\n"}},
		},
	})

	assert.Equal(t, "Base.", composer.Compose(context.Background(), "Base.", "chat"))
}

func TestComposeScopeFailureIsNonFatal(t *testing.T) {
	composer := NewComposer(&mapProvider{
		fragments: map[string][]Fragment{
			"chat": {{Name: "chat.txt", Text: "Feature text."}},
		},
		failing: map[string]bool{ScopeCommon: true},
	})

	result := composer.Compose(context.Background(), "Base.", "chat")

	assert.Contains(t, result, "Feature text.")
}

func TestComposeDeterministic(t *testing.T) {
	composer := NewComposer(&mapProvider{
		fragments: map[string][]Fragment{
			ScopeCommon: {{Name: "a.txt", Text: "One."}, {Name: "b.txt", Text: "Two."}},
		},
	})

	first := composer.Compose(context.Background(), "Base.", "chat")
	second := composer.Compose(context.Background(), "Base.", "chat")

	assert.Equal(t, first, second)
}

func TestDirProviderReadsSortedTxtFiles(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "chat")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "02_second.txt"), []byte("second"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "01_first.txt"), []byte("first"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.md"), []byte("nope"), 0o644))

	provider := NewDirProvider(root)
	fragments, err := provider.LoadFragments(context.Background(), "chat")

	require.NoError(t, err)
	require.Len(t, fragments, 2)
	assert.Equal(t, "first", fragments[0].Text)
	assert.Equal(t, "second", fragments[1].Text)
}

func TestDirProviderMissingScopeYieldsNothing(t *testing.T) {
	provider := NewDirProvider(t.TempDir())

	fragments, err := provider.LoadFragments(context.Background(), "nope")

	require.NoError(t, err)
	assert.Empty(t, fragments)
}

func TestDirProviderReflectsLiveEdits(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ScopeCommon)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("before"), 0o644))

	composer := NewComposer(NewDirProvider(root))
	assert.Contains(t, composer.Compose(context.Background(), "Base.", "chat"), "before")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("after"), 0o644))
	assert.Contains(t, composer.Compose(context.Background(), "Base.", "chat"), "after")
}
