package prompt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileStoreRoundTrip(t *testing.T) {
	store := NewProfileStore(t.TempDir())

	aboutYou, err := store.Get()
	require.NoError(t, err)
	assert.Empty(t, aboutYou)

	require.NoError(t, store.Update("  I prefer short answers.  "))

	aboutYou, err = store.Get()
	require.NoError(t, err)
	assert.Equal(t, "I prefer short answers.", aboutYou)
}

func TestProfileUpdateSplicesExactlyOneSection(t *testing.T) {
	root := t.TempDir()
	store := NewProfileStore(root)

	require.NoError(t, store.Update("First version."))
	require.NoError(t, store.Update("Second version."))
	require.NoError(t, store.Update("Third version."))

	data, err := os.ReadFile(filepath.Join(root, ScopeCommon, commonFragment))
	require.NoError(t, err)
	content := string(data)

	assert.Equal(t, 1, strings.Count(content, profileMarkerStart))
	assert.Equal(t, 1, strings.Count(content, profileMarkerEnd))
	assert.Contains(t, content, "Third version.")
	assert.NotContains(t, content, "First version.")
}

func TestProfileUpdatePreservesOtherFragmentContent(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ScopeCommon), 0o755))
	handwritten := "Always use plain words.\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, ScopeCommon, commonFragment), []byte(handwritten), 0o644))

	store := NewProfileStore(root)
	require.NoError(t, store.Update("Likes lists."))

	data, err := os.ReadFile(filepath.Join(root, ScopeCommon, commonFragment))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Always use plain words.")
	assert.Contains(t, string(data), "Likes lists.")
}

func TestProfileConcurrentUpdatesStayConsistent(t *testing.T) {
	root := t.TempDir()
	store := NewProfileStore(root)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			assert.NoError(t, store.Update(fmt.Sprintf("Version %d.", n)))
		}(i)
	}
	wg.Wait()

	data, err := os.ReadFile(filepath.Join(root, ScopeCommon, commonFragment))
	require.NoError(t, err)
	content := string(data)
	require.Equal(t, 1, strings.Count(content, profileMarkerStart), "interleaved writes must not duplicate the section")
	require.Equal(t, 1, strings.Count(content, profileMarkerEnd))

	aboutYou, err := store.Get()
	require.NoError(t, err)
	assert.Contains(t, content, aboutYou, "the fragment carries whichever update landed last")
}

func TestProfileFlowsIntoComposition(t *testing.T) {
	root := t.TempDir()
	store := NewProfileStore(root)
	require.NoError(t, store.Update("Enjoys astronomy."))

	composer := NewComposer(NewDirProvider(root))
	result := composer.Compose(context.Background(), "Base.", "chat")

	assert.Contains(t, result, "Enjoys astronomy.")
}
