package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	profileFile    = "user_profile.txt"
	commonFragment = "common.txt"

	profileMarkerStart = "# --- USER PROFILE ---"
	profileMarkerEnd   = "# --- END USER PROFILE ---"
)

// ProfileStore persists the user's "about you" text. The raw profile
// lives in its own file for reads; a marker-delimited copy is spliced
// into the shared common fragment so every composed instruction carries
// it, without clobbering other handwritten content in that fragment.
// The mutex serializes the read-splice-write against concurrent updates.
type ProfileStore struct {
	mu   sync.Mutex
	root string
}

// NewProfileStore creates a store rooted at the prompts directory.
func NewProfileStore(dir string) *ProfileStore {
	return &ProfileStore{root: dir}
}

// Get returns the current profile text, or empty if none is saved.
func (s *ProfileStore) Get() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(s.root, profileFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// Update saves the profile and rewrites the profile section of the
// common fragment. Running it repeatedly leaves exactly one section.
func (s *ProfileStore) Update(aboutYou string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	aboutYou = strings.TrimSpace(aboutYou)

	if err := os.MkdirAll(filepath.Join(s.root, ScopeCommon), 0o755); err != nil {
		return fmt.Errorf("failed to create prompts directory: %w", err)
	}

	if err := os.WriteFile(filepath.Join(s.root, profileFile), []byte(aboutYou), 0o644); err != nil {
		return fmt.Errorf("failed to write user profile: %w", err)
	}

	fragmentPath := filepath.Join(s.root, ScopeCommon, commonFragment)
	existing := ""
	if data, err := os.ReadFile(fragmentPath); err == nil {
		existing = string(data)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read common fragment: %w", err)
	}

	updated := spliceProfileSection(existing, aboutYou)
	if err := os.WriteFile(fragmentPath, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("failed to write common fragment: %w", err)
	}

	return nil
}

func spliceProfileSection(content, aboutYou string) string {
	section := profileMarkerStart + "\n" +
		"About the user:\n" + aboutYou + "\n" +
		profileMarkerEnd

	start := strings.Index(content, profileMarkerStart)
	if start >= 0 {
		end := strings.Index(content, profileMarkerEnd)
		if end >= start {
			end += len(profileMarkerEnd)
			return strings.TrimRight(content[:start], "\n") + "\n\n" + section + content[end:]
		}
		return content
	}

	if strings.TrimSpace(content) == "" {
		return section + "\n"
	}
	return strings.TrimRight(content, "\n") + "\n\n" + section + "\n"
}
