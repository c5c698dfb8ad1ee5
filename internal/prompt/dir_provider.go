package prompt

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// DirProvider loads fragments from <root>/<scope>/*.txt, sorted by file
// name for deterministic ordering.
type DirProvider struct {
	root   string
	logger *logrus.Entry
}

// NewDirProvider creates a provider rooted at dir.
func NewDirProvider(dir string) *DirProvider {
	return &DirProvider{
		root:   dir,
		logger: logrus.WithField("component", "prompt"),
	}
}

// LoadFragments reads every .txt file in the scope directory. A missing
// directory yields no fragments; an unreadable file is skipped with a
// warning so one bad fragment cannot take down composition.
func (p *DirProvider) LoadFragments(ctx context.Context, scope string) ([]Fragment, error) {
	dir := filepath.Join(p.root, scope)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	fragments := make([]Fragment, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			p.logger.WithError(err).WithField("fragment", name).Warn("Skipping unreadable prompt fragment")
			continue
		}
		fragments = append(fragments, Fragment{Name: name, Text: string(data)})
	}

	return fragments, nil
}
