// Package prompt assembles system instructions from layered fragment
// sources: a common scope shared by every feature plus one scope per
// feature. Fragments are re-read on every composition so prompt edits
// take effect without a restart.
package prompt

import "context"

// ScopeCommon is the fragment scope applied to all features.
const ScopeCommon = "common"

// Fragment is a named block of instructional text.
type Fragment struct {
	Name string
	Text string
}

// FragmentProvider loads the fragments for one scope. Implementations
// are best-effort: an unreadable individual fragment is skipped rather
// than failing the whole load.
type FragmentProvider interface {
	LoadFragments(ctx context.Context, scope string) ([]Fragment, error)
}
