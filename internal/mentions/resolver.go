// Package mentions extracts @handle tokens from free text and resolves
// them to concrete account ids.
package mentions

import (
	"context"
	"regexp"

	"github.com/porchlight-social/porchlight/internal/models"
)

// handlePattern matches an @ followed by a run of word characters
// (letters, digits, underscore, hyphen). The @ always begins the token,
// so a handle embedded mid-word never matches its surroundings.
var handlePattern = regexp.MustCompile(`@([0-9A-Za-z_-]+)`)

// ExtractHandles returns the distinct handles mentioned in text, in
// first-occurrence order. Matching is case-sensitive, the same as
// handle lookup.
func ExtractHandles(text string) []string {
	if text == "" {
		return nil
	}

	var handles []string
	seen := make(map[string]bool)
	for _, m := range handlePattern.FindAllStringSubmatch(text, -1) {
		handle := m[1]
		if seen[handle] {
			continue
		}
		seen[handle] = true
		handles = append(handles, handle)
	}
	return handles
}

// ProfileLookup is the slice of the profile store the resolver needs.
type ProfileLookup interface {
	GetByHandles(ctx context.Context, handles []string) ([]*models.Profile, error)
}

// Resolver maps mention text to account ids via a single batched
// profile lookup.
type Resolver struct {
	profiles ProfileLookup
}

// NewResolver creates a new mention resolver
func NewResolver(profiles ProfileLookup) *Resolver {
	return &Resolver{profiles: profiles}
}

// Resolve returns the account ids mentioned in text. Handles with no
// matching profile are silently dropped; the result order is
// unspecified. Pure query, no side effects.
func (r *Resolver) Resolve(ctx context.Context, text string) ([]int64, error) {
	handles := ExtractHandles(text)
	if len(handles) == 0 {
		return nil, nil
	}

	profiles, err := r.profiles.GetByHandles(ctx, handles)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.ID)
	}
	return ids, nil
}
