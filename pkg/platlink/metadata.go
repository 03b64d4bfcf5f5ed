package platlink

import "strings"

// RefID is a single identifier entry inside an external metadata blob.
type RefID struct {
	ID string `json:"id"`
}

// PlatformRef is one platform's entry in a third-party metadata blob.
// Providers are inconsistent about shape: some nest a single match object,
// some return an array of candidates, some put a flat ID at the top level.
type PlatformRef struct {
	Match   *RefID  `json:"match,omitempty"`
	Matches []RefID `json:"matches,omitempty"`
	ID      string  `json:"id,omitempty"`
}

// FirstIdentifier returns the first usable identifier from a metadata
// entry, trying in order: nested single match, first array element, flat
// top-level ID. Returns "" when nothing usable is present.
func (r PlatformRef) FirstIdentifier() string {
	if r.Match != nil && strings.TrimSpace(r.Match.ID) != "" {
		return strings.TrimSpace(r.Match.ID)
	}
	if len(r.Matches) > 0 && strings.TrimSpace(r.Matches[0].ID) != "" {
		return strings.TrimSpace(r.Matches[0].ID)
	}
	return strings.TrimSpace(r.ID)
}

// FromMetadata normalizes every usable identifier in an external metadata
// blob, merged under the direct user-supplied set: a platform already
// present in direct is never overwritten by metadata-derived values.
// Provider platform keys are mapped through FromProviderKey; unknown keys
// are skipped.
func FromMetadata(refs map[string]PlatformRef, direct map[Platform]Normalized) map[Platform]Normalized {
	out := make(map[Platform]Normalized, len(refs)+len(direct))
	for platform, n := range direct {
		out[platform] = n
	}

	for key, ref := range refs {
		platform, ok := FromProviderKey(key)
		if !ok {
			continue
		}
		if _, taken := out[platform]; taken {
			continue
		}
		id := ref.FirstIdentifier()
		if id == "" {
			continue
		}
		n := Normalize(platform, id)
		n.Note = "derived from external metadata: " + n.Note
		out[platform] = n
	}

	return out
}
