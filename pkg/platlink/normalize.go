package platlink

import "strings"

// Normalize converts one platform identifier into its canonical form.
// Recognized forms are tried in order: scheme-prefixed URI, canonical URL,
// bare ID. Anything else passes through unchanged with a diagnostic note.
// Normalize never fails: a slightly malformed URL is more useful to a human
// reviewer than an error.
func Normalize(platform Platform, input string) Normalized {
	n := Normalized{Platform: platform}

	input = strings.TrimSpace(input)
	if input == "" {
		n.Note = "empty input"
		return n
	}

	s, ok := registry[platform]
	if !ok {
		n.URL = input
		n.Note = "unknown platform, kept as-is"
		return n
	}

	if s.uriPattern != nil {
		if m := s.uriPattern.FindStringSubmatch(input); m != nil {
			n.RawID = m[1]
			if s.buildURL != nil {
				n.URL = s.buildURL(n.RawID)
				n.Note = "converted URI to canonical URL"
			} else {
				n.Note = s.bareIDNote
			}
			return n
		}
	}

	for _, p := range s.urlPatterns {
		if m := p.FindStringSubmatch(input); m != nil {
			// Keep the caller's URL so normalization is idempotent on
			// already-canonical input; extract the ID for round-tripping.
			n.URL = input
			n.RawID = m[1]
			n.Note = "recognized canonical URL"
			return n
		}
	}

	if s.idPattern != nil && s.idPattern.MatchString(input) {
		n.RawID = input
		if s.buildURL != nil {
			n.URL = s.buildURL(input)
			n.Note = "synthesized canonical URL from bare ID"
		} else {
			n.Note = s.bareIDNote
		}
		return n
	}

	n.URL = input
	n.Note = "unrecognized format, kept as-is"
	return n
}

// NormalizeValue is a single-value convenience for editing-UI round-trips:
// it returns the canonical URL when one exists, otherwise the raw ID,
// otherwise the input unchanged.
func NormalizeValue(platform Platform, input string) string {
	n := Normalize(platform, input)
	if n.URL != "" {
		return n.URL
	}
	if n.RawID != "" {
		return n.RawID
	}
	return input
}

// NormalizeAll normalizes a set of direct per-platform inputs. Empty values
// are skipped.
func NormalizeAll(inputs map[Platform]string) map[Platform]Normalized {
	out := make(map[Platform]Normalized, len(inputs))
	for platform, value := range inputs {
		if strings.TrimSpace(value) == "" {
			continue
		}
		out[platform] = Normalize(platform, value)
	}
	return out
}
