package ingredient

import "strings"

// Candidate is a named item eligible for matching: a pantry item or a
// shopping-list entry.
type Candidate struct {
	ID   string
	Name string
}

// Match returns the candidates matching the given normalized ingredient name,
// best tier first. Tiers, in priority order: exact equality, substring
// containment in either direction, word overlap. The first non-empty tier
// wins; ties within a tier keep candidate input order. An empty result means
// "missing ingredient", not an error.
func Match(name string, pool []Candidate) []Candidate {
	target := Normalize(name)
	if target == "" {
		return nil
	}

	var exact, substring, overlap []Candidate
	targetTokens := tokenize(target)

	for _, c := range pool {
		candidate := Normalize(c.Name)
		if candidate == "" {
			continue
		}
		switch {
		case candidate == target:
			exact = append(exact, c)
		case strings.Contains(candidate, target) || strings.Contains(target, candidate):
			substring = append(substring, c)
		case tokenOverlap(targetTokens, tokenize(candidate)):
			overlap = append(overlap, c)
		}
	}

	if len(exact) > 0 {
		return exact
	}
	if len(substring) > 0 {
		return substring
	}
	return overlap
}

// FilterAvailable removes pantry candidates whose name also matches an
// active (non-crossed-off) shopping-list entry. An item already queued for
// purchase should not be double-counted as available on hand.
func FilterAvailable(pantry []Candidate, activeList []Candidate) []Candidate {
	if len(activeList) == 0 {
		return pantry
	}

	kept := make([]Candidate, 0, len(pantry))
	for _, item := range pantry {
		if len(Match(item.Name, activeList)) == 0 {
			kept = append(kept, item)
		}
	}
	return kept
}

// tokenize splits a normalized name into tokens longer than two characters.
func tokenize(s string) []string {
	var tokens []string
	for _, f := range strings.Fields(s) {
		if len(f) > 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// tokenOverlap reports whether the smaller token set shares at least
// min(2, len(smaller)) tokens with the larger one.
func tokenOverlap(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}

	smaller, larger := a, b
	if len(b) < len(a) {
		smaller, larger = b, a
	}

	largerSet := make(map[string]struct{}, len(larger))
	for _, t := range larger {
		largerSet[t] = struct{}{}
	}

	required := 2
	if len(smaller) < required {
		required = len(smaller)
	}

	count := 0
	for _, t := range smaller {
		if _, ok := largerSet[t]; ok {
			count++
			if count >= required {
				return true
			}
		}
	}
	return false
}
