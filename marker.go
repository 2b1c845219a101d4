package pptfill

import (
	"regexp"
	"strings"
)

// Markers are literal placeholder tokens: an identifier wrapped in a
// fixed delimiter pair. There is no expression syntax, no escaping, and
// no formatting — a resolved marker is replaced verbatim by its value.
//
// Two vocabularies exist so an image description can carry human-readable
// alt text alongside an image marker without false matches:
//
//	${Identifier}  text, table-cell and chart markers
//	$[Identifier]  image markers
var (
	textMarkerPattern  = regexp.MustCompile(`\$\{([A-Za-z][A-Za-z0-9_]*)\}`)
	imageMarkerPattern = regexp.MustCompile(`\$\[([A-Za-z][A-Za-z0-9_]*)\]`)
)

// TextMarkers returns the identifiers of all ${...} markers in s, in
// order of appearance. Duplicates are kept.
func TextMarkers(s string) []string {
	return markerIdents(textMarkerPattern, s)
}

// ImageMarkers returns the identifiers of all $[...] markers in s, in
// order of appearance. Duplicates are kept.
func ImageMarkers(s string) []string {
	return markerIdents(imageMarkerPattern, s)
}

func markerIdents(pattern *regexp.Regexp, s string) []string {
	matches := pattern.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil
	}
	idents := make([]string, 0, len(matches))
	for _, m := range matches {
		idents = append(idents, m[1])
	}
	return idents
}

// textMarkerToken reconstructs the literal token for an identifier.
func textMarkerToken(ident string) string {
	return "${" + ident + "}"
}

// substituteText replaces every occurrence of each resolvable ${...}
// token in s. Unresolved tokens are left verbatim. The resolved and
// unresolved callbacks fire once per distinct identifier.
func substituteText(s string, resolve func(string) (string, bool), resolved func(ident, value string), unresolved func(ident string)) string {
	out := s
	seen := make(map[string]bool)
	for _, ident := range TextMarkers(s) {
		if seen[ident] {
			continue
		}
		seen[ident] = true
		value, ok := resolve(ident)
		if !ok {
			if unresolved != nil {
				unresolved(ident)
			}
			continue
		}
		out = strings.ReplaceAll(out, textMarkerToken(ident), value)
		if resolved != nil {
			resolved(ident, value)
		}
	}
	return out
}
