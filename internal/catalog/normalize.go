package catalog

import "strings"

// OCR output for game item names tends to pick up stray glyphs around the
// text box border; these never appear in real item names.
const artifactChars = "|`~^*_[]{}<>\\"

// Normalize canonicalizes an item name for equality and similarity checks:
// case-fold, trim, collapse internal whitespace, strip known OCR artifacts.
func Normalize(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	lastSpace := true
	for _, r := range strings.ToLower(name) {
		if strings.ContainsRune(artifactChars, r) {
			continue
		}
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}

	return strings.TrimRight(b.String(), " ")
}
