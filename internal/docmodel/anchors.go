package docmodel

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Slugify derives a stable in-page anchor from heading text. Accented
// characters are decomposed and stripped so "Présentation" and
// "Presentation" collide to the same anchor instead of producing
// percent-encoded fragments.
func Slugify(title string) string {
	decomposed := norm.NFKD.String(title)

	var b strings.Builder
	lastHyphen := true // suppress leading hyphens
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			// combining mark left over from decomposition
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	return strings.TrimRight(b.String(), "-")
}

// AnchorAllocator hands out unique anchors within one document, suffixing
// duplicates with -1, -2, ...
type AnchorAllocator struct {
	seen map[string]int
}

func NewAnchorAllocator() *AnchorAllocator {
	return &AnchorAllocator{seen: make(map[string]int)}
}

// Allocate returns the anchor for a heading title, unique for this allocator.
func (a *AnchorAllocator) Allocate(title string) string {
	slug := Slugify(title)
	if slug == "" {
		slug = "section"
	}
	n, dup := a.seen[slug]
	a.seen[slug] = n + 1
	if !dup {
		return slug
	}
	return slug + "-" + strconv.Itoa(n)
}
