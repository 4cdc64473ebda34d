// Package normalize folds text into a canonical form before fuzzy
// comparison. Names and places in news copy arrive with curly quotes,
// stray accents, and fullwidth punctuation from CMS pipelines; folding
// both sides first keeps ratio scoring about the words, not the bytes.
//
// Folding repairs UTF-8, applies NFKC, case-folds, strips combining
// marks and zero-width characters, maps fullwidth forms to ASCII, and
// collapses whitespace runs to single spaces.
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Normalizer folds text. It holds no state of its own; one value is
// safe to share across goroutines.
type Normalizer struct{}

// transformer chains are stateful mid-stream, so every call borrows a
// fresh one from the pool instead of sharing a chain
var foldPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKC,
			cases.Fold(),
			runes.Remove(runes.In(unicode.Mn)), // combining marks, after NFKC splits them out
			runes.Remove(runes.In(unicode.Cf)), // zero-width joiners and BOMs
			width.Fold,
		)
	},
}

// New constructs a Normalizer.
func New() *Normalizer { return &Normalizer{} }

// Normalize returns the canonical form of s.
func (n *Normalizer) Normalize(s string) string {
	if s == "" {
		return ""
	}

	// invalid bytes are dropped outright, never replaced with U+FFFD
	s = strings.ToValidUTF8(s, "")

	tr := foldPool.Get().(transform.Transformer)
	ns, _, _ := transform.String(tr, s)
	tr.Reset()
	foldPool.Put(tr)

	return collapseSpaces(ns)
}

var defaultNormalizer = New()

// Fold folds s through the package-level Normalizer.
func Fold(s string) string { return defaultNormalizer.Normalize(s) }

// collapseSpaces squeezes whitespace runs to one ASCII space and trims
// both edges.
func collapseSpaces(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	inWS := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			inWS = true
			continue
		}
		if inWS && b.Len() > 0 {
			b.WriteByte(' ')
		}
		inWS = false
		b.WriteRune(r)
	}
	return b.String()
}
