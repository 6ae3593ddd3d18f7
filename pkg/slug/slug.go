package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var slugRegexp = regexp.MustCompile(`[^a-z0-9]+`)

// Letters that carry no combining mark and so survive NFD decomposition.
var undecomposable = strings.NewReplacer("ı", "i", "ł", "l", "ø", "o", "đ", "d", "ß", "ss")

// Generate creates a URL-friendly slug from name. Diacritics are stripped, so
// "Tričko Černé" becomes "tricko-cerne".
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}
	s = undecomposable.Replace(s)

	s = slugRegexp.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
