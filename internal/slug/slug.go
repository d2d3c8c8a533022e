package slug

import (
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"regexp"
	"strings"
	"unicode"
)

var cyrillic = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "yo", 'ж': "zh",
	'з': "z", 'и': "i", 'й': "j", 'к': "k", 'л': "l", 'м': "m", 'н': "n", 'о': "o",
	'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u", 'ф': "f", 'х': "h", 'ц': "c",
	'ч': "ch", 'ш': "sh", 'щ': "sh", 'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu",
	'я': "ya", 'є': "ye", 'і': "i", 'ї': "yi", 'ґ': "g",
}

var (
	invalidChars = regexp.MustCompile(`[^a-z0-9\s_-]`)
	separators   = regexp.MustCompile(`[\s-]+`)
)

// Make derives a URL-safe slug from s, cut to at most maxLength bytes (0 means unlimited).
// Cyrillic letters are transliterated and diacritics are stripped,
// so "Настройка MikroTik" becomes "nastrojka-mikrotik".
func Make(s string, maxLength int) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if t, ok := cyrillic[r]; ok {
			b.WriteString(t)
			continue
		}
		b.WriteRune(r)
	}

	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	ascii, _, err := transform.String(t, b.String())
	if err != nil {
		ascii = b.String()
	}

	ascii = invalidChars.ReplaceAllString(ascii, "")
	ascii = strings.TrimSpace(ascii)
	ascii = separators.ReplaceAllString(ascii, "-")
	ascii = strings.Trim(ascii, "-")

	if maxLength > 0 && len(ascii) > maxLength {
		ascii = strings.TrimRight(ascii[:maxLength], "-")
	}

	return ascii
}

var valid = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// IsValid reports whether s consists only of letters, digits, hyphens and underscores.
func IsValid(s string) bool {
	return valid.MatchString(s)
}
