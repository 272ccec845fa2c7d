package naming

import (
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// imageExtensions lists the suffixes stripped when building a lookup key.
var imageExtensions = map[string]struct{}{
	".png": {}, ".gif": {}, ".jpg": {}, ".jpeg": {}, ".svg": {},
	".webp": {}, ".bmp": {}, ".ico": {}, ".tif": {}, ".tiff": {},
}

const logoSuffix = " logo"

// illegalRunes are characters that cannot appear in a file name on the
// platforms logo libraries are synced to.
const illegalRunes = `<>:"/\|?*`

// Normalize produces the lookup key for a filename or entity name: NFC
// folded, lower-cased, without an image extension or trailing " logo", and
// trimmed. The steps repeat until the value stops changing, so
// Normalize(Normalize(x)) == Normalize(x) for every x.
func Normalize(name string) string {
	key := name
	for {
		next := normalizeOnce(key)
		if next == key {
			return key
		}
		key = next
	}
}

func normalizeOnce(s string) string {
	s = strings.ToLower(norm.NFC.String(s))
	s = strings.TrimSpace(s)
	if ext := filepath.Ext(s); ext != "" {
		if _, ok := imageExtensions[ext]; ok {
			s = strings.TrimSpace(strings.TrimSuffix(s, ext))
		}
	}
	for strings.HasSuffix(s, logoSuffix) {
		s = strings.TrimSpace(strings.TrimSuffix(s, logoSuffix))
	}
	return s
}

// Sanitize removes characters that are illegal in file names and trims
// surrounding whitespace.
func Sanitize(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(illegalRunes, r) {
			return -1
		}
		return r
	}, name)
	return strings.TrimSpace(cleaned)
}

// StripImageExt removes a trailing image extension, if present. Other dotted
// suffixes ("St. Louis Blues") are left alone.
func StripImageExt(name string) string {
	ext := filepath.Ext(name)
	if _, ok := imageExtensions[strings.ToLower(ext)]; ok {
		return strings.TrimSuffix(name, ext)
	}
	return name
}

// Ext returns the final extension of a file name, including the dot.
func Ext(name string) string {
	return filepath.Ext(name)
}

// Stem returns the base name without its final extension.
func Stem(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// WithDisambiguator appends the numeric suffix used to avoid collisions.
func WithDisambiguator(stem string, n int) string {
	if n <= 0 {
		return stem
	}
	return stem + "_" + strconv.Itoa(n)
}

// SplitDisambiguator recognises a "_N" collision suffix (N >= 1) and returns
// the stem it was appended to.
func SplitDisambiguator(stem string) (string, int, bool) {
	idx := strings.LastIndexByte(stem, '_')
	if idx <= 0 || idx == len(stem)-1 {
		return stem, 0, false
	}
	digits := stem[idx+1:]
	if digits[0] == '0' {
		return stem, 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 {
		return stem, 0, false
	}
	return stem[:idx], n, true
}
