package storage

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// windowsDeviceNames can not be used as file names on Windows even with an
// extension.
var windowsDeviceNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true,
	"LPT1": true, "LPT2": true, "LPT3": true,
}

// asciiFold decomposes characters and drops everything outside ASCII, so
// "é" becomes "e" and "日本" disappears.
var asciiFold = transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
	return r > unicode.MaxASCII
})))

// SecureFilename turns an uploaded file name into one that is safe to store.
//
// The name is folded to ASCII, path separators become spaces, runs of
// whitespace become a single underscore, and any character outside
// [A-Za-z0-9_.-] is dropped. Leading and trailing dots and underscores are
// trimmed. The result may be empty, in which case the name is unusable.
//
//	SecureFilename("My cool movie.mov")     // "My_cool_movie.mov"
//	SecureFilename("../../../etc/passwd")   // "etc_passwd"
//	SecureFilename("i contain cool ümläuts.txt") // "i_contain_cool_umlauts.txt"
func SecureFilename(name string) string {
	folded, _, err := transform.String(asciiFold, name)
	if err != nil {
		folded = name
	}

	folded = strings.NewReplacer("/", " ", `\`, " ").Replace(folded)
	folded = strings.Join(strings.Fields(folded), "_")
	folded = unsafeFilenameChars.ReplaceAllString(folded, "")
	folded = strings.Trim(folded, "._")

	if folded != "" {
		base := strings.ToUpper(strings.SplitN(folded, ".", 2)[0])
		if windowsDeviceNames[base] {
			folded = "_" + folded
		}
	}
	return folded
}
