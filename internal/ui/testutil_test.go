package ui

import "regexp"

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[mK]`)

// stripANSI drops SGR and erase-line sequences so assertions can look at
// plain text.
func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}
