package checksum

import "strings"

// Unknown is the sentinel for "no checksum available". It never compares
// equal to anything, including another Unknown: absence of evidence is not
// evidence of sameness.
const Unknown = "unknown"

// Normalize maps a raw checksum value to its canonical form. Blank values,
// whitespace-only values, and any spelling of the sentinel collapse to
// Unknown; everything else is lowercased so hex digests compare reliably.
func Normalize(raw string) string {
	c := strings.ToLower(strings.TrimSpace(raw))
	if c == "" || c == Unknown {
		return Unknown
	}
	return c
}

// IsUnknown reports whether raw normalizes to the Unknown sentinel.
func IsUnknown(raw string) bool {
	return Normalize(raw) == Unknown
}

// Equal reports whether two checksums provably refer to identical content.
// If either side is Unknown the answer is false, so callers naturally land
// on the conservative branch of any comparison.
func Equal(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	if na == Unknown || nb == Unknown {
		return false
	}
	return na == nb
}
