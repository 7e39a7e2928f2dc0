// Package checksum provides content fingerprinting for the reconciliation
// engine. Checksums are the sole equality oracle in agentsync: two equal
// digests mean byte-identical content, and every comparison goes through
// Normalize so that missing values never masquerade as matches.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"unicode/utf8"
)

// ShortTagLen is the length of the abbreviated digest used as an identity
// tag in filenames and log output.
const ShortTagLen = 12

// Of returns the lowercase hex sha256 digest of content.
func Of(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// OfString returns the digest of a string hashed as UTF-8 bytes.
func OfString(content string) string {
	return Of([]byte(content))
}

// ShortTag returns a fixed-length prefix of the digest of content, suitable
// as a compact identity tag. The full digest remains the comparison value.
func ShortTag(content []byte) string {
	return Of(content)[:ShortTagLen]
}

// IsBinary reports whether data looks like binary rather than text. It is a
// heuristic for callers choosing text vs. binary handling before hashing;
// the engine itself hashes raw bytes either way.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	// NUL bytes are a strong binary signal.
	sample := data
	if len(sample) > 8000 {
		sample = sample[:8000]
		// Back off a partially sampled rune so utf8.Valid is not fooled
		// by the cut point.
		for len(sample) > 0 && !utf8.RuneStart(sample[len(sample)-1]) {
			sample = sample[:len(sample)-1]
		}
		if len(sample) > 0 {
			sample = sample[:len(sample)-1]
		}
	}
	for _, b := range sample {
		if b == 0 {
			return true
		}
	}
	return !utf8.Valid(sample)
}
