// Package contentref derives opaque content references. Message bodies live
// outside the messaging core; only their reference is stored and emitted.
package contentref

import (
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
)

const prefix = "b2:"

// Of returns the reference for content: "b2:" followed by the hex BLAKE2b-256 digest.
func Of(content []byte) string {
	sum := blake2b.Sum256(content)
	return prefix + hex.EncodeToString(sum[:])
}

func OfString(content string) string {
	return Of([]byte(content))
}

// Matches reports whether ref was derived from content.
func Matches(ref string, content []byte) bool {
	return subtle.ConstantTimeCompare([]byte(ref), []byte(Of(content))) == 1
}

// IsDerived reports whether ref has the shape produced by Of. Callers may
// still supply their own opaque references; this only recognises ours.
func IsDerived(ref string) bool {
	digest, ok := strings.CutPrefix(ref, prefix)
	if !ok || len(digest) != 2*blake2b.Size256 {
		return false
	}
	_, err := hex.DecodeString(digest)
	return err == nil
}
