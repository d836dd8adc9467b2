// Package fingerprint derives content-addressable cache keys from normalized
// generation parameters. Identical parameters always yield the identical key.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// Key builds the canonical string "prompt|aspectRatio|grade" and returns its
// hex-encoded SHA-256 digest. A grade level of zero stands for "any grade".
func Key(prompt, aspectRatio string, gradeLevel int) string {
	grade := "any"
	if gradeLevel > 0 {
		grade = strconv.Itoa(gradeLevel)
	}
	sum := sha256.Sum256([]byte(prompt + "|" + aspectRatio + "|" + grade))
	return hex.EncodeToString(sum[:])
}
