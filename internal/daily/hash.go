// Package daily implements the deterministic per-day content selection that
// keeps "today's pick" stable across repeated page loads for the same user.
package daily

// Hash returns a stable 32-bit hash of s. The algorithm is the classic
// multiply-by-31 string hash with wrapping 32-bit arithmetic, so results are
// reproducible across processes and languages. The empty string hashes to 0.
func Hash(s string) uint32 {
	var h uint32
	for _, r := range s {
		h = 31*h + uint32(r)
	}
	return h
}
