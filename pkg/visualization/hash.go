package visualization

import "unicode/utf16"

// FNV-1a 32-bit parameters
const (
	fnvOffsetBasis uint32 = 2166136261
	fnvPrime       uint32 = 16777619
)

// HashString returns the 32-bit FNV-1a hash of s.
//
// The hash walks UTF-16 code units rather than bytes. Identifiers outside
// ASCII must keep hashing that way or existing skies rearrange.
func HashString(s string) uint32 {
	h := fnvOffsetBasis
	for _, unit := range utf16.Encode([]rune(s)) {
		h ^= uint32(unit)
		h *= fnvPrime
	}
	return h
}
