package security

import (
	"bytes"
	"strings"
)

// MinSecretLength is the shortest HMAC secret not reported as weak.
const MinSecretLength = 32

var weakPatterns = []string{
	"12345678", "87654321", "11111111", "00000000", "aaaaaaaa",
	"abcdefgh", "qwerty", "asdfgh", "zxcvbn", "letmein", "welcome",
	"password", "secret", "changeme", "default", "example", "sample",
	"admin", "token", "test",
}

// IsWeakKey reports whether a symmetric secret is too short or has an obviously
// low-entropy shape. It is a heuristic for operator warnings, not a guarantee.
func IsWeakKey(key []byte) bool {
	if len(key) < MinSecretLength {
		return true
	}
	if isSingleByte(key) || isRepeatedPattern(key) || isSequence(key) {
		return true
	}
	if uniqueRatio(key) < 0.3 || charClasses(key) < 3 {
		return true
	}

	lower := strings.ToLower(string(key))
	for _, p := range weakPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func isSingleByte(key []byte) bool {
	return len(bytes.Trim(key, string(key[:1]))) == 0
}

// isRepeatedPattern catches keys built from a short unit, e.g. "abcabcabc".
func isRepeatedPattern(key []byte) bool {
	for unit := 2; unit <= 4; unit++ {
		if len(key) < unit*3 {
			break
		}
		repeated := true
		for i := unit; i < len(key); i++ {
			if key[i] != key[i%unit] {
				repeated = false
				break
			}
		}
		if repeated {
			return true
		}
	}
	return false
}

func isSequence(key []byte) bool {
	n := min(len(key), 8)
	up, down := true, true
	for i := 1; i < n; i++ {
		up = up && key[i] == key[i-1]+1
		down = down && key[i] == key[i-1]-1
	}
	return up || down
}

func uniqueRatio(key []byte) float64 {
	var seen [256]bool
	unique := 0
	for _, b := range key {
		if !seen[b] {
			seen[b] = true
			unique++
		}
	}
	return float64(unique) / float64(len(key))
}

func charClasses(key []byte) int {
	var lower, upper, digit, other int
	for _, b := range key {
		switch {
		case b >= 'a' && b <= 'z':
			lower = 1
		case b >= 'A' && b <= 'Z':
			upper = 1
		case b >= '0' && b <= '9':
			digit = 1
		default:
			other = 1
		}
	}
	return lower + upper + digit + other
}
