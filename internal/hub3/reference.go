package hub3

import (
	"fmt"
	"strconv"
)

const (
	referenceBaseLen = 10
	// MaxReferenceSeed is the largest seed that fits the 10-digit base.
	MaxReferenceSeed int64 = 9_999_999_999
)

// GenerateReference returns the 11-digit reference for seed: the seed
// zero-padded to 10 digits followed by a MOD-11 check digit.
func GenerateReference(seed int64) (string, error) {
	if seed < 0 || seed > MaxReferenceSeed {
		return "", fmt.Errorf("%w: %d", ErrSeedOutOfRange, seed)
	}
	base := fmt.Sprintf("%0*d", referenceBaseLen, seed)
	return base + strconv.Itoa(checkDigit(base)), nil
}

// ValidateReference reports whether ref is an 11-digit reference whose last
// digit is the MOD-11 check digit of the first ten.
func ValidateReference(ref string) bool {
	if len(ref) != referenceBaseLen+1 || !isDigits(ref) {
		return false
	}
	return int(ref[referenceBaseLen]-'0') == checkDigit(ref[:referenceBaseLen])
}

// checkDigit weighs digits right to left with 2,3,4,5,6,7 repeating.
func checkDigit(digits string) int {
	sum, weight := 0, 2
	for i := len(digits) - 1; i >= 0; i-- {
		sum += int(digits[i]-'0') * weight
		weight++
		if weight > 7 {
			weight = 2
		}
	}
	r := sum % 11
	if r < 2 {
		return 0
	}
	return 11 - r
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
