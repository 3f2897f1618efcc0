package hub3

import (
	"errors"
	"regexp"
	"testing"
)

func TestGenerateReference_Vectors(t *testing.T) {
	tests := []struct {
		seed int64
		want string
	}{
		{0, "00000000000"},
		{1, "00000000019"},
		{19, "00000000191"},
		{42, "00000000426"},
		{12345, "00000123455"},
		{1234567890, "12345678903"},
		{9999999999, "99999999995"},
	}

	for _, tt := range tests {
		got, err := GenerateReference(tt.seed)
		if err != nil {
			t.Fatalf("GenerateReference(%d): unexpected error: %v", tt.seed, err)
		}
		if got != tt.want {
			t.Errorf("GenerateReference(%d): got %s, want %s", tt.seed, got, tt.want)
		}
	}
}

func TestGenerateReference_OutOfRange(t *testing.T) {
	for _, seed := range []int64{-1, MaxReferenceSeed + 1} {
		if _, err := GenerateReference(seed); !errors.Is(err, ErrSeedOutOfRange) {
			t.Errorf("GenerateReference(%d): expected ErrSeedOutOfRange, got %v", seed, err)
		}
	}
}

func TestGenerateReference_FormatAndChecksum(t *testing.T) {
	format := regexp.MustCompile(`^\d{11}$`)

	seeds := []int64{0, 7, 10, 99, 100, 4711, 65535, 1000000, 31415926, 271828182, 999999999, MaxReferenceSeed}
	for s := int64(1); s < MaxReferenceSeed; s = s*7 + 3 {
		seeds = append(seeds, s)
	}

	for _, seed := range seeds {
		ref, err := GenerateReference(seed)
		if err != nil {
			t.Fatalf("GenerateReference(%d): %v", seed, err)
		}
		if !format.MatchString(ref) {
			t.Errorf("GenerateReference(%d) = %q does not match ^\\d{11}$", seed, ref)
		}
		if !ValidateReference(ref) {
			t.Errorf("ValidateReference(%q) = false for generated reference", ref)
		}

		again, _ := GenerateReference(seed)
		if again != ref {
			t.Errorf("GenerateReference(%d) not deterministic: %s vs %s", seed, ref, again)
		}
	}
}

func TestValidateReference(t *testing.T) {
	tests := []struct {
		ref  string
		want bool
	}{
		{"00000000191", true},
		{"12345678903", true},
		{"12345678904", false},
		{"1234567890", false},
		{"123456789030", false},
		{"1234567890a", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidateReference(tt.ref); got != tt.want {
			t.Errorf("ValidateReference(%q): got %v, want %v", tt.ref, got, tt.want)
		}
	}
}

func TestCheckDigit_LowRemainderIsZero(t *testing.T) {
	// 0000000001: 1*2 = 2 -> r = 2 -> 9; 0000000005: 5*2 = 10 -> 11-10 = 1;
	// 0000000011: 1*2 + 1*3 = 5 -> 6; 0000000000 -> r = 0 -> 0.
	tests := map[string]int{
		"0000000001": 9,
		"0000000005": 1,
		"0000000011": 6,
		"0000000000": 0,
		"0000000006": 0, // 12 mod 11 = 1
	}
	for digits, want := range tests {
		if got := checkDigit(digits); got != want {
			t.Errorf("checkDigit(%s): got %d, want %d", digits, got, want)
		}
	}
}
