package repository

import "testing"

func TestSplitToken(t *testing.T) {
	tests := []struct {
		input  string
		id     int64
		hasID  bool
		secret string
	}{
		{"12|abc", 12, true, "abc"},
		{"abc", 0, false, "abc"},
		{"|abc", 0, false, "|abc"},
		{"x|abc", 0, false, "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			id, secret := splitToken(tt.input)
			if secret != tt.secret {
				t.Errorf("secret: got %q, want %q", secret, tt.secret)
			}
			if (id != nil) != tt.hasID {
				t.Fatalf("id presence: got %v, want %v", id != nil, tt.hasID)
			}
			if id != nil && *id != tt.id {
				t.Errorf("id: got %d, want %d", *id, tt.id)
			}
		})
	}
}

func TestHashToken(t *testing.T) {
	// sha256("secret")
	want := "2bb80d537b1da3e38bd30361aa855686bde0eacd7162fef6a25fe97bf527a25b"
	if got := hashToken("secret"); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}
