package domain

import "testing"

func TestFullName(t *testing.T) {
	tests := []struct {
		first, last, want string
	}{
		{"Ana", "Kovač", "Ana Kovač"},
		{"Ana", "", "Ana"},
		{"", "Kovač", "Kovač"},
		{" Ana ", " Kovač ", "Ana Kovač"},
		{"", "", ""},
	}

	for _, tt := range tests {
		c := Contact{FirstName: tt.first, LastName: tt.last}
		if got := c.FullName(); got != tt.want {
			t.Errorf("Contact{%q, %q}.FullName() = %q, want %q", tt.first, tt.last, got, tt.want)
		}
		u := Underaged{FirstName: tt.first, LastName: tt.last}
		if got := u.FullName(); got != tt.want {
			t.Errorf("Underaged{%q, %q}.FullName() = %q, want %q", tt.first, tt.last, got, tt.want)
		}
	}
}
