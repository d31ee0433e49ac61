package utils

import "testing"

func TestCapitalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"tester", "Tester"},
		{"implementor", "Implementor"},
		{"refactorer", "Refactorer"},
		{"", ""},
		{"Already", "Already"},
		{"two words", "Two Words"},
	}
	for _, tt := range tests {
		if got := Capitalize(tt.in); got != tt.want {
			t.Errorf("Capitalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
