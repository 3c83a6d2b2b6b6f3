package phone

import "testing"

func TestCanonical(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"bare national number", "4155552671", "14155552671"},
		{"formatted national number", "(415) 555-2671", "14155552671"},
		{"e164 input", "+14155552671", "14155552671"},
		{"country code without plus", "14155552671", "14155552671"},
		{"dashes and spaces", "415 555 2671", "14155552671"},
		{"too short passes through stripped", "12345", "12345"},
		{"no digits", "abc", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Canonical(tt.input); got != tt.want {
				t.Errorf("Canonical(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCanonicalSameNumberDifferentFormats(t *testing.T) {
	formats := []string{
		"4155552671",
		"(415) 555-2671",
		"+1 415-555-2671",
		"1-415-555-2671",
	}

	want := Canonical(formats[0])
	for _, f := range formats[1:] {
		if got := Canonical(f); got != want {
			t.Errorf("Canonical(%q) = %q, want %q", f, got, want)
		}
	}
}
