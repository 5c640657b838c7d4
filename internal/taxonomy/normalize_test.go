package taxonomy

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase", "Deep House", "deep house"},
		{"punctuation stripped", "Techno!!!", "techno"},
		{"ampersand kept", "Drum & Bass", "drum & bass"},
		{"hyphen kept", "Avant-Garde", "avant-garde"},
		{"whitespace collapsed", "  deep \t house  ", "deep house"},
		{"diacritics folded", "Café del Mar", "cafe del mar"},
		{"alias dnb", "DNB", "drum & bass"},
		{"alias d&b", "D&B", "drum & bass"},
		{"alias drum and bass", "Drum And Bass", "drum & bass"},
		{"empty", "", ""},
		{"only punctuation", "?!(),.", ""},
		{"unicode garbage survives", "\x00\xff", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Deep House", "DNB", "D&B", "drum and bass", "Café del Mar",
		"Progressive  Trance!!", "", "   ", "chill", "Psy Trance",
		"Intelligent Dance Music", "Ætherial – Sounds",
	}
	for _, s := range inputs {
		once := Normalize(s)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", s, once, twice)
		}
	}
}

func TestAliasTargetsAreFixedPoints(t *testing.T) {
	for key, target := range aliases {
		if Normalize(target) != target {
			t.Errorf("alias %q -> %q is not a fixed point of Normalize", key, target)
		}
	}
}
