package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Maria Silva", "Maria Silva"},
		{"leading and trailing", "  Maria Silva  ", "Maria Silva"},
		{"inner runs", "Maria   Silva", "Maria Silva"},
		{"tabs and newlines", "Maria\t\nSilva", "Maria Silva"},
		{"empty", "", ""},
		{"only whitespace", "   \t ", ""},
		{"unicode preserved", "José  Álvaro", "José Álvaro"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.input); got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{" Maria@Example.COM ", "maria@example.com"},
		{"maria@example.com", "maria@example.com"},
		{"mar ia@example.com", "mar ia@example.com"}, // left for the validator to reject
	}

	for _, tt := range tests {
		if got := NormalizeEmail(tt.input); got != tt.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeKind(t *testing.T) {
	if got := NormalizeKind("  Online "); got != "online" {
		t.Errorf("NormalizeKind = %q, want %q", got, "online")
	}
}
