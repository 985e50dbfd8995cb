package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "basic trim",
			input: "  hello  ",
			want:  "hello",
		},
		{
			name:  "multiple spaces",
			input: "hello    world",
			want:  "hello world",
		},
		{
			name:  "tabs and newlines",
			input: "hello\t\nworld",
			want:  "hello world",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeGuestInfo(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "collapse whitespace",
			input: "  John   Doe,\n with a dog ",
			want:  "John Doe, with a dog",
		},
		{
			name:  "drop control characters",
			input: "Kate\x00 Spring\x07",
			want:  "Kate Spring",
		},
		{
			name:  "preserve unicode",
			input: " Иван  Иванов ",
			want:  "Иван Иванов",
		},
		{
			name:  "only whitespace",
			input: " \t ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeGuestInfo(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeGuestInfo(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := NormalizeGuestInfo(got); again != got {
				t.Errorf("not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestNormalizeDescription(t *testing.T) {
	got := NormalizeDescription("  Sea view\nKing bed\x1b  ")
	if got != "Sea view\nKing bed" {
		t.Errorf("NormalizeDescription() = %q", got)
	}
}
