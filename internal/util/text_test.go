package util

import "testing"

func TestSanitizePostgresText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain utf8",
			input: "De Tweede Kamer debatteerde over de begroting.",
			want:  "De Tweede Kamer debatteerde over de begroting.",
		},
		{
			name:  "contains null byte",
			input: "motie\x00tekst",
			want:  "motietekst",
		},
		{
			name:  "contains invalid utf8",
			input: string([]byte{'a', 0xff, 'b'}),
			want:  "ab",
		},
		{
			name:  "crlf joined paragraph",
			input: "Eerste zin.\r\nTweede zin.",
			want:  "Eerste zin.\nTweede zin.",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizePostgresText(tt.input)
			if got != tt.want {
				t.Fatalf("unexpected sanitized value: got %q, want %q", got, tt.want)
			}
		})
	}
}
