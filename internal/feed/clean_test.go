package feed

import "testing"

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "named entities",
			input:    "&quot;Hello&quot; &amp; goodbye",
			expected: `"Hello" & goodbye`,
		},
		{
			name:     "numeric and hex entities",
			input:    "caf&#233; &#x2013; bar",
			expected: "café – bar",
		},
		{
			name:     "apostrophe variants",
			input:    "it&apos;s and it&#x27;s",
			expected: "it's and it's",
		},
		{
			name:     "strips markup tags",
			input:    "<b>Breaking</b>: storm <a href=\"/x\">hits</a> coast",
			expected: "Breaking : storm hits coast",
		},
		{
			name:     "strips entity-encoded tags",
			input:    "&lt;a href=&quot;/x&quot;&gt;Headline&lt;/a&gt; text",
			expected: "Headline text",
		},
		{
			name:     "collapses whitespace",
			input:    "  too \n\t many   spaces ",
			expected: "too many spaces",
		},
		{
			name:     "plain text untouched",
			input:    "Ordinary headline",
			expected: "Ordinary headline",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.expected {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("hello", 10); got != "hello" {
		t.Errorf("short string changed: %q", got)
	}
	if got := Truncate("hello world", 5); got != "hello" {
		t.Errorf("Truncate = %q, want %q", got, "hello")
	}
	// Rune-aware, not byte-aware.
	if got := Truncate("héllo", 2); got != "hé" {
		t.Errorf("Truncate = %q, want %q", got, "hé")
	}
}
