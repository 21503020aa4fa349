package format

import (
	"testing"
	"time"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		max    int
		expect string
	}{
		{"over limit", "An issue title that is more than twenty-five characters", 25, "An issue title that is..."},
		{"exact limit", "B is a 25 character title", 25, "B is a 25 character title"},
		{"short", "Short", 25, "Short"},
		{"empty", "", 25, ""},
		{"single long word", "Supercalifragilistic", 5, "..."},
		{"cut on space", "one two three", 8, "one two..."},
		{"multibyte", "héllo wörld again", 12, "héllo wörld..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.text, tt.max); got != tt.expect {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.text, tt.max, got, tt.expect)
			}
		})
	}
}

func TestTruncatePtr_Nil(t *testing.T) {
	if got := TruncatePtr(nil, 25); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}

	title := "An issue title that is more than twenty-five characters"
	if got := TruncatePtr(&title, 25); got != "An issue title that is..." {
		t.Errorf("unexpected truncation %q", got)
	}
}

func TestCreatedDate(t *testing.T) {
	created := time.Date(2009, time.October, 9, 22, 32, 41, 0, time.UTC)

	if got := CreatedDate(created); got != "10/09/2009" {
		t.Errorf("expected 10/09/2009, got %q", got)
	}
	if got := CreatedDate(time.Time{}); got != "" {
		t.Errorf("expected empty for zero time, got %q", got)
	}
}

func TestRelativeTo(t *testing.T) {
	now := time.Date(2020, time.January, 10, 12, 0, 0, 0, time.UTC)

	if got := RelativeTo(now.Add(-72*time.Hour), now); got != "3 days ago" {
		t.Errorf("expected '3 days ago', got %q", got)
	}
	if got := RelativeTo(time.Time{}, now); got != "" {
		t.Errorf("expected empty for zero time, got %q", got)
	}
}
