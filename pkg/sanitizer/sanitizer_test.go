package sanitizer

import (
	"reflect"
	"testing"
)

func TestSanitizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "valid E.164 format", input: "+972541234567", want: "+972541234567"},
		{name: "with spaces", input: "+972 54 123 4567", want: "+972541234567"},
		{name: "with dashes", input: "+972-54-123-4567", want: "+972541234567"},
		{name: "national israeli format", input: "054-123-4567", want: "+972541234567"},
		{name: "us with parentheses", input: "+1 (212) 555-1234", want: "+12125551234"},
		{name: "leading and trailing spaces", input: "  +972541234567  ", want: "+972541234567"},
		{name: "empty string", input: "", want: ""},
		{name: "only whitespace", input: "   ", want: ""},
		{name: "letters only", input: "not-a-phone", want: ""},
		{name: "too short", input: "+1", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizePhone(tt.input); got != tt.want {
				t.Errorf("SanitizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizePhone_Idempotent(t *testing.T) {
	once := SanitizePhone("054 123 4567")
	if twice := SanitizePhone(once); twice != once {
		t.Errorf("second pass changed %q into %q", once, twice)
	}
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  Dana's   Hair\tStudio ", "Dana's Hair Studio"},
		{"line\nbreak", "line break"},
		{"bell\x07char", "bellchar"},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := SanitizeText(tt.input); got != tt.want {
			t.Errorf("SanitizeText(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSanitizeClockList(t *testing.T) {
	got := SanitizeClockList([]string{"14:00", " 9:30", "09:30", "", "08:15"})
	want := []string{"08:15", "09:30", "14:00"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSanitizeEmail(t *testing.T) {
	if got := SanitizeEmail("  Dana@Example.COM "); got != "dana@example.com" {
		t.Errorf("got %q", got)
	}
}
