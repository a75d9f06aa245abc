package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestPromptConfirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "yes lower", input: "y\n", want: true},
		{name: "yes upper", input: "Y\n", want: true},
		{name: "no", input: "n\n", want: false},
		{name: "empty", input: "\n", want: false},
		{name: "eof", input: "", want: false},
		{name: "spaces", input: "  y  \n", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer

			got := promptConfirm(strings.NewReader(tt.input), &out, "Sure? ")
			if got != tt.want {
				t.Errorf("promptConfirm(%q) = %v, want %v", tt.input, got, tt.want)
			}

			if out.String() != "Sure? " {
				t.Errorf("prompt written = %q", out.String())
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "empty path",
			input:   "",
			wantErr: true,
		},
		{
			name:    "absolute path",
			input:   "/tmp/test",
			wantErr: false,
		},
		{
			name:    "home path",
			input:   "~/test",
			wantErr: false,
		},
		{
			name:    "relative path",
			input:   "test/path",
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := expandPath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("expandPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}

			if !tt.wantErr && result == "" {
				t.Errorf("expandPath(%q) returned empty string", tt.input)
			}
		})
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"a longer recipe name", 10, "a longe..."},
		{"abcdef", 3, "abc"},
		{"crème brûlée tart", 9, "crème ..."},
	}

	for _, tt := range tests {
		if got := truncateString(tt.input, tt.maxLen); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
		}
	}
}

func TestPadRightAndCenter(t *testing.T) {
	if got := padRight("ab", 5); got != "ab   " {
		t.Errorf("padRight = %q", got)
	}

	if got := padRight("abcdef", 3); got != "abcdef" {
		t.Errorf("padRight long = %q", got)
	}

	if got := centerString("ab", 6); got != "  ab  " {
		t.Errorf("centerString = %q", got)
	}
}

func TestPrintInfoBox(t *testing.T) {
	var out bytes.Buffer

	printInfoBox(&out, "Pancakes", []boxItem{{"Author", "Ann"}, {"Calories", ""}})

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("printInfoBox wrote %d lines, want 5:\n%s", len(lines), out.String())
	}

	if !strings.Contains(lines[3], "Author: Ann") {
		t.Errorf("missing author line: %q", lines[3])
	}

	if strings.Contains(out.String(), "Calories") {
		t.Error("empty values must be skipped")
	}
}
