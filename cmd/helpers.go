package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// promptConfirm asks the user for confirmation and returns true if they confirm
// prompt should include the question (e.g., "Delete this recipe? [y/N]: ")
func promptConfirm(in io.Reader, out io.Writer, prompt string) bool {
	_, _ = fmt.Fprint(out, prompt)

	response, _ := bufio.NewReader(in).ReadString('\n')
	response = strings.TrimSpace(response)

	return response == "y" || response == "Y"
}

// expandPath expands ~ to the user's home directory and returns an absolute path
func expandPath(path string) (string, error) {
	if len(path) == 0 {
		return "", fmt.Errorf("path is empty")
	}

	// Expand ~ to home directory
	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}

		path = filepath.Join(home, path[1:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	return absPath, nil
}

// truncateString truncates a string to maxLen runes with ellipsis
func truncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}

	r := []rune(s)
	if maxLen <= 3 {
		return string(r[:maxLen])
	}

	return string(r[:maxLen-3]) + "..."
}

// padRight pads s with spaces to length runes
func padRight(s string, length int) string {
	n := utf8.RuneCountInString(s)
	if n >= length {
		return s
	}

	return s + strings.Repeat(" ", length-n)
}

// centerString centers a string in a field of given width
func centerString(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}

	padding := (width - n) / 2

	return fmt.Sprintf("%*s%s%*s", padding, "", s, width-n-padding, "")
}

// boxWidth is the standard width for info boxes
const boxWidth = 64

// printBoxHeader prints the top border of an info box with a title
func printBoxHeader(w io.Writer, title string) {
	_, _ = fmt.Fprintln(w, "╔"+strings.Repeat("═", boxWidth-2)+"╗")
	_, _ = fmt.Fprintf(w, "║%s║\n", centerString(truncateString(title, boxWidth-2), boxWidth-2))
	_, _ = fmt.Fprintln(w, "╠"+strings.Repeat("═", boxWidth-2)+"╣")
}

// printBoxLine prints a line inside an info box with label and value
func printBoxLine(w io.Writer, label, value string) {
	content := truncateString(fmt.Sprintf("  %s: %s", label, value), boxWidth-2)
	_, _ = fmt.Fprintf(w, "║%s║\n", padRight(content, boxWidth-2))
}

// printBoxFooter prints the bottom border of an info box
func printBoxFooter(w io.Writer) {
	_, _ = fmt.Fprintln(w, "╚"+strings.Repeat("═", boxWidth-2)+"╝")
}

// boxItem is one label/value line of an info box.
type boxItem struct {
	label string
	value string
}

// printInfoBox prints a complete info box with title and key-value pairs.
// Items with an empty value are skipped.
func printInfoBox(w io.Writer, title string, items []boxItem) {
	printBoxHeader(w, title)

	for _, it := range items {
		if it.value != "" {
			printBoxLine(w, it.label, it.value)
		}
	}

	printBoxFooter(w)
}
