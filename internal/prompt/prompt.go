// Package prompt provides simple interactive prompts for terminal input.
package prompt

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// Input and Output are the prompt streams. Tests replace them.
var (
	Input  io.Reader = os.Stdin
	Output io.Writer = os.Stderr
)

// scanLine reads a single line byte-by-byte with no buffering, so nothing
// past the newline is consumed from the shared reader.
func scanLine() (string, bool) {
	var buf []byte
	b := make([]byte, 1)
	for {
		n, err := Input.Read(b)
		if err != nil || n == 0 {
			if len(buf) > 0 {
				return strings.TrimSpace(string(buf)), true
			}
			return "", false
		}
		if b[0] == '\n' {
			return strings.TrimSpace(string(buf)), true
		}
		if b[0] != '\r' {
			buf = append(buf, b[0])
		}
	}
}

// IsInteractive reports whether Input is a terminal.
func IsInteractive() bool {
	f, ok := Input.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Confirm asks a yes/no question and returns true for yes.
func Confirm(question string) bool {
	fmt.Fprintf(Output, "%s (yes/no): ", question)
	answer, ok := scanLine()
	if !ok {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "yes" || answer == "y"
}

// SelectWithOther displays a numbered list and lets the user pick one item.
// A number selects from the list; with allowOther, any non-numeric text is
// accepted as-is, and an extra "Other" entry reads a value on the next line.
// Without allowOther, text is matched case-insensitively against the items.
// Returns "" when no valid choice was made.
func SelectWithOther(label string, items []string, allowOther bool) string {
	maxAttempts := 3
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt == 0 {
			printMenu(label, items, allowOther)
		}
		fmt.Fprint(Output, "Enter choice: ")
		input, ok := scanLine()
		if !ok {
			return ""
		}
		if input == "" {
			fmt.Fprintln(Output, "  Invalid choice, try again.")
			printMenu(label, items, allowOther)
			continue
		}

		if idx, err := strconv.Atoi(input); err == nil {
			if idx >= 1 && idx <= len(items) {
				return items[idx-1]
			}
			if allowOther && idx == len(items)+1 {
				return ReadLine("Enter value")
			}
			fmt.Fprintln(Output, "  Invalid choice, try again.")
			printMenu(label, items, allowOther)
			continue
		}

		if allowOther {
			return input
		}

		for _, item := range items {
			if strings.EqualFold(item, input) {
				return item
			}
		}

		fmt.Fprintln(Output, "  Invalid choice, try again.")
		printMenu(label, items, allowOther)
	}
	return ""
}

func printMenu(label string, items []string, allowOther bool) {
	fmt.Fprintf(Output, "%s:\n", label)
	for i, item := range items {
		fmt.Fprintf(Output, "  [%d] %s\n", i+1, item)
	}
	if allowOther {
		fmt.Fprintf(Output, "  [%d] Other (enter manually)\n", len(items)+1)
	}
}

// ReadLine prompts for a single line of text input.
func ReadLine(label string) string {
	fmt.Fprintf(Output, "%s: ", label)
	line, _ := scanLine()
	return line
}
