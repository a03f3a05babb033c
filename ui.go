package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"library-console/library"
)

const dateLayout = "2006-01-02"

var (
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorMuted   = lipgloss.Color("#6B7280")
	colorPrimary = lipgloss.Color("#7C3AED")

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	primaryStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
)

func (c *console) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *console) println(args ...interface{}) {
	fmt.Fprintln(c.out, args...)
}

func (c *console) success(format string, args ...interface{}) {
	fmt.Fprint(c.out, successStyle.Render("✓ "))
	fmt.Fprintf(c.out, format+"\n", args...)
}

func (c *console) warning(format string, args ...interface{}) {
	fmt.Fprint(c.out, warningStyle.Render("⚠ "))
	fmt.Fprintf(c.out, format+"\n", args...)
}

func (c *console) failure(format string, args ...interface{}) {
	fmt.Fprint(c.out, errorStyle.Render("✗ "))
	fmt.Fprintf(c.out, format+"\n", args...)
}

func (c *console) muted(format string, args ...interface{}) {
	fmt.Fprintln(c.out, mutedStyle.Render(fmt.Sprintf(format, args...)))
}

func (c *console) section(title string) {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, primaryStyle.Render(title))
	fmt.Fprintln(c.out, mutedStyle.Render(strings.Repeat("═", lipgloss.Width(title))))
}

// report prints the user-facing message for a failed operation. Every error
// path in the menus ends here.
func (c *console) report(err error) {
	var ve *library.ValidationError
	switch {
	case errors.As(err, &ve):
		c.failure("Invalid input:")
		for _, p := range ve.Problems {
			c.printf("    - %s\n", p)
		}
	case errors.Is(err, library.ErrDuplicateIdentity):
		c.failure("Already registered: %v", err)
	case errors.Is(err, library.ErrUnavailable):
		c.failure("Book not available or not found.")
	case errors.Is(err, library.ErrNotFound):
		c.failure("Loan not found, already returned, or not yours.")
	case errors.Is(err, library.ErrForbidden):
		c.failure("That option is not available for this account.")
	default:
		c.failure("Error: %v", err)
	}
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func truncateString(s string, maxLength int) string {
	r := []rune(s)
	if len(r) <= maxLength {
		return s
	}
	return string(r[:maxLength-3]) + "..."
}
