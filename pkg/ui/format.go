package ui

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/agentsync-dev/agentsync/pkg/errors"
)

// Format selects how command output is rendered.
type Format int

const (
	// FormatAuto picks term or text from the output's capabilities.
	FormatAuto Format = iota

	// FormatTerm renders styled tables and colors.
	FormatTerm

	// FormatText renders plain text, for pipes and logs.
	FormatText

	// FormatJSON renders the machine-readable form.
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatTerm:
		return "term"
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	default:
		return "auto"
	}
}

// ParseFormat maps a --format flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "term", "terminal":
		return FormatTerm, nil
	case "text", "plain":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	}
	return FormatAuto, errors.Newf(errors.ErrInvalidInput, "unknown output format %q", s)
}

// Resolve turns FormatAuto into a concrete format for the given output.
// NO_COLOR, a piped output, or a colorless terminal all demote to text.
func Resolve(requested Format, output *os.File) Format {
	if requested != FormatAuto {
		return requested
	}
	if os.Getenv("NO_COLOR") != "" {
		return FormatText
	}
	if !isatty.IsTerminal(output.Fd()) && !isatty.IsCygwinTerminal(output.Fd()) {
		return FormatText
	}
	if termenv.ColorProfile() == termenv.Ascii {
		return FormatText
	}
	return FormatTerm
}
