package console

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// StatusKind selects the label and color of a status line.
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusOK
	StatusWarn
	StatusError
)

const (
	ansiReset   = "\x1b[0m"
	ansiRed     = "\x1b[31m"
	ansiGreen   = "\x1b[32m"
	ansiYellow  = "\x1b[33m"
	ansiBlue    = "\x1b[34m"
	ansiMagenta = "\x1b[35m"
)

const (
	statusLabelWidth = 20
	indent           = "   "
)

// RenderStatusLine formats "label: [KIND] message" padded to a fixed width.
func RenderStatusLine(label string, kind StatusKind, message string, colorize bool) string {
	statusText := kind.label()
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", indent, statusLabelWidth, label+":", statusText)
	if colorize {
		return paint(kind.color(), base)
	}
	return base
}

func (k StatusKind) label() string {
	switch k {
	case StatusOK:
		return "OK"
	case StatusWarn:
		return "WARN"
	case StatusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func (k StatusKind) color() string {
	switch k {
	case StatusOK:
		return ansiGreen
	case StatusWarn:
		return ansiYellow
	case StatusError:
		return ansiRed
	default:
		return ansiBlue
	}
}

// RenderSectionHeader returns the "=== Title ===" banner.
func RenderSectionHeader(title string, colorize bool) string {
	line := fmt.Sprintf("%s=== %s ===", indent, strings.TrimSpace(title))
	if colorize {
		return paint(ansiMagenta, line)
	}
	return line
}

func paint(color, text string) string {
	if color == "" {
		return text
	}
	return color + text + ansiReset
}

// ShouldColorize reports whether writer is a terminal.
func ShouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
