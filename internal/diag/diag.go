// Package diag prints cargo-style user-facing diagnostics and
// configures the process-wide color and logging modes.
package diag

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ColorMode controls when ANSI escapes are emitted.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

// ParseColorMode parses an --color / CABIN_TERM_COLOR value.
func ParseColorMode(s string) (ColorMode, error) {
	switch s {
	case "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	}
	return ColorAuto, fmt.Errorf("invalid color mode: `%s`", s)
}

// Config is the process-wide diagnostic configuration, built once
// during argument parsing and treated as read-only afterwards.
type Config struct {
	Color     ColorMode
	Verbosity int // 0 normal, 1 verbose, 2 trace
	Quiet     bool
}

var cfg Config

// Setup applies the configuration: color enablement and the zerolog
// global level (CABIN_LOG overrides verbosity-derived defaults).
func Setup(c Config) {
	cfg = c

	switch c.Color {
	case ColorAlways:
		color.NoColor = false
	case ColorNever:
		color.NoColor = true
	case ColorAuto:
		color.NoColor = !stderrIsTTY()
	}

	level := zerolog.WarnLevel
	switch {
	case c.Verbosity >= 2:
		level = zerolog.TraceLevel
	case c.Verbosity == 1:
		level = zerolog.DebugLevel
	}
	if env := os.Getenv("CABIN_LOG"); env != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(env)); err == nil {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:     os.Stderr,
		NoColor: color.NoColor,
	}).With().Timestamp().Logger()
}

// IsVerbose reports whether -v (or more) was given.
func IsVerbose() bool { return cfg.Verbosity > 0 }

// IsQuiet reports whether -q was given.
func IsQuiet() bool { return cfg.Quiet }

// ShouldColorStderr reports whether escapes will reach stderr, which
// also decides -fdiagnostics-color for the compiler.
func ShouldColorStderr() bool {
	switch cfg.Color {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	return stderrIsTTY()
}

func stderrIsTTY() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

const headerWidth = 12

// Info prints a right-aligned bold-green heading followed by the
// formatted message, the way cargo reports progress. Suppressed by -q.
func Info(header, format string, args ...any) {
	if cfg.Quiet {
		return
	}
	head := color.New(color.FgGreen, color.Bold).
		Sprintf("%*s", headerWidth, header)
	fmt.Fprintf(os.Stderr, "%s %s\n", head, fmt.Sprintf(format, args...))
}

// Warn prints a yellow-bold "Warning:" line to stderr.
func Warn(format string, args ...any) {
	head := color.New(color.FgYellow, color.Bold).Sprint("Warning:")
	fmt.Fprintf(os.Stderr, "%s %s\n", head, fmt.Sprintf(format, args...))
}

// Error prints a red-bold "Error:" line to stderr.
func Error(format string, args ...any) {
	head := color.New(color.FgRed, color.Bold).Sprint("Error:")
	fmt.Fprintf(os.Stderr, "%s %s\n", head, fmt.Sprintf(format, args...))
}

// PrintErrorChain prints err as a red Error: line followed by a
// yellow "Caused by:" line per wrapped cause.
func PrintErrorChain(err error) {
	// Split the %w chain: each Unwrap step that shortens the message
	// becomes a cause line.
	type unwrapper interface{ Unwrap() error }

	msg := err.Error()
	var causes []string
	for e := err; ; {
		u, isWrapped := e.(unwrapper)
		if !isWrapped {
			break
		}
		e = u.Unwrap()
		if e == nil {
			break
		}
		causes = append(causes, e.Error())
	}

	if len(causes) > 0 {
		// Trim the immediate cause's text off the headline message where
		// it is a strict suffix, so the chain reads top-down.
		if cut, found := strings.CutSuffix(msg, ": "+causes[0]); found {
			msg = cut
		}
	}

	Error("%s", msg)
	causedBy := color.New(color.FgYellow, color.Bold).Sprint("Caused by:")
	for i, cause := range causes {
		if i+1 < len(causes) {
			if cut, found := strings.CutSuffix(cause, ": "+causes[i+1]); found {
				cause = cut
			}
		}
		fmt.Fprintf(os.Stderr, "%s %s\n", causedBy, cause)
	}
}
