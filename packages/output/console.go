package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

// Console writes human-readable status lines.
type Console struct {
	writer  io.Writer
	noColor bool
}

type ConsoleOption func(*Console)

func NewConsole(opts ...ConsoleOption) *Console {
	c := &Console{
		writer: os.Stderr,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.noColor {
		color.NoColor = true
	}
	return c
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(c *Console) {
		c.writer = w
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(c *Console) {
		c.noColor = nc
	}
}

// Status prints a one-line summary of a completed exchange.
func (c *Console) Status(code int, status string, d time.Duration, bytes int64) {
	var paint func(a ...any) string
	switch {
	case code >= 500:
		paint = color.New(color.FgRed, color.Bold).SprintFunc()
	case code >= 400:
		paint = color.New(color.FgYellow, color.Bold).SprintFunc()
	case code >= 300:
		paint = color.New(color.FgCyan, color.Bold).SprintFunc()
	default:
		paint = color.New(color.FgGreen, color.Bold).SprintFunc()
	}
	cyan := color.New(color.FgCyan).SprintFunc()
	fmt.Fprintf(c.writer, "%s %s\n", paint(status), cyan(fmt.Sprintf("(%dms, %s)", d.Milliseconds(), humanize.Bytes(uint64(bytes)))))
}

// Saved reports a response body written to a file.
func (c *Console) Saved(path string, bytes int64) {
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(c.writer, "%s %s (%s)\n", green("Saved"), path, humanize.Bytes(uint64(bytes)))
}

func (c *Console) Success(format string, args ...any) {
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(c.writer, "%s %s\n", green("✓"), fmt.Sprintf(format, args...))
}

func (c *Console) Info(format string, args ...any) {
	fmt.Fprintf(c.writer, format+"\n", args...)
}

func (c *Console) Warn(format string, args ...any) {
	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Fprintf(c.writer, "%s %s\n", yellow("Warning:"), fmt.Sprintf(format, args...))
}

func (c *Console) Error(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(c.writer, "%s %v\n", red("Error:"), err)
}
