package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
)

// printer writes colored status lines. Colors follow color.NoColor, which
// honors NO_COLOR and disables itself when output is not a terminal.
type printer struct {
	out io.Writer
	err io.Writer
	mu  sync.Mutex
}

func newPrinter(out, errOut io.Writer) *printer {
	return &printer{out: out, err: errOut}
}

// Success prints a message in green with a checkmark prefix.
func (p *printer) Success(format string, a ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	msg := fmt.Sprintf(format, a...)
	if !strings.HasPrefix(msg, "✓") {
		msg = "✓ " + msg
	}
	green.Fprint(p.out, msg)
}

// Info prints a message in the default color.
func (p *printer) Info(format string, a ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format, a...)
}

// Detail prints a message in cyan.
func (p *printer) Detail(format string, a ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cyan.Fprintf(p.out, format, a...)
}

// Warning prints a message in yellow to the error stream.
func (p *printer) Warning(format string, a ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	yellow.Fprintf(p.err, "! "+format, a...)
}

// Error prints a titled error with optional suggestions to the error stream
// and returns an error carrying the title for cobra.
func (p *printer) Error(title string, cause error, suggestions ...string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	red.Fprintf(p.err, "%s\n", title)
	if cause != nil {
		fmt.Fprintf(p.err, "  %v\n", cause)
	}
	for _, s := range suggestions {
		fmt.Fprintf(p.err, "  hint: %s\n", s)
	}
	if cause == nil {
		return errors.New(title)
	}
	return fmt.Errorf("%s: %w", title, cause)
}
