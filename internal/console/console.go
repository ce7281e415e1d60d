package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"kbmatch/internal/reconcile"
	"kbmatch/internal/record"
)

// Console prompts the operator on a terminal.
type Console struct {
	in       *lineReader
	out      io.Writer
	colorize bool
	bell     bool

	mu sync.Mutex
}

var (
	_ reconcile.Prompter = (*Console)(nil)
	_ reconcile.Notifier = (*Console)(nil)
)

// Option configures a Console.
type Option func(*Console)

// WithColor forces colored output on or off.
func WithColor(enabled bool) Option {
	return func(c *Console) { c.colorize = enabled }
}

// WithBell rings the terminal bell before each prompt.
func WithBell(enabled bool) Option {
	return func(c *Console) { c.bell = enabled }
}

// New builds a console. Colors and the bell default to on when out is a terminal.
func New(in io.Reader, out io.Writer, opts ...Option) *Console {
	tty := ShouldColorize(out)
	c := &Console{
		in:       newLineReader(in),
		out:      out,
		colorize: tty,
		bell:     tty,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Instructions prints the key legend shown before a run.
func (c *Console) Instructions() {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, RenderSectionHeader("Instructions", c.colorize))
	fmt.Fprintf(c.out, "%s• Press %s to go on\n", indent, c.highlight("return"))
	fmt.Fprintf(c.out, "%s• Press %s to confirm\n", indent, c.highlight("y"))
	fmt.Fprintf(c.out, "%s• Press %s to skip to the next record\n", indent, c.highlight("s"))
	fmt.Fprintf(c.out, "%s• Type %s (or just the id) to pick an entity manually\n", indent, c.highlight("id Q1067"))
	fmt.Fprintln(c.out)
}

// Section prints a section banner such as "Person Search".
func (c *Console) Section(title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, RenderSectionHeader(title, c.colorize))
	fmt.Fprintln(c.out)
}

// Status prints one status line.
func (c *Console) Status(label string, kind StatusKind, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, RenderStatusLine(label, kind, message, c.colorize))
}

func (c *Console) Confirm(ctx context.Context, name string, candidate reconcile.Candidate) (reconcile.Response, error) {
	c.mu.Lock()
	fmt.Fprintf(c.out, "%s%s\n\n", indent, c.highlight(name))
	fmt.Fprintf(c.out, "%s%s\n", indent, candidate.Title())
	if lifespan := formatLifespan(candidate); lifespan != "" {
		fmt.Fprintf(c.out, "%s%s\n", indent, lifespan)
	}
	fmt.Fprintln(c.out)
	c.mu.Unlock()
	return c.ask(ctx, "Confirm?")
}

func (c *Console) ManualID(ctx context.Context, name string) (reconcile.Response, error) {
	c.mu.Lock()
	fmt.Fprintf(c.out, "%s%s\n\n", indent, c.highlight(name))
	fmt.Fprintf(c.out, "%s• No matches found\n\n", indent)
	c.mu.Unlock()
	return c.ask(ctx, "Insert ID:")
}

// Notify prints a notice without waiting for input.
func (c *Console) Notify(notice reconcile.Notice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	subject := c.highlight(notice.Subject)
	if notice.Warn {
		subject = c.paint(ansiRed, notice.Subject)
	}
	fmt.Fprintf(c.out, "%s%s • %s\n\n", indent, subject, notice.Detail)
}

func (c *Console) ask(ctx context.Context, message string) (reconcile.Response, error) {
	c.mu.Lock()
	prefix := ""
	if c.bell {
		prefix = "\a"
	}
	fmt.Fprintf(c.out, "%s%s>>> %s ", prefix, indent, c.paint(ansiGreen, message))
	c.mu.Unlock()

	text, err := c.in.ReadLine(ctx)
	if err != nil {
		fmt.Fprintln(c.out)
		if errors.Is(err, io.EOF) {
			return reconcile.Response{}, context.Canceled
		}
		return reconcile.Response{}, err
	}
	fmt.Fprintln(c.out)
	return reconcile.ParseResponse(text), nil
}

func (c *Console) highlight(text string) string {
	return c.paint(ansiYellow, text)
}

func (c *Console) paint(color, text string) string {
	if !c.colorize {
		return text
	}
	return paint(color, text)
}

func formatLifespan(candidate reconcile.Candidate) string {
	birth := record.Deref(candidate.Birth)
	death := record.Deref(candidate.Death)
	if birth == "" && death == "" {
		return ""
	}
	parts := []string{orQuestion(birth), orQuestion(death)}
	out := strings.Join(parts, " – ")
	if gender := record.Deref(candidate.Gender); gender != "" {
		out += " • " + gender
	}
	return out
}

func orQuestion(value string) string {
	if value == "" {
		return "?"
	}
	return value
}
