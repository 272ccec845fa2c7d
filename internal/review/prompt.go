package review

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

type line struct {
	text string
	err  error
}

// TerminalPrompter reads answers line by line. Reading happens on its own
// goroutine so a cancelled context can interrupt a blocked prompt.
type TerminalPrompter struct {
	out   io.Writer
	lines chan line
	color bool
}

// NewTerminalPrompter starts reading from in. Set color when out is a TTY.
func NewTerminalPrompter(in io.Reader, out io.Writer, color bool) *TerminalPrompter {
	p := &TerminalPrompter{out: out, lines: make(chan line), color: color}
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			p.lines <- line{text: scanner.Text()}
		}
		if err := scanner.Err(); err != nil {
			p.lines <- line{err: err}
		}
		close(p.lines)
	}()
	return p
}

// Choose renders item and waits for a triage token.
func (p *TerminalPrompter) Choose(ctx context.Context, item Item, position, total int) (string, error) {
	fmt.Fprintf(p.out, "\n[%d/%d] %s  %s\n", position, total, item.Sport, p.bold(filepath.Base(item.File)))
	fmt.Fprintf(p.out, "  path:       %s\n", item.File)
	if s := item.Suggestion(); s != "" {
		fmt.Fprintf(p.out, "  suggested:  %s (confidence %.2f)\n", s, item.Confidence)
	} else {
		fmt.Fprintf(p.out, "  suggested:  none\n")
	}
	if item.Reason != "" {
		fmt.Fprintf(p.out, "  reason:     %s\n", item.Reason)
	}
	options := "  1) ignore forever  2) enter name"
	if item.Suggestion() != "" {
		options += "  3) accept suggestion"
	}
	fmt.Fprintln(p.out, options+"  s) skip  q) quit")
	fmt.Fprint(p.out, "> ")
	return p.next(ctx)
}

// AskName waits for a manual file name.
func (p *TerminalPrompter) AskName(ctx context.Context, item Item) (string, error) {
	fmt.Fprintf(p.out, "New name for %s (extension optional): ", filepath.Base(item.File))
	return p.next(ctx)
}

func (p *TerminalPrompter) next(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		fmt.Fprintln(p.out)
		return "", ctx.Err()
	case l, ok := <-p.lines:
		if !ok {
			return "", io.EOF
		}
		if l.err != nil {
			return "", l.err
		}
		return strings.TrimSpace(l.text), nil
	}
}

func (p *TerminalPrompter) bold(s string) string {
	if !p.color {
		return s
	}
	return "\x1b[1m" + s + "\x1b[0m"
}
