package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/goliatone/go-privateplot/internal/publish"
)

var ErrNoTerminal = errors.New("no terminal available for interactive input")

// Prompter asks yes/no questions on the terminal. Anything other than "y" or
// "yes" is a no. A single goroutine owns the input reader; a read abandoned by
// a cancelled Confirm is answered by the next call. Confirm is not safe for
// concurrent use.
type Prompter struct {
	printer *Printer
	in      *bufio.Reader

	start    sync.Once
	requests chan struct{}
	answers  chan answer
	pending  bool
}

type answer struct {
	line string
	err  error
}

var _ publish.Prompter = (*Prompter)(nil)

// NewPrompter reads answers from in.
func NewPrompter(printer *Printer, in io.Reader) *Prompter {
	if in == nil {
		in = os.Stdin
	}
	return &Prompter{
		printer:  printer,
		in:       bufio.NewReader(in),
		requests: make(chan struct{}, 1),
		answers:  make(chan answer, 1),
	}
}

// Confirm prints question and waits for an answer or for ctx to end.
func (p *Prompter) Confirm(ctx context.Context, question string) (bool, error) {
	s := p.printer.styles
	fmt.Fprintf(p.printer.out, "%s %s %s ", s.warning.Render(symbolWarning), s.warning.Render(question), s.dim.Render("[y/N]"))

	p.start.Do(func() { go p.readLines() })
	if !p.pending {
		p.requests <- struct{}{}
		p.pending = true
	}

	select {
	case <-ctx.Done():
		fmt.Fprintln(p.printer.out)
		return false, ctx.Err()
	case got := <-p.answers:
		p.pending = false
		if got.err != nil && !errors.Is(got.err, io.EOF) {
			return false, fmt.Errorf("read answer: %w", got.err)
		}
		if errors.Is(got.err, io.EOF) {
			fmt.Fprintln(p.printer.out)
		}
		switch strings.ToLower(strings.TrimSpace(got.line)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}

// readLines reads one line per request so input is never consumed ahead of a
// question.
func (p *Prompter) readLines() {
	for range p.requests {
		line, err := p.in.ReadString('\n')
		p.answers <- answer{line: line, err: err}
	}
}

// ReadSecret prompts for a value on the controlling terminal with echo off.
func ReadSecret(printer *Printer, prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", ErrNoTerminal
	}
	fmt.Fprintf(printer.errOut, "%s ", prompt)
	value, err := term.ReadPassword(fd)
	fmt.Fprintln(printer.errOut)
	if err != nil {
		return "", fmt.Errorf("read secret: %w", err)
	}
	return strings.TrimSpace(string(value)), nil
}
