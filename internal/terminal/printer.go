package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

const (
	symbolInfo    = "ℹ"
	symbolSuccess = "✔"
	symbolWarning = "⚠"
	symbolError   = "✖"
	symbolSkipped = "─"
)

type styles struct {
	info    lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	muted   lipgloss.Style
	dim     lipgloss.Style
	bold    lipgloss.Style
	key     lipgloss.Style
	plain   lipgloss.Style
}

func newStyles(renderer *lipgloss.Renderer) styles {
	return styles{
		info:    renderer.NewStyle().Foreground(lipgloss.Color("4")),
		success: renderer.NewStyle().Foreground(lipgloss.Color("2")),
		warning: renderer.NewStyle().Foreground(lipgloss.Color("3")),
		failure: renderer.NewStyle().Foreground(lipgloss.Color("1")),
		muted:   renderer.NewStyle().Foreground(lipgloss.Color("8")),
		dim:     renderer.NewStyle().Faint(true),
		bold:    renderer.NewStyle().Bold(true),
		key:     renderer.NewStyle().Foreground(lipgloss.Color("6")),
		plain:   renderer.NewStyle(),
	}
}

// Printer writes operator-facing output. Errors go to the error writer, all
// other output to out.
type Printer struct {
	out    io.Writer
	errOut io.Writer
	styled bool
	styles styles
}

// New builds a printer. Colour is enabled only when out is a terminal.
func New(out, errOut io.Writer) *Printer {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	renderer := lipgloss.NewRenderer(out)
	return &Printer{
		out:    out,
		errOut: errOut,
		styled: isTerminal(out),
		styles: newStyles(renderer),
	}
}

// Styled reports whether output goes to a terminal.
func (p *Printer) Styled() bool { return p.styled }

// Out returns the standard output writer.
func (p *Printer) Out() io.Writer { return p.out }

func (p *Printer) Info(message string) {
	p.line(p.styles.info.Render(symbolInfo), p.styles.info.Render(message))
}

func (p *Printer) Success(message string) {
	p.line(p.styles.success.Render(symbolSuccess), p.styles.success.Render(message))
}

func (p *Printer) Warning(message string) {
	p.line(p.styles.warning.Render(symbolWarning), p.styles.warning.Render(message))
}

func (p *Printer) Error(message string) {
	fmt.Fprintf(p.errOut, "%s %s\n", p.styles.failure.Render(symbolError), p.styles.failure.Render(message))
}

// Row is a key/value pair rendered inside a box.
type Row struct {
	Key   string
	Value string
}

// Section prints a titled box of key/value rows.
func (p *Printer) Section(title string, rows []Row) {
	fmt.Fprintf(p.out, "%s %s\n", p.styles.dim.Render("┌"), p.styles.bold.Render(title))
	for _, row := range rows {
		fmt.Fprintf(p.out, "%s %s: %s\n", p.rail(), p.styles.key.Render(row.Key), row.Value)
	}
	fmt.Fprintln(p.out, p.styles.dim.Render("└"))
}

// Table prints rows under a bold header with columns padded to fit.
func (p *Printer) Table(headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, header := range headers {
		widths[i] = lipgloss.Width(header)
	}
	for _, row := range rows {
		for i := range min(len(row), len(widths)) {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	format := func(cells []string, style lipgloss.Style) string {
		parts := make([]string, len(widths))
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			parts[i] = style.Render(cell) + strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}

	fmt.Fprintln(p.out, format(headers, p.styles.bold))
	for _, row := range rows {
		fmt.Fprintln(p.out, format(row, p.styles.plain))
	}
}

func (p *Printer) line(prefix, message string) {
	fmt.Fprintf(p.out, "%s %s\n", prefix, message)
}

func (p *Printer) rail() string {
	return p.styles.dim.Render("│")
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
