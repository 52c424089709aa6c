package terminal

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/muesli/termenv"

	"github.com/goliatone/go-privateplot/internal/publish"
)

const progressWidth = 30

// Reporter renders publish progress in the terminal.
type Reporter struct {
	printer *Printer
	bar     progress.Model
}

var _ publish.Reporter = (*Reporter)(nil)

// NewReporter builds a reporter on top of printer.
func NewReporter(printer *Printer) *Reporter {
	opts := []progress.Option{
		progress.WithWidth(progressWidth),
		progress.WithFillCharacters('█', '░'),
		progress.WithSolidFill("4"),
	}
	if !printer.Styled() {
		opts = append(opts, progress.WithColorProfile(termenv.Ascii))
	}
	return &Reporter{printer: printer, bar: progress.New(opts...)}
}

func (r *Reporter) Drafts(paths []string) {
	p := r.printer
	p.Warning(fmt.Sprintf("Found %d draft files that will be skipped:", len(paths)))
	for _, path := range paths {
		fmt.Fprintf(p.out, "%s %s\n", p.rail(), p.styles.muted.Render(path))
	}
}

func (r *Reporter) Preview(files []string, total int) {
	p := r.printer
	p.Info(fmt.Sprintf("Found %d markdown files to process:", total))
	for _, file := range files {
		fmt.Fprintf(p.out, "%s %s\n", p.rail(), file)
	}
	if rest := total - len(files); rest > 0 {
		fmt.Fprintf(p.out, "%s %s\n", p.rail(), p.styles.muted.Render(fmt.Sprintf("... and %d more", rest)))
	}
}

func (r *Reporter) Start(total int) {
	p := r.printer
	fmt.Fprintln(p.out)
	p.line(p.styles.info.Render(symbolInfo),
		p.styles.info.Render("Starting to publish")+" "+p.styles.bold.Render(strconv.Itoa(total))+" "+p.styles.info.Render("articles"))
	fmt.Fprintln(p.out, p.styles.dim.Render("┌"))
}

func (r *Reporter) Progress(completed, total int, outcome publish.Outcome) {
	p := r.printer
	if p.styled {
		// clear the bar drawn by the previous call
		fmt.Fprint(p.out, "\r\x1b[2K")
	}
	fmt.Fprintf(p.out, "%s %s\n", p.rail(), r.describe(outcome))

	percent := 1.0
	if total > 0 {
		percent = float64(completed) / float64(total)
	}
	bar := fmt.Sprintf("%s %s", p.rail(), r.bar.ViewAs(percent))
	if p.styled && completed < total {
		fmt.Fprint(p.out, bar)
		return
	}
	if completed == total {
		fmt.Fprintln(p.out, bar)
	}
}

func (r *Reporter) describe(outcome publish.Outcome) string {
	s := r.printer.styles
	title := s.bold.Render(outcome.Title)
	switch outcome.Status {
	case publish.StatusPublished:
		action := "Updated"
		if outcome.Action == publish.ActionCreate {
			action = "Created"
		}
		return fmt.Sprintf("%s %s %s %s", s.success.Render(symbolSuccess), s.info.Render(action), s.dim.Render("→"), title)
	case publish.StatusSkipped:
		return fmt.Sprintf("%s %s %s", s.muted.Render(symbolSkipped), s.muted.Render(outcome.Title), s.muted.Render("("+outcome.Reason+")"))
	default:
		detail := ""
		if retries := outcome.Retries(); retries > 0 {
			detail = s.dim.Render(fmt.Sprintf(" (after %d retries)", retries))
		}
		return fmt.Sprintf("%s %s %s%s", s.failure.Render(symbolError), s.failure.Render("Failed"), title, detail)
	}
}

func (r *Reporter) Finish(stats publish.Stats) {
	p := r.printer
	fmt.Fprintln(p.out, p.styles.dim.Render("└"))
	fmt.Fprintln(p.out)
	fmt.Fprintf(p.out, "%s %s\n", p.styles.dim.Render("┌"), p.styles.info.Render("Publish completed with:"))
	fmt.Fprintf(p.out, "%s %s\n", p.rail(), p.styles.success.Render(fmt.Sprintf("%d published", stats.Published)))
	fmt.Fprintf(p.out, "%s %s\n", p.rail(), p.styles.muted.Render(fmt.Sprintf("%d skipped", stats.Skipped)))
	fmt.Fprintf(p.out, "%s %s\n", p.rail(), p.styles.failure.Render(fmt.Sprintf("%d failed", stats.Failed)))
	fmt.Fprintln(p.out, p.styles.dim.Render("└"))
}

func (r *Reporter) AuthFailures(failed []publish.FailedArticle) {
	p := r.printer
	fmt.Fprintln(p.out)
	p.Error(fmt.Sprintf("Authentication failed for %d articles. Check your token with `privateplot settings --token`.", len(failed)))
	r.list(failed)
}

func (r *Reporter) Failures(failed []publish.FailedArticle) {
	if len(failed) == 0 {
		return
	}
	fmt.Fprintln(r.printer.out)
	r.printer.Error("Failed articles:")
	r.list(failed)
}

func (r *Reporter) list(failed []publish.FailedArticle) {
	p := r.printer
	s := p.styles
	fmt.Fprintln(p.out, s.dim.Render("┌"))
	for i, article := range failed {
		if i > 0 {
			fmt.Fprintln(p.out, s.dim.Render("├"))
		}
		fmt.Fprintf(p.out, "%s %s\n", p.rail(), s.bold.Render(article.Title))
		fmt.Fprintf(p.out, "%s %s %s\n", p.rail(), s.dim.Render("Path:"), s.muted.Render(article.Path))
		fmt.Fprintf(p.out, "%s %s %s\n", p.rail(), s.dim.Render("Error:"), s.failure.Render(article.Error))
		fmt.Fprintf(p.out, "%s %s %s\n", p.rail(), s.dim.Render("Retries:"), s.warning.Render(strconv.Itoa(article.Retries)))
	}
	fmt.Fprintln(p.out, s.dim.Render("└"))
}

func (r *Reporter) Notice(message string) {
	r.printer.Info(message)
}
