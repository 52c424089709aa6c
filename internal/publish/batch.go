package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goliatone/go-privateplot/internal/logging"
	"github.com/goliatone/go-privateplot/internal/markdown"
	"github.com/goliatone/go-privateplot/pkg/interfaces"
)

const (
	// DefaultConcurrency is the number of files published at once.
	DefaultConcurrency = 10
	// PreviewLimit bounds the file list shown before confirmation.
	PreviewLimit = 5
)

// InvalidInputError reports a publish target that is neither a markdown file
// nor a directory.
type InvalidInputError struct {
	Path   string
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid path %s: must be a markdown file or directory", e.Path)
	}
	return fmt.Sprintf("invalid path %s: %s", e.Path, e.Reason)
}

// Publisher evaluates a single file. *Engine implements it.
type Publisher interface {
	Publish(ctx context.Context, path string, opts FileOptions) Outcome
}

var _ Publisher = (*Engine)(nil)

// Prompter asks the operator yes/no questions.
type Prompter interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// Reporter renders batch progress for the operator. Calls are serialised by
// the batch so implementations need no locking.
type Reporter interface {
	Drafts(paths []string)
	Preview(files []string, total int)
	Start(total int)
	Progress(completed, total int, outcome Outcome)
	Finish(stats Stats)
	AuthFailures(failed []FailedArticle)
	Failures(failed []FailedArticle)
	Notice(message string)
}

// Stats counts outcomes for one wave. Drafts are not part of Total.
type Stats struct {
	Total     int `json:"total"`
	Published int `json:"published"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// FailedArticle is a file that ended in the failed state.
type FailedArticle struct {
	Path      string `json:"path"`
	Title     string `json:"title"`
	Error     string `json:"error"`
	Retries   int    `json:"retries"`
	AuthError bool   `json:"authError"`
}

// Report summarises a batch run.
type Report struct {
	Files      []string
	Drafts     []string
	Stats      Stats
	Failed     []FailedArticle
	AuthFailed []FailedArticle
	Cancelled  bool
	// Retried holds the single retry wave, when the operator accepted it.
	Retried *Report
}

// Remaining reports the failures left after the retry wave, if one ran.
func (r *Report) Remaining() int {
	if r == nil {
		return 0
	}
	if r.Retried != nil {
		return len(r.AuthFailed) + r.Retried.Stats.Failed
	}
	return r.Stats.Failed
}

// BatchOptions tunes a batch run.
type BatchOptions struct {
	Concurrency   int
	AssumeYes     bool
	IncludeDrafts bool
	Exclude       []string
}

// BatchOption configures a Batch.
type BatchOption func(*Batch)

// WithPrompter sets the confirmation prompter. Without one every question is
// answered no.
func WithPrompter(p Prompter) BatchOption {
	return func(b *Batch) {
		if p != nil {
			b.prompter = p
		}
	}
}

// WithReporter sets the progress reporter.
func WithReporter(r Reporter) BatchOption {
	return func(b *Batch) {
		if r != nil {
			b.reporter = r
		}
	}
}

// WithBatchLogger sets the diagnostic logger.
func WithBatchLogger(logger interfaces.Logger) BatchOption {
	return func(b *Batch) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// Batch drives a publish run over a file or directory tree.
type Batch struct {
	publisher Publisher
	prompter  Prompter
	reporter  Reporter
	logger    interfaces.Logger
}

// NewBatch builds a batch runner around publisher.
func NewBatch(publisher Publisher, opts ...BatchOption) *Batch {
	b := &Batch{
		publisher: publisher,
		prompter:  declinePrompter{},
		reporter:  nopReporter{},
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Run resolves path, asks for confirmation and publishes every non-draft file
// through a bounded controller. Only input validation errors abort the run;
// per-file failures are reported in the returned Report.
func (b *Batch) Run(ctx context.Context, path string, opts BatchOptions) (*Report, error) {
	if strings.TrimSpace(path) == "" {
		path = "."
	}
	concurrency := opts.Concurrency
	if concurrency == 0 {
		concurrency = DefaultConcurrency
	}
	if concurrency < 0 {
		return nil, &InvalidInputError{Path: path, Reason: fmt.Sprintf("concurrency must be a positive integer, got %d", concurrency)}
	}

	files, err := b.resolve(ctx, path, opts.Exclude)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	if len(files) == 0 {
		b.reporter.Notice("No markdown files found")
		return report, nil
	}

	publishable, drafts := partitionDrafts(files)
	if opts.IncludeDrafts {
		publishable, drafts = files, nil
	}
	report.Files, report.Drafts = publishable, drafts
	if len(drafts) > 0 {
		b.reporter.Drafts(drafts)
	}
	if len(publishable) == 0 {
		b.reporter.Notice("No publishable files found (all are drafts)")
		return report, nil
	}

	b.reporter.Preview(previewPaths(path, publishable), len(publishable))
	if !opts.AssumeYes {
		ok, err := b.prompter.Confirm(ctx, fmt.Sprintf("Do you want to publish these %d files?", len(publishable)))
		if err != nil {
			return nil, fmt.Errorf("publish confirmation: %w", err)
		}
		if !ok {
			report.Cancelled = true
			b.reporter.Notice("Publishing cancelled")
			return report, nil
		}
	}

	ctrl := NewController(concurrency)
	fileOpts := FileOptions{Force: opts.IncludeDrafts}

	b.logger.Info("publish.batch.start", "files", len(publishable), "drafts", len(drafts), "concurrency", concurrency)
	b.runWave(ctx, ctrl, publishable, fileOpts, report)

	if len(report.AuthFailed) > 0 {
		b.reporter.AuthFailures(report.AuthFailed)
	}
	if len(report.Failed) == 0 {
		return report, nil
	}

	b.reporter.Failures(report.Failed)
	retry, err := b.prompter.Confirm(ctx, "Would you like to retry publishing the failed articles?")
	if err != nil {
		b.logger.Warn("publish.batch.retry_prompt_failed", "error", err)
		return report, nil
	}
	if !retry {
		return report, nil
	}

	retryFiles := make([]string, 0, len(report.Failed))
	for _, failed := range report.Failed {
		retryFiles = append(retryFiles, failed.Path)
	}
	report.Retried = &Report{Files: retryFiles}
	b.logger.Info("publish.batch.retry", "files", len(retryFiles))
	b.runWave(ctx, ctrl, retryFiles, fileOpts, report.Retried)
	if failed := append(append([]FailedArticle{}, report.Retried.AuthFailed...), report.Retried.Failed...); len(failed) > 0 {
		b.reporter.Failures(failed)
	}
	return report, nil
}

// runWave publishes files through ctrl and fills report as tasks complete.
func (b *Batch) runWave(ctx context.Context, ctrl *Controller, files []string, opts FileOptions, report *Report) {
	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		completed int
	)
	report.Stats = Stats{Total: len(files)}
	b.reporter.Start(len(files))

	record := func(outcome Outcome) {
		mu.Lock()
		defer mu.Unlock()

		switch outcome.Status {
		case StatusPublished:
			report.Stats.Published++
		case StatusSkipped:
			report.Stats.Skipped++
		default:
			report.Stats.Failed++
			failed := FailedArticle{
				Path:      outcome.Path,
				Title:     outcome.Title,
				Error:     errorMessage(outcome.Err),
				Retries:   outcome.Retries(),
				AuthError: outcome.AuthError,
			}
			if outcome.AuthError {
				report.AuthFailed = append(report.AuthFailed, failed)
			} else {
				report.Failed = append(report.Failed, failed)
			}
		}
		completed++
		b.reporter.Progress(completed, len(files), outcome)
	}

	for _, file := range files {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			var outcome Outcome
			err := ctrl.Add(ctx, func(ctx context.Context) error {
				outcome = b.publisher.Publish(ctx, path, opts)
				return outcome.Err
			})
			if outcome.Path == "" {
				// never ran: cancelled while queued, or the publisher panicked
				outcome = Outcome{Path: path, Title: markdown.TitleFromFilename(path), Status: StatusFailed, Action: ActionSkip, Err: err}
			}
			record(outcome)
		}(file)
	}
	wg.Wait()

	b.reporter.Finish(report.Stats)
	b.logger.Info("publish.batch.finish",
		"total", report.Stats.Total,
		"published", report.Stats.Published,
		"skipped", report.Stats.Skipped,
		"failed", report.Stats.Failed,
	)
}

func (b *Batch) resolve(ctx context.Context, path string, exclude []string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &InvalidInputError{Path: path, Reason: "no such file or directory"}
		}
		return nil, &InvalidInputError{Path: path, Reason: err.Error()}
	}
	if info.IsDir() {
		files, err := markdown.Discover(ctx, path, markdown.DiscoverOptions{Exclude: exclude})
		if err != nil {
			return nil, &InvalidInputError{Path: path, Reason: err.Error()}
		}
		return files, nil
	}
	if info.Mode().IsRegular() && markdown.IsMarkdownFile(path) {
		return []string{path}, nil
	}
	return nil, &InvalidInputError{Path: path}
}

// partitionDrafts splits files by their draft flag. Unreadable files and
// files with broken frontmatter stay publishable so the failure is reported.
func partitionDrafts(files []string) (publishable, drafts []string) {
	for _, file := range files {
		raw, err := os.ReadFile(file)
		if err != nil {
			publishable = append(publishable, file)
			continue
		}
		doc, err := markdown.ParseDocument(string(raw))
		if err == nil && doc.Record.Draft() {
			drafts = append(drafts, file)
			continue
		}
		publishable = append(publishable, file)
	}
	return publishable, drafts
}

func previewPaths(base string, files []string) []string {
	limit := min(len(files), PreviewLimit)
	preview := make([]string, 0, limit)
	for _, file := range files[:limit] {
		rel, err := filepath.Rel(base, file)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			rel = file
		}
		preview = append(preview, filepath.ToSlash(rel))
	}
	return preview
}

func errorMessage(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

type declinePrompter struct{}

func (declinePrompter) Confirm(context.Context, string) (bool, error) { return false, nil }

type nopReporter struct{}

func (nopReporter) Drafts([]string)              {}
func (nopReporter) Preview([]string, int)        {}
func (nopReporter) Start(int)                    {}
func (nopReporter) Progress(int, int, Outcome)   {}
func (nopReporter) Finish(Stats)                 {}
func (nopReporter) AuthFailures([]FailedArticle) {}
func (nopReporter) Failures([]FailedArticle)     {}
func (nopReporter) Notice(string)                {}
