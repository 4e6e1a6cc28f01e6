package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Reporter provides progress feedback during update.
type Reporter interface {
	// Spin shows an indeterminate activity line until stop is called
	Spin(message string) (stop func())
	Start(total int)
	Update(current int)
	Finish()
}

// newReporter returns a TerminalReporter for interactive sessions and a
// LineReporter otherwise.
func newReporter(w io.Writer, interactive bool) Reporter {
	if interactive {
		return &TerminalReporter{w: w}
	}
	return &LineReporter{w: w}
}

// TerminalReporter draws a spinner and a progress bar.
type TerminalReporter struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

func (r *TerminalReporter) Spin(message string) func() {
	spinner := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(r.w),
		progressbar.OptionSetDescription(message),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_ = spinner.Add(1)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			wg.Wait()
			_ = spinner.Finish()
		})
	}
}

func (r *TerminalReporter) Start(total int) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(r.w),
		progressbar.OptionSetDescription("Indexing"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *TerminalReporter) Update(current int) {
	if r.bar != nil {
		_ = r.bar.Set(current)
	}
}

func (r *TerminalReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
		r.bar = nil
	}
}

// LineReporter prints plain lines, for pipes and CI logs.
type LineReporter struct {
	w     io.Writer
	total int
}

func (r *LineReporter) Spin(message string) func() {
	fmt.Fprintln(r.w, message)
	return func() {}
}

func (r *LineReporter) Start(total int) {
	r.total = total
	fmt.Fprintf(r.w, "Indexing %d projects\n", total)
}

func (r *LineReporter) Update(current int) {
	fmt.Fprintf(r.w, "[%d/%d]\n", current, r.total)
}

func (r *LineReporter) Finish() {}

// progressFunc adapts a Reporter to the indexer's progress callback,
// starting the bar on the first call
func progressFunc(r Reporter) func(done, total int) {
	started := false
	return func(done, total int) {
		if !started {
			r.Start(total)
			started = true
		}
		r.Update(done)
	}
}
