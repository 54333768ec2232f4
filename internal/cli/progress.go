package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/schollz/progressbar/v3"
)

// ProgressReporter draws a progress bar sized on its first update.
type ProgressReporter struct {
	writer      io.Writer
	bar         *progressbar.ProgressBar
	description string
}

// NewProgressReporter creates a reporter writing to w.
func NewProgressReporter(w io.Writer, description string) *ProgressReporter {
	return &ProgressReporter{writer: w, description: description}
}

// Update moves the bar to done out of total.
func (p *ProgressReporter) Update(done, total int) {
	if total <= 0 {
		return
	}
	if p.bar == nil {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.writer),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription("[cyan][bold]"+p.description+"[reset]"),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
			progressbar.OptionOnCompletion(func() {
				if _, err := fmt.Fprintln(p.writer); err != nil {
					slog.Warn("Failed to write newline after progress bar", "error", err)
				}
			}),
		)
	}

	if err := p.bar.Set(done); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
}

// Done reports whether the bar reached its total.
func (p *ProgressReporter) Done() bool {
	return p.bar != nil && p.bar.IsFinished()
}
