// Package tidy runs a static-analysis tool over every file listed in a
// compile database, strictly sequentially, and aggregates the outcomes.
package tidy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/slaclab/aes-stream-drivers/internal/compiledb"
)

// Result records the outcome of one analysis invocation.
type Result struct {
	File     string
	Success  bool
	ExitCode int
	Duration time.Duration
}

// Summary aggregates the results of a batch run.
type Summary struct {
	Results []Result
}

// Passed returns the number of successful invocations.
func (s *Summary) Passed() int {
	count := 0
	for _, r := range s.Results {
		if r.Success {
			count++
		}
	}
	return count
}

// Failed returns the number of failed invocations.
func (s *Summary) Failed() int {
	return len(s.Results) - s.Passed()
}

// AllPassed reports whether every invocation succeeded.
func (s *Summary) AllPassed() bool {
	return s.Failed() == 0
}

// TotalDuration returns the combined runtime of all invocations.
func (s *Summary) TotalDuration() time.Duration {
	total := time.Duration(0)
	for _, r := range s.Results {
		total += r.Duration
	}
	return total
}

// Print writes a per-file table and totals to w.
func (s *Summary) Print(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintln(w, "ANALYSIS SUMMARY")
	fmt.Fprintln(w, strings.Repeat("=", 80))

	for _, r := range s.Results {
		status := "PASS"
		if !r.Success {
			status = "FAIL"
		}
		fmt.Fprintf(w, "%-50s %s (%.2fs)\n", r.File, status, r.Duration.Seconds())
	}

	fmt.Fprintln(w, strings.Repeat("-", 80))
	fmt.Fprintf(w, "Total: %d passed, %d failed (%.2fs)\n", s.Passed(), s.Failed(), s.TotalDuration().Seconds())
}

// Runner invokes the analysis executable once per database entry. The
// subprocess inherits Stdout and Stderr so its diagnostics appear inline
// with the progress output.
type Runner struct {
	Executable string
	BuildPath  string

	// Progress receives one "Processing <file>..." line per entry.
	Progress io.Writer
	Stdout   io.Writer
	Stderr   io.Writer
}

// NewRunner returns a Runner wired to this process's standard streams.
func NewRunner(executable, buildPath string) *Runner {
	return &Runner{
		Executable: executable,
		BuildPath:  buildPath,
		Progress:   os.Stdout,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
	}
}

// Run processes every entry in order. A failing invocation does not stop
// the batch; failures are accumulated into the summary.
func (r *Runner) Run(ctx context.Context, db compiledb.Database) (*Summary, error) {
	summary := &Summary{Results: make([]Result, 0, len(db))}

	for _, entry := range db {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		fmt.Fprintf(r.Progress, "Processing %s...\n", entry.File)
		summary.Results = append(summary.Results, r.runOne(ctx, entry.File))
	}

	return summary, nil
}

func (r *Runner) runOne(ctx context.Context, file string) Result {
	start := time.Now()

	cmd := exec.CommandContext(ctx, r.Executable, "-p="+r.BuildPath, file)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	err := cmd.Run()

	result := Result{File: file, Success: err == nil, Duration: time.Since(start)}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			// The executable could not be started at all.
			result.ExitCode = -1
		}
	}
	return result
}
