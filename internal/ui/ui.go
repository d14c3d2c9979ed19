// Package ui renders pipeline progress, results, and classified errors to
// the terminal. It is the single point that maps an error kind to output
// styling; nothing here affects pipeline semantics.
package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/harou24/cf-cli/internal/cferr"
	"github.com/harou24/cf-cli/internal/history"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type UI struct {
	out    io.Writer
	errOut io.Writer
	tty    bool
}

func New(out, errOut io.Writer) *UI {
	return &UI{out: out, errOut: errOut, tty: isTerminal(errOut)}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (u *UI) paint(color, s string) string {
	if !u.tty {
		return s
	}
	return color + s + colorReset
}

// Step renders a progress indicator for one pipeline stage, a single unit
// of work going from pending to complete. The returned func stops the
// indicator and marks the stage done or failed.
func (u *UI) Step(msg string) func(ok bool) {
	if !u.tty {
		fmt.Fprintf(u.errOut, "%s...\n", msg)
		return func(bool) {}
	}

	var mu sync.Mutex
	done := false

	go func() {
		i := 0
		for {
			mu.Lock()
			if done {
				mu.Unlock()
				return
			}
			mu.Unlock()

			fmt.Fprintf(u.errOut, "\r%s %s", u.paint(colorCyan, spinnerFrames[i%len(spinnerFrames)]), msg)
			i++
			time.Sleep(80 * time.Millisecond)
		}
	}()

	return func(ok bool) {
		mu.Lock()
		done = true
		mu.Unlock()

		mark := u.paint(colorGreen, "✓")
		if !ok {
			mark = u.paint(colorRed, "✗")
		}
		fmt.Fprintf(u.errOut, "\r%s %s\n", mark, msg)
	}
}

// Success prints the final public URL. The URL goes to stdout on its own
// line so it stays pipeable.
func (u *UI) Success(url string) {
	fmt.Fprintln(u.errOut, u.paint(colorBold+colorGreen, "Generated Image URL:"))
	fmt.Fprintln(u.out, url)
}

func (u *UI) Warnf(format string, args ...any) {
	fmt.Fprintf(u.errOut, u.paint(colorYellow, "⚠ ")+format+"\n", args...)
}

// Error prints a classified error message. Local usage problems (missing
// credentials, bad flags) render yellow with a help hint; provider and
// transport failures render red.
func (u *UI) Error(err error) {
	if cferr.IsUsage(err) {
		fmt.Fprintf(u.errOut, "%s%v\n", u.paint(colorYellow, "✗ "), err)
		if k, _ := cferr.KindOf(err); k == cferr.Argument {
			fmt.Fprintln(u.errOut, "Run 'cf --help' for usage.")
		}
		return
	}
	fmt.Fprintf(u.errOut, "%s%v\n", u.paint(colorBold+colorRed, "✗ "), err)
}

// History renders records oldest first with an expired/active indicator.
func (u *UI) History(records []history.Record, now time.Time) {
	if len(records) == 0 {
		fmt.Fprintln(u.out, "No history yet.")
		return
	}
	for _, r := range records {
		status := u.paint(colorGreen, "active ")
		if r.Expired(now) {
			status = u.paint(colorRed, "expired")
		}
		expires := "never"
		if r.ExpiresIn != history.PolicyNone {
			expires = string(r.ExpiresIn)
		}
		fmt.Fprintf(u.out, "%s  %s  %-7s  %-40s  %s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			status,
			"["+expires+"]",
			truncate(r.Prompt, 40),
			r.URL)
	}
}

func truncate(s string, length int) string {
	if len(s) > length {
		return s[:length-3] + "..."
	}
	return s
}
