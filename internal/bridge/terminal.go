package bridge

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

// Terminal is an Emitter that prints host requests for one-shot CLI runs.
type Terminal struct {
	mu  sync.Mutex
	out io.Writer

	notice *color.Color
	link   *color.Color
	dim    *color.Color
}

// NewTerminal writes to out. Colors follow fatih/color's NoColor detection.
func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{
		out:    out,
		notice: color.New(color.FgGreen, color.Bold),
		link:   color.New(color.FgCyan, color.Underline),
		dim:    color.New(color.Faint),
	}
}

func (t *Terminal) Notify(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, t.notice.Sprint("»"), msg)
}

// OpenURL prints the link; opening it is left to the user's terminal.
func (t *Terminal) OpenURL(url string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, t.link.Sprint(url))
}

func (t *Terminal) HideWindow() {}

func (t *Terminal) ExitPlugin() {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, t.dim.Sprint("done"))
}
