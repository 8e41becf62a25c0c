package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/OSGeo/grass-dspf/internal/logger"
)

// terminalWidth returns the column count of f, or zero when f is not a
// terminal.
func terminalWidth(f *os.File) int {
	if !logger.IsTerminal(f) {
		return 0
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w < 20 {
		return 0
	}
	return w
}

// progress draws a single line bar. A nil progress does nothing.
type progress struct {
	w       io.Writer
	label   string
	total   int
	width   int
	percent int
}

func newProgress(w io.Writer, width int, label string, total int) *progress {
	if width == 0 || total == 0 {
		return nil
	}
	return &progress{w: w, label: label, total: total, width: width, percent: -1}
}

func (p *progress) update(n int) {
	if p == nil {
		return
	}
	percent := n * 100 / p.total
	if percent == p.percent {
		return
	}
	p.percent = percent

	prefix := fmt.Sprintf("%s %3d%% ", p.label, percent)
	bar := p.width - len(prefix) - 3
	if bar < 1 {
		fmt.Fprintf(p.w, "\r%s", prefix)
		return
	}
	fill := bar * percent / 100
	fmt.Fprintf(p.w, "\r%s[%s%s]", prefix, strings.Repeat("=", fill), strings.Repeat(" ", bar-fill))
}

func (p *progress) done() {
	if p == nil {
		return
	}
	fmt.Fprint(p.w, "\r"+strings.Repeat(" ", p.width-1)+"\r")
}
