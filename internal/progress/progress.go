// Package progress reports pipeline progress on the terminal.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Sink receives progress updates. Totals may grow and shrink while work is
// being discovered; done only grows.
type Sink interface {
	AddTotal(n int)
	AddDone(n int)
}

// Discard is a Sink that ignores every update.
var Discard Sink = discard{}

type discard struct{}

func (discard) AddTotal(int) {}
func (discard) AddDone(int)  {}

const barWidth = 30

var doneColor = color.New(color.FgGreen)

// Bar is a Sink that redraws a single status line on its writer.
type Bar struct {
	total atomic.Int64
	done  atomic.Int64

	w      io.Writer
	render bool
	stop   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

var _ Sink = &Bar{} // Compile-time check

// NewBar returns a bar that draws on w. When render is false the bar only counts.
func NewBar(w io.Writer, render bool) *Bar {
	return &Bar{w: w, render: render, stop: make(chan struct{})}
}

// ForStderr returns a bar that draws on stderr only when stderr is a terminal
// and progress was not disabled.
func ForStderr(disabled bool) *Bar {
	return NewBar(os.Stderr, !disabled && term.IsTerminal(int(os.Stderr.Fd())))
}

// AddTotal implements the Sink interface.
func (b *Bar) AddTotal(n int) {
	b.total.Add(int64(n))
}

// AddDone implements the Sink interface.
func (b *Bar) AddDone(n int) {
	b.done.Add(int64(n))
}

// Counts returns the current done and total values.
func (b *Bar) Counts() (done, total int64) {
	return b.done.Load(), b.total.Load()
}

// Start redraws the bar every interval until Finish is called.
func (b *Bar) Start(interval time.Duration) {
	if !b.render {
		return
	}
	b.wg.Go(func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-b.stop:
				return
			case <-ticker.C:
				_, _ = fmt.Fprintf(b.w, "\r%s", b.String())
			}
		}
	})
}

// Finish stops redrawing and clears the line. It is safe to call more than once.
func (b *Bar) Finish() {
	b.once.Do(func() {
		close(b.stop)
		b.wg.Wait()
		if b.render {
			_, _ = fmt.Fprintf(b.w, "\r%s\r", strings.Repeat(" ", barWidth+24))
		}
	})
}

// String renders the bar as "[#####-----] done/total".
func (b *Bar) String() string {
	done, total := b.Counts()
	filled := 0
	if total > 0 {
		filled = int(min(done, total) * barWidth / total)
	}
	bar := doneColor.Sprint(strings.Repeat("#", filled)) + strings.Repeat("-", barWidth-filled)
	return fmt.Sprintf("[%s] %d/%d", bar, done, total)
}
