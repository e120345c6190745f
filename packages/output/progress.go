package output

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/dustin/go-humanize"
	"golang.org/x/time/rate"
)

// redrawInterval bounds how often a progress line is repainted.
const redrawInterval = 100 * time.Millisecond

// Progress is a single-line transfer progress bar. Add never blocks: redraws
// that come faster than the redraw interval are skipped.
type Progress struct {
	mu      sync.Mutex
	out     io.Writer
	label   string
	total   int64
	current int64
	bar     progress.Model
	limiter *rate.Limiter
	started time.Time
	done    bool
}

// NewProgress creates a bar on stderr. A total of 0 means the size is unknown.
func NewProgress(label string, total int64) *Progress {
	return NewProgressTo(os.Stderr, label, total)
}

func NewProgressTo(w io.Writer, label string, total int64) *Progress {
	return &Progress{
		out:     w,
		label:   label,
		total:   total,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		limiter: rate.NewLimiter(rate.Every(redrawInterval), 1),
		started: time.Now(),
	}
}

// Add records n more transferred bytes.
func (p *Progress) Add(n int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current += n
	if p.limiter.Allow() {
		p.render()
	}
}

// Finish draws the final state and ends the line.
func (p *Progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done {
		return
	}
	p.done = true
	p.render()
	fmt.Fprintln(p.out)
}

func (p *Progress) Current() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *Progress) render() {
	elapsed := time.Since(p.started).Truncate(time.Second)
	if p.total <= 0 {
		fmt.Fprintf(p.out, "\r%s %s [%s]", p.label, humanize.Bytes(uint64(p.current)), elapsed)
		return
	}
	pct := float64(p.current) / float64(p.total)
	if pct > 1 {
		pct = 1
	}
	fmt.Fprintf(p.out, "\r%s %s %s/%s [%s]", p.label, p.bar.ViewAs(pct),
		humanize.Bytes(uint64(p.current)), humanize.Bytes(uint64(p.total)), elapsed)
}

// CountingReader reports every chunk read through it to a progress sink.
type CountingReader struct {
	R      io.Reader
	OnRead func(n int64)
}

func (c *CountingReader) Read(b []byte) (int, error) {
	n, err := c.R.Read(b)
	if n > 0 && c.OnRead != nil {
		c.OnRead(int64(n))
	}
	return n, err
}
