package cli

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// barWidth is the number of cells between the bar's delimiters.
const barWidth = 50

// progressBar draws
//
//	|.........................                         |50.0%
//
// on a single line, redrawing with a carriage return whenever the
// percentage (truncated to one decimal) increases. Each cell is 2%.
type progressBar struct {
	w     io.Writer
	total int
	last  float64
	ended bool

	filled lipgloss.Style
	number lipgloss.Style
}

func newProgressBar(w io.Writer) *progressBar {
	r := lipgloss.NewRenderer(w)
	return &progressBar{
		w:      w,
		filled: r.NewStyle().Foreground(colorCyan),
		number: r.NewStyle().Foreground(colorGray),
	}
}

// percent returns done/total as a percentage truncated to one decimal.
func percent(done, total int) float64 {
	if total <= 0 {
		return 100
	}
	return math.Floor(float64(done)/float64(total)*1000) / 10
}

// Start draws the empty bar. With no features the line ends at once.
func (b *progressBar) Start(total int) {
	b.total = total
	b.ended = false
	b.last = 0
	b.render(0)
	if total <= 0 {
		b.end()
	}
}

// Advance redraws the bar if done increased the percentage and ends the
// line once done reaches the total.
func (b *progressBar) Advance(done int) {
	if b.ended {
		return
	}
	if p := percent(done, b.total); p > b.last {
		b.last = p
		b.render(p)
	}
	if done >= b.total {
		b.end()
	}
}

// Finish ends the line if Advance has not.
func (b *progressBar) Finish() {
	if !b.ended {
		b.end()
	}
}

func (b *progressBar) render(p float64) {
	d := min(int(p/2), barWidth)
	fmt.Fprintf(b.w, "\r|%s%s|%s",
		b.filled.Render(strings.Repeat(".", d)),
		strings.Repeat(" ", barWidth-d),
		b.number.Render(fmt.Sprintf("%.1f%%", p)))
}

func (b *progressBar) end() {
	b.ended = true
	fmt.Fprintln(b.w)
}
