package printer

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// ProgressWriter wraps an io.Writer to display transfer progress.
type ProgressWriter struct {
	dst          io.Writer
	statusWriter io.Writer
	verb         string
	total        int64
	written      int64
	mu           sync.Mutex
}

// NewProgressWriter creates a new progress writer.
// dst receives the actual data, statusWriter receives progress output, verb names the
// transfer ("downloaded", "uploaded").
// If total is 0 or negative, only bytes written are shown (no percentage).
func NewProgressWriter(dst io.Writer, statusWriter io.Writer, verb string, total int64) *ProgressWriter {
	return &ProgressWriter{
		dst:          dst,
		statusWriter: statusWriter,
		verb:         verb,
		total:        total,
	}
}

func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.dst.Write(p)

	pw.mu.Lock()
	pw.written += int64(n)
	pw.printProgress()
	pw.mu.Unlock()

	return n, err
}

// Written returns the bytes written so far.
func (pw *ProgressWriter) Written() int64 {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	return pw.written
}

// Finish prints the final progress line with a newline.
func (pw *ProgressWriter) Finish() {
	fmt.Fprintln(pw.statusWriter)
}

func (pw *ProgressWriter) printProgress() {
	if pw.total <= 0 {
		fmt.Fprintf(pw.statusWriter, "\r  %s %s", FormatBytes(pw.written), pw.verb)
		return
	}

	const barWidth = 40
	pct := min(float64(pw.written)/float64(pw.total)*100, 100)
	filled := int(pct / 100 * barWidth)
	bar := strings.Repeat("=", filled) + strings.Repeat(" ", barWidth-filled)
	fmt.Fprintf(pw.statusWriter, "\r  [%s] %3.0f%% %s / %s", bar, pct, FormatBytes(pw.written), FormatBytes(pw.total))
}
