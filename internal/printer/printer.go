// Package printer renders command results for humans (tables) or machines (JSON).
package printer

import (
	"time"

	"github.com/dustin/go-humanize"

	"github.com/slok/rsbx/internal/model"
)

// Printer knows how to print rsbx results in different formats.
type Printer interface {
	PrintSandboxList(sandboxes []model.SandboxRecord) error
	PrintSandbox(sandbox model.SandboxRecord) error
	PrintTunnels(tunnels map[int]model.Tunnel) error
	PrintPaths(paths []string) error
	PrintExit(sandboxID string, code int) error
	PrintMessage(msg string) error
}

// FormatBytes returns a human-readable byte size string (e.g. "1.5 KiB").
func FormatBytes(bytes int64) string {
	if bytes < 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(bytes))
}

// TimeAgo returns a human-readable relative time string (e.g. "3 hours ago").
func TimeAgo(t time.Time) string {
	return humanize.Time(t)
}

// FormatTimestamp returns a formatted timestamp string in UTC.
// Format: "2006-01-02 15:04:05 UTC".
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}
