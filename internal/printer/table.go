package printer

import (
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/slok/rsbx/internal/model"
)

// TablePrinter prints results in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

var _ Printer = &TablePrinter{}

// PrintSandboxList prints the registered sandboxes in a table format.
func (t *TablePrinter) PrintSandboxList(sandboxes []model.SandboxRecord) error {
	if len(sandboxes) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "NAME\tID\tSTATUS\tCREATED")
	for _, s := range sandboxes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Name, s.ID, s.Status, TimeAgo(s.CreatedAt))
	}

	return nil
}

// PrintSandbox prints detailed sandbox information.
func (t *TablePrinter) PrintSandbox(sandbox model.SandboxRecord) error {
	fmt.Fprintf(t.writer, "Name:       %s\n", sandbox.Name)
	fmt.Fprintf(t.writer, "ID:         %s\n", sandbox.ID)
	fmt.Fprintf(t.writer, "Status:     %s\n", sandbox.Status)
	if sandbox.AppID != "" {
		fmt.Fprintf(t.writer, "App:        %s\n", sandbox.AppID)
	}
	if sandbox.ImageID != "" {
		fmt.Fprintf(t.writer, "Image:      %s\n", sandbox.ImageID)
	}
	fmt.Fprintf(t.writer, "Created:    %s\n", FormatTimestamp(sandbox.CreatedAt))
	if sandbox.FinishedAt != nil {
		fmt.Fprintf(t.writer, "Finished:   %s\n", FormatTimestamp(*sandbox.FinishedAt))
	}

	return nil
}

// PrintTunnels prints the sandbox tunnels sorted by container port.
func (t *TablePrinter) PrintTunnels(tunnels map[int]model.Tunnel) error {
	if len(tunnels) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "PORT\tURL\tTCP")
	for _, port := range sortedPorts(tunnels) {
		tun := tunnels[port]
		tcp := "-"
		if host, p, err := tun.TCPSocket(); err == nil {
			tcp = fmt.Sprintf("%s:%d", host, p)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", port, tun.URL(), tcp)
	}

	return nil
}

// PrintPaths prints one path per line.
func (t *TablePrinter) PrintPaths(paths []string) error {
	for _, p := range paths {
		fmt.Fprintln(t.writer, p)
	}
	return nil
}

// PrintExit prints the exit code of a finished sandbox.
func (t *TablePrinter) PrintExit(sandboxID string, code int) error {
	fmt.Fprintf(t.writer, "Sandbox %s exited with code %d\n", sandboxID, code)
	return nil
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}

func sortedPorts(tunnels map[int]model.Tunnel) []int {
	ports := make([]int, 0, len(tunnels))
	for p := range tunnels {
		ports = append(ports, p)
	}
	slices.Sort(ports)
	return ports
}
