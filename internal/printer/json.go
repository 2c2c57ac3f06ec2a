package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/slok/rsbx/internal/model"
)

// JSONPrinter prints results in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

var _ Printer = &JSONPrinter{}

type sandboxOutput struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Status     string     `json:"status"`
	AppID      string     `json:"app_id,omitempty"`
	ImageID    string     `json:"image_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at"`
}

type tunnelOutput struct {
	ContainerPort int    `json:"container_port"`
	URL           string `json:"url"`
	Host          string `json:"host"`
	Port          int    `json:"port"`
	TCPHost       string `json:"tcp_host,omitempty"`
	TCPPort       int    `json:"tcp_port,omitempty"`
}

type exitOutput struct {
	SandboxID string `json:"sandbox_id"`
	ExitCode  int    `json:"exit_code"`
}

type messageOutput struct {
	Message string `json:"message"`
}

func newSandboxOutput(s model.SandboxRecord) sandboxOutput {
	out := sandboxOutput{
		ID:        s.ID,
		Name:      s.Name,
		Status:    string(s.Status),
		AppID:     s.AppID,
		ImageID:   s.ImageID,
		CreatedAt: s.CreatedAt.UTC(),
	}
	if s.FinishedAt != nil {
		utcTime := s.FinishedAt.UTC()
		out.FinishedAt = &utcTime
	}
	return out
}

// PrintSandboxList prints the registered sandboxes in JSON format.
func (j *JSONPrinter) PrintSandboxList(sandboxes []model.SandboxRecord) error {
	items := make([]sandboxOutput, 0, len(sandboxes))
	for _, s := range sandboxes {
		items = append(items, newSandboxOutput(s))
	}
	return j.encode(items)
}

// PrintSandbox prints sandbox information in JSON format.
func (j *JSONPrinter) PrintSandbox(sandbox model.SandboxRecord) error {
	return j.encode(newSandboxOutput(sandbox))
}

// PrintTunnels prints the sandbox tunnels sorted by container port in JSON format.
func (j *JSONPrinter) PrintTunnels(tunnels map[int]model.Tunnel) error {
	items := make([]tunnelOutput, 0, len(tunnels))
	for _, port := range sortedPorts(tunnels) {
		t := tunnels[port]
		items = append(items, tunnelOutput{
			ContainerPort: port,
			URL:           t.URL(),
			Host:          t.Host,
			Port:          t.Port,
			TCPHost:       t.UnencryptedHost,
			TCPPort:       t.UnencryptedPort,
		})
	}
	return j.encode(items)
}

// PrintPaths prints the paths as a JSON list.
func (j *JSONPrinter) PrintPaths(paths []string) error {
	if paths == nil {
		paths = []string{}
	}
	return j.encode(paths)
}

// PrintExit prints the exit code of a finished sandbox in JSON format.
func (j *JSONPrinter) PrintExit(sandboxID string, code int) error {
	return j.encode(exitOutput{SandboxID: sandboxID, ExitCode: code})
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}

func (j *JSONPrinter) encode(v any) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
