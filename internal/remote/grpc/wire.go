package grpc

import (
	"encoding/json"
	"fmt"

	"github.com/slok/rsbx/internal/model"
)

// wireBytes is an output payload. Depending on the operation the service sends the data
// as a JSON string or as an array of byte values, both end as raw bytes.
type wireBytes []byte

func (w *wireBytes) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*w = nil
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*w = []byte(s)
		return nil
	}

	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return fmt.Errorf("output data is not a string or a byte array: %w", err)
	}
	b := make([]byte, 0, len(ints))
	for _, i := range ints {
		if i < 0 || i > 255 {
			return fmt.Errorf("output data value %d is not a byte", i)
		}
		b = append(b, byte(i))
	}
	*w = b

	return nil
}

type wireError struct {
	ErrorMessage string `json:"error_message"`
}

type wireResult struct {
	Status    int    `json:"status"`
	ExitCode  *int   `json:"exitcode,omitempty"`
	Exception string `json:"exception,omitempty"`
}

func (w *wireResult) toModel() *model.OperationResult {
	if w == nil {
		return nil
	}
	return &model.OperationResult{
		Status:    model.GenericStatus(w.Status),
		ExitCode:  w.ExitCode,
		Exception: w.Exception,
	}
}

// wireBatch is the union of the output messages streamed by the service (exec output,
// filesystem exec output and sandbox logs).
type wireBatch struct {
	Output     []wireBytes `json:"output,omitempty"`
	Items      []struct {
		Data         wireBytes `json:"data,omitempty"`
		MessageBytes wireBytes `json:"message_bytes,omitempty"`
	} `json:"items,omitempty"`
	Error      *wireError `json:"error,omitempty"`
	EOF        bool       `json:"eof"`
	EntryID    string     `json:"entry_id,omitempty"`
	BatchIndex uint64     `json:"batch_index,omitempty"`
	ExitCode   *int       `json:"exit_code,omitempty"`
}

func (w wireBatch) toModel() model.OutputBatch {
	b := model.OutputBatch{
		EOF:        w.EOF,
		EntryID:    w.EntryID,
		BatchIndex: w.BatchIndex,
		ExitCode:   w.ExitCode,
	}
	if w.Error != nil {
		msg := w.Error.ErrorMessage
		b.Error = &msg
	}
	for _, o := range w.Output {
		b.Items = append(b.Items, []byte(o))
	}
	for _, it := range w.Items {
		if len(it.MessageBytes) > 0 {
			b.Items = append(b.Items, []byte(it.MessageBytes))
			continue
		}
		b.Items = append(b.Items, []byte(it.Data))
	}

	return b
}

type wireTunnelsResponse struct {
	Tunnels []struct {
		ContainerPort   int    `json:"container_port"`
		Host            string `json:"host"`
		Port            int    `json:"port"`
		UnencryptedHost string `json:"unencrypted_host,omitempty"`
		UnencryptedPort int    `json:"unencrypted_port,omitempty"`
	} `json:"tunnels"`
	Result *wireResult `json:"result,omitempty"`
}

type wireResultResponse struct {
	Result *wireResult `json:"result,omitempty"`
}

type wireTaskIDResponse struct {
	TaskID     string      `json:"task_id"`
	TaskResult *wireResult `json:"task_result,omitempty"`
}

type wireImageResponse struct {
	ImageID string      `json:"image_id"`
	EntryID string      `json:"entry_id,omitempty"`
	Result  *wireResult `json:"result,omitempty"`
}

