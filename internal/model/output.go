package model

// OutputBatch is one unit of polled output.
//
// EOF is terminal, once seen no more polling happens for the handle. Error means
// the operation failed and supersedes any items of the same batch.
type OutputBatch struct {
	Items [][]byte
	// Error is the server reported error message, nil if none.
	Error *string
	EOF   bool
	// EntryID and BatchIndex are the resumption positions reported by the service,
	// depending on the operation only one of them is used.
	EntryID    string
	BatchIndex uint64
	// ExitCode is set by process output batches once the process exited.
	ExitCode *int
}

// OutputCursor tracks the resumption position of an output stream.
// It's owned by a single stream instance and only moves forward.
type OutputCursor struct {
	LastEntryID    string
	LastBatchIndex uint64
	Finished       bool
}

// Advance moves the cursor to the position reported by the batch.
func (c *OutputCursor) Advance(b OutputBatch) {
	if b.EntryID != "" {
		c.LastEntryID = b.EntryID
	}
	if b.BatchIndex > c.LastBatchIndex {
		c.LastBatchIndex = b.BatchIndex
	}
	if b.EOF {
		c.Finished = true
	}
}
