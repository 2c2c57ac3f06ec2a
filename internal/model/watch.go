package model

// FileWatchEventType is the kind of change a watch event reports.
type FileWatchEventType string

const (
	FileWatchEventCreated  FileWatchEventType = "created"
	FileWatchEventModified FileWatchEventType = "modified"
	FileWatchEventDeleted  FileWatchEventType = "deleted"
	FileWatchEventMoved    FileWatchEventType = "moved"
)

// FileWatchEvent is a filesystem change observed on a sandbox.
type FileWatchEvent struct {
	Type  FileWatchEventType
	Paths []string
}
