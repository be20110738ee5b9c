package editor

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// TasksPlaceholder is shown while no tasks script has been written.
const TasksPlaceholder = `# Tasks is a block of code executed in a separate thread on Enso start.
# You may use your favorite scheduling library to schedule tasks here.`

// TaskStore reads and writes the global tasks script.
type TaskStore interface {
	ReadTasks(ctx context.Context) (string, error)
	WriteTasks(ctx context.Context, code string) error
}

// NewTaskEditor edits the tasks script with a debounced autosave.
func NewTaskEditor(api TaskStore, log zerolog.Logger, delay time.Duration) *Document {
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}
	return NewDocument(DocumentOptions{
		Placeholder: TasksPlaceholder,
		Filename:    "tasks.py",
		Load:        api.ReadTasks,
		Save:        api.WriteTasks,
		Log:         log,
		Autosave:    delay,
	})
}
