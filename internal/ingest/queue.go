// Package ingest feeds files to the recognition service one at a time.
package ingest

import (
	"context"
	"time"
)

// Progress is reported before each task starts.
type Progress struct {
	Current int
	Total   int
	Name    string
}

// Task is one unit of queued work.
type Task struct {
	Name string
	Do   func(ctx context.Context) error
}

// Failure records a task that returned an error.
type Failure struct {
	Name string
	Err  error
}

// Queue runs tasks sequentially with a fixed pause between them, keeping
// the recognition service under its rate limit.
type Queue struct {
	Delay time.Duration
}

// Process runs tasks in order. A failing task is recorded and the queue
// moves on. Cancelling ctx stops before the next task and returns ctx.Err()
// along with the failures collected so far.
func (q Queue) Process(ctx context.Context, tasks []Task, progress func(Progress)) ([]Failure, error) {
	var failures []Failure

	for i, t := range tasks {
		if i > 0 && q.Delay > 0 {
			timer := time.NewTimer(q.Delay)

			select {
			case <-ctx.Done():
				timer.Stop()
				return failures, ctx.Err()
			case <-timer.C:
			}
		}

		if err := ctx.Err(); err != nil {
			return failures, err
		}

		if progress != nil {
			progress(Progress{Current: i + 1, Total: len(tasks), Name: t.Name})
		}

		if err := t.Do(ctx); err != nil {
			failures = append(failures, Failure{Name: t.Name, Err: err})
		}
	}

	return failures, nil
}
