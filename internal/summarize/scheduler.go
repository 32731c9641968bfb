package summarize

import (
	"context"
	"time"
)

// Task is one unit of sequential work.
type Task func(ctx context.Context)

// Scheduler runs tasks one at a time, waiting Pacing between consecutive tasks.
type Scheduler struct {
	Pacing time.Duration
	// Sleep waits for d or until ctx is done. Defaults to a timer wait.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Run executes tasks in order. It returns the number of tasks started and
// ctx's error if the context ended during a pacing wait.
func (s *Scheduler) Run(ctx context.Context, tasks []Task) (int, error) {
	sleep := s.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	for i, task := range tasks {
		if i > 0 && s.Pacing > 0 {
			if err := sleep(ctx, s.Pacing); err != nil {
				return i, err
			}
		}
		task(ctx)
	}
	return len(tasks), nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
