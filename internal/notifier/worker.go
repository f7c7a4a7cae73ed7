package notifier

import (
	"context"
	"log/slog"
)

// Task - a deferred render/notify callback.
type Task func()

// Worker - a single sequential dispatcher. Tasks run strictly in submission
// order, each to completion before the next is dequeued, so notifications are
// delivered in the order the triggering game events occurred.
type Worker struct {
	logger *slog.Logger
	tasks  chan Task
}

func New(logger *slog.Logger, capacity int) *Worker {
	return &Worker{
		logger: logger,
		tasks:  make(chan Task, capacity),
	}
}

// Enqueue - submits a task; blocks while the queue is full.
func (that *Worker) Enqueue(task Task) {
	that.tasks <- task
}

// Run - drains the queue until the context ends.
func (that *Worker) Run(ctx context.Context) {
	log := that.logger.With("component", "notifier")

	for {
		select {
		case <-ctx.Done():
			log.Info("notification worker stopped")
			return
		case task := <-that.tasks:
			task()
		}
	}
}
