// Package crew runs the job hunt as an ordered list of tasks, each owned by
// an agent with a single responsibility.
package crew

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/amishk599/jobhunter/internal/model"
)

// ErrSkipped is returned (wrapped with a reason) by agents that have nothing
// to do. A skipped task does not stop the crew.
var ErrSkipped = errors.New("skipped")

// Agent performs one step of the hunt, reading and updating shared state.
// Run returns a one-line summary for the user.
type Agent interface {
	Role() string
	Goal() string
	Run(ctx context.Context, state *State) (string, error)
}

// Task binds an agent to a described unit of work.
type Task struct {
	Label          string
	Description    string
	ExpectedOutput string
	Agent          Agent
}

// State is shared by all tasks of one crew run.
type State struct {
	Criteria   model.SearchCriteria
	ResumePath string
	Jobs       []model.Job
	Resumes    []model.OptimizedResume
	Referrals  []model.Referral
}

// Status is the lifecycle stage reported in an Event.
type Status string

const (
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Event reports task progress. Step is 1-based.
type Event struct {
	Step    int
	Total   int
	Label   string
	Role    string
	Status  Status
	Message string
}

// Crew runs its tasks strictly in order.
type Crew struct {
	tasks  []Task
	logger *slog.Logger
}

// New creates a crew from tasks.
func New(logger *slog.Logger, tasks ...Task) *Crew {
	return &Crew{tasks: tasks, logger: logger}
}

// Tasks returns the crew's tasks in run order.
func (c *Crew) Tasks() []Task {
	return c.tasks
}

// Run executes every task against state, calling report (when non-nil) as
// each task starts and finishes. The first failing task stops the run and
// its error is returned wrapped with the task label.
func (c *Crew) Run(ctx context.Context, state *State, report func(Event)) error {
	if report == nil {
		report = func(Event) {}
	}
	total := len(c.tasks)
	for i, task := range c.tasks {
		ev := Event{Step: i + 1, Total: total, Label: task.Label, Role: task.Agent.Role()}

		if err := ctx.Err(); err != nil {
			ev.Status, ev.Message = StatusFailed, err.Error()
			report(ev)
			return fmt.Errorf("%s: %w", task.Label, err)
		}

		ev.Status, ev.Message = StatusRunning, task.Description
		report(ev)
		c.logger.Debug("task started", "step", ev.Step, "task", task.Label, "role", ev.Role)

		summary, err := task.Agent.Run(ctx, state)
		switch {
		case errors.Is(err, ErrSkipped):
			ev.Status, ev.Message = StatusSkipped, err.Error()
			c.logger.Info("task skipped", "task", task.Label, "reason", err)
		case err != nil:
			ev.Status, ev.Message = StatusFailed, err.Error()
			report(ev)
			c.logger.Error("task failed", "task", task.Label, "error", err)
			return fmt.Errorf("%s: %w", task.Label, err)
		default:
			ev.Status, ev.Message = StatusDone, summary
			c.logger.Info("task done", "task", task.Label, "summary", summary)
		}
		report(ev)
	}
	return nil
}

// skip wraps ErrSkipped with a reason.
func skip(reason string) error {
	return fmt.Errorf("%w: %s", ErrSkipped, reason)
}
