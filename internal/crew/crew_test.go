package crew

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeAgent returns a fixed summary or error and records that it ran.
type fakeAgent struct {
	role    string
	summary string
	err     error
	ran     bool
}

func (f *fakeAgent) Role() string { return f.role }
func (f *fakeAgent) Goal() string { return "test goal" }
func (f *fakeAgent) Run(_ context.Context, _ *State) (string, error) {
	f.ran = true
	return f.summary, f.err
}

func TestCrew_RunsTasksInOrder(t *testing.T) {
	var order []string
	agentA := &fakeAgent{role: "A", summary: "a done"}
	agentB := &fakeAgent{role: "B", summary: "b done"}
	c := New(discardLogger(),
		Task{Label: "first", Description: "do a", Agent: agentA},
		Task{Label: "second", Description: "do b", Agent: agentB},
	)

	var events []Event
	err := c.Run(context.Background(), &State{}, func(ev Event) {
		events = append(events, ev)
		if ev.Status == StatusDone {
			order = append(order, ev.Label)
		}
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Join(order, ",") != "first,second" {
		t.Errorf("unexpected order %v", order)
	}
	if len(events) != 4 {
		t.Fatalf("expected 4 events (start+done per task), got %d", len(events))
	}
	if events[0].Status != StatusRunning || events[0].Step != 1 || events[0].Total != 2 || events[0].Message != "do a" {
		t.Errorf("unexpected first event %+v", events[0])
	}
	if events[3].Message != "b done" || events[3].Role != "B" {
		t.Errorf("unexpected last event %+v", events[3])
	}
}

func TestCrew_FirstFailureStops(t *testing.T) {
	boom := errors.New("boom")
	failing := &fakeAgent{role: "A", err: boom}
	after := &fakeAgent{role: "B"}
	c := New(discardLogger(),
		Task{Label: "search", Agent: failing},
		Task{Label: "store", Agent: after},
	)

	var last Event
	err := c.Run(context.Background(), &State{}, func(ev Event) { last = ev })
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "search: ") {
		t.Errorf("expected error prefixed with task label, got %q", err)
	}
	if after.ran {
		t.Error("expected later task not to run")
	}
	if last.Status != StatusFailed {
		t.Errorf("expected failed event, got %+v", last)
	}
}

func TestCrew_SkippedTaskContinues(t *testing.T) {
	skipped := &fakeAgent{role: "A", err: skip("nothing to do")}
	after := &fakeAgent{role: "B", summary: "ok"}
	c := New(discardLogger(),
		Task{Label: "resume", Agent: skipped},
		Task{Label: "referrals", Agent: after},
	)

	var statuses []Status
	err := c.Run(context.Background(), &State{}, func(ev Event) { statuses = append(statuses, ev.Status) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !after.ran {
		t.Error("expected task after a skip to run")
	}
	want := []Status{StatusRunning, StatusSkipped, StatusRunning, StatusDone}
	for i := range want {
		if statuses[i] != want[i] {
			t.Fatalf("statuses = %v, want %v", statuses, want)
		}
	}
}

func TestCrew_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	agent := &fakeAgent{role: "A"}
	c := New(discardLogger(), Task{Label: "search", Agent: agent})

	if err := c.Run(ctx, &State{}, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if agent.ran {
		t.Error("expected agent not to run after cancellation")
	}
}

func TestNewJobHunterCrew_TaskOrder(t *testing.T) {
	c := NewJobHunterCrew(Deps{}, discardLogger())
	var labels []string
	for _, task := range c.Tasks() {
		labels = append(labels, task.Label)
	}
	if got := strings.Join(labels, ","); got != "search,store,resume,referrals" {
		t.Errorf("unexpected task order %s", got)
	}
}
