package tasks

import (
	"context"
	"sync"
	"time"

	"github.com/sadopc/taskr/internal/core"
)

var _ core.Gateway = (*fakeGateway)(nil)

// fakeGateway is an in-memory remote store. Setting gate makes every call
// block until the channel is closed or receives.
type fakeGateway struct {
	mu     sync.Mutex
	nextID int64
	tasks  []core.Task
	err    error
	gate   chan struct{}
	calls  map[string]int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{nextID: 1, calls: make(map[string]int)}
}

func (f *fakeGateway) wait(op string) error {
	f.mu.Lock()
	f.calls[op]++
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *fakeGateway) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeGateway) seed(tasks ...core.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range tasks {
		if t.ID >= f.nextID {
			f.nextID = t.ID + 1
		}
	}
	f.tasks = append(f.tasks, tasks...)
}

func (f *fakeGateway) ListTasks(ctx context.Context) ([]core.Task, error) {
	if err := f.wait("list"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]core.Task, len(f.tasks))
	copy(out, f.tasks)
	return out, nil
}

func (f *fakeGateway) CreateTask(ctx context.Context, d core.Draft) (core.Task, error) {
	if err := f.wait("create"); err != nil {
		return core.Task{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UTC()
	t := core.Task{ID: f.nextID, Title: d.Title, Description: d.Description, CreatedAt: now, UpdatedAt: now, UserID: 1}
	f.nextID++
	f.tasks = append([]core.Task{t}, f.tasks...)
	return t, nil
}

func (f *fakeGateway) UpdateTask(ctx context.Context, id int64, p core.Patch) (core.Task, error) {
	if err := f.wait("update"); err != nil {
		return core.Task{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			if p.Title != nil {
				f.tasks[i].Title = *p.Title
			}
			if p.Description != nil {
				f.tasks[i].Description = *p.Description
			}
			if p.Done != nil {
				f.tasks[i].Done = *p.Done
			}
			return f.tasks[i], nil
		}
	}
	return core.Task{}, &core.RequestError{Status: 404, Message: "Task not found"}
}

func (f *fakeGateway) ToggleTask(ctx context.Context, id int64) (core.Task, error) {
	if err := f.wait("toggle"); err != nil {
		return core.Task{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks[i].Done = !f.tasks[i].Done
			return f.tasks[i], nil
		}
	}
	return core.Task{}, &core.RequestError{Status: 404, Message: "Task not found"}
}

func (f *fakeGateway) DeleteTask(ctx context.Context, id int64) error {
	if err := f.wait("delete"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return &core.RequestError{Status: 404, Message: "Task not found"}
}
