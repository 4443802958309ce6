package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sadopc/taskr/internal/core"
)

// Manager is the single entry point for task mutations. Each operation
// calls the Gateway and applies the result to the Collection only on
// success. Errors are always returned to the caller.
//
// Mutations on the same id never overlap: a second one is rejected with
// core.ErrBusy while the first is in flight. Loads are not coalesced; the
// last response to arrive wins.
type Manager struct {
	gw    core.Gateway
	log   zerolog.Logger
	tasks *Collection
	stats StatsCache

	mu       sync.Mutex
	closed   bool
	loads    int
	loadErr  string
	crudErr  string
	inFlight map[int64]string
	creating int
}

func NewManager(gw core.Gateway, log zerolog.Logger) *Manager {
	return &Manager{
		gw:       gw,
		log:      log.With().Str("component", "tasks").Logger(),
		tasks:    NewCollection(),
		inFlight: make(map[int64]string),
	}
}

// Load replaces the collection with the server's tasks.
func (m *Manager) Load(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return core.ErrClosed
	}
	m.loads++
	m.loadErr = ""
	m.mu.Unlock()

	tasks, err := m.gw.ListTasks(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads--
	if m.closed {
		return core.ErrClosed
	}
	if err != nil {
		m.loadErr = core.Message(err)
		m.log.Warn().Err(err).Msg("load tasks failed")
		return fmt.Errorf("load tasks: %w", err)
	}
	m.tasks.Load(tasks)
	m.log.Debug().Int("count", len(tasks)).Msg("tasks loaded")
	return nil
}

func (m *Manager) CreateTask(ctx context.Context, d core.Draft) (core.Task, error) {
	if err := d.Validate(); err != nil {
		return core.Task{}, err
	}
	if err := m.beginCreate(); err != nil {
		return core.Task{}, err
	}

	t, err := m.gw.CreateTask(ctx, d)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.creating--
	if err := m.finish("create", 0, err); err != nil {
		return core.Task{}, err
	}
	m.tasks.Add(t)
	return t, nil
}

func (m *Manager) UpdateTask(ctx context.Context, id int64, p core.Patch) (core.Task, error) {
	if err := p.Validate(); err != nil {
		return core.Task{}, err
	}
	if err := m.begin(id, "update"); err != nil {
		return core.Task{}, err
	}

	t, err := m.gw.UpdateTask(ctx, id, p)

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inFlight, id)
	if err := m.finish("update", id, err); err != nil {
		return core.Task{}, err
	}
	m.tasks.Replace(id, t)
	return t, nil
}

// ToggleTask asks the server to flip the done flag and stores the result.
func (m *Manager) ToggleTask(ctx context.Context, id int64) (core.Task, error) {
	if err := m.begin(id, "toggle"); err != nil {
		return core.Task{}, err
	}

	t, err := m.gw.ToggleTask(ctx, id)

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inFlight, id)
	if err := m.finish("toggle", id, err); err != nil {
		return core.Task{}, err
	}
	m.tasks.Replace(id, t)
	return t, nil
}

func (m *Manager) DeleteTask(ctx context.Context, id int64) error {
	if err := m.begin(id, "delete"); err != nil {
		return err
	}

	err := m.gw.DeleteTask(ctx, id)

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inFlight, id)
	if err := m.finish("delete", id, err); err != nil {
		return err
	}
	m.tasks.Remove(id)
	return nil
}

func (m *Manager) begin(id int64, op string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return core.ErrClosed
	}
	if pending, ok := m.inFlight[id]; ok {
		m.log.Debug().Int64("task_id", id).Str("op", op).Str("pending", pending).Msg("rejected overlapping mutation")
		return fmt.Errorf("%s task %d: %w", op, id, core.ErrBusy)
	}
	m.inFlight[id] = op
	m.crudErr = ""
	return nil
}

func (m *Manager) beginCreate() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return core.ErrClosed
	}
	m.creating++
	m.crudErr = ""
	return nil
}

// finish records the outcome of a gateway call. m.mu must be held.
func (m *Manager) finish(op string, id int64, err error) error {
	if m.closed {
		m.log.Debug().Str("op", op).Int64("task_id", id).Msg("dropping result after close")
		return core.ErrClosed
	}
	if err != nil {
		m.crudErr = core.Message(err)
		m.log.Warn().Err(err).Str("op", op).Int64("task_id", id).Msg("task mutation failed")
		return err
	}
	m.log.Debug().Str("op", op).Int64("task_id", id).Msg("task mutation applied")
	return nil
}

// Close marks the manager dead. Results of calls still in flight are
// discarded and later calls fail with core.ErrClosed.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
}

// Loading is true while the load or any mutation is in flight.
func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loads > 0 || len(m.inFlight) > 0 || m.creating > 0
}

// Err returns the load error if set, otherwise the last mutation error.
func (m *Manager) Err() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != "" {
		return m.loadErr
	}
	return m.crudErr
}

func (m *Manager) ClearError() {
	m.mu.Lock()
	m.loadErr = ""
	m.crudErr = ""
	m.mu.Unlock()
}

// Pending reports whether a mutation on id is in flight.
func (m *Manager) Pending(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.inFlight[id]
	return ok
}

func (m *Manager) Tasks() []core.Task { return m.tasks.Tasks() }

func (m *Manager) Stats() core.Stats { return m.stats.Get(m.tasks) }
