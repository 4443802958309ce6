package tasks

import (
	"sync"

	"github.com/sadopc/taskr/internal/core"
)

// Collection is the ordered in-memory task list, newest first for
// creations. It is only mutated after the remote call has succeeded.
type Collection struct {
	mu      sync.RWMutex
	tasks   []core.Task
	version uint64
}

func NewCollection() *Collection {
	return &Collection{}
}

// Load replaces the whole collection.
func (c *Collection) Load(tasks []core.Task) {
	next := make([]core.Task, len(tasks))
	copy(next, tasks)

	c.mu.Lock()
	c.tasks = next
	c.version++
	c.mu.Unlock()
}

// Add prepends t.
func (c *Collection) Add(t core.Task) {
	c.mu.Lock()
	next := make([]core.Task, 0, len(c.tasks)+1)
	next = append(next, t)
	c.tasks = append(next, c.tasks...)
	c.version++
	c.mu.Unlock()
}

// Replace swaps the task with the given id in place. It reports false and
// changes nothing when id is absent.
func (c *Collection) Replace(id int64, t core.Task) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.tasks {
		if c.tasks[i].ID == id {
			next := make([]core.Task, len(c.tasks))
			copy(next, c.tasks)
			next[i] = t
			c.tasks = next
			c.version++
			return true
		}
	}
	return false
}

// Remove drops the task with the given id; absent ids are a no-op.
func (c *Collection) Remove(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := make([]core.Task, 0, len(c.tasks))
	for _, t := range c.tasks {
		if t.ID != id {
			next = append(next, t)
		}
	}
	if len(next) == len(c.tasks) {
		return false
	}
	c.tasks = next
	c.version++
	return true
}

// Tasks returns a copy of the current sequence.
func (c *Collection) Tasks() []core.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]core.Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

func (c *Collection) Get(id int64) (core.Task, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, t := range c.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return core.Task{}, false
}

func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tasks)
}

// Version changes on every mutation.
func (c *Collection) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// snapshot returns the sequence and its version atomically.
func (c *Collection) snapshot() ([]core.Task, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]core.Task, len(c.tasks))
	copy(out, c.tasks)
	return out, c.version
}
