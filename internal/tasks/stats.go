package tasks

import (
	"math"
	"sync"

	"github.com/sadopc/taskr/internal/core"
)

// ComputeStats derives totals from a task sequence.
func ComputeStats(tasks []core.Task) core.Stats {
	var s core.Stats
	s.Total = len(tasks)
	for _, t := range tasks {
		if t.Done {
			s.Completed++
		}
	}
	s.Pending = s.Total - s.Completed
	if s.Total > 0 {
		s.CompletionRate = int(math.Round(float64(s.Completed) / float64(s.Total) * 100))
	}
	return s
}

// StatsCache memoizes ComputeStats on the collection version.
type StatsCache struct {
	mu      sync.Mutex
	valid   bool
	version uint64
	stats   core.Stats
}

func (sc *StatsCache) Get(c *Collection) core.Stats {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.valid && sc.version == c.Version() {
		return sc.stats
	}
	tasks, v := c.snapshot()
	sc.stats = ComputeStats(tasks)
	sc.version = v
	sc.valid = true
	return sc.stats
}
