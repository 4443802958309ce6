package tui

import (
	"strings"

	"github.com/sadopc/taskr/internal/core"
)

// screen is the top-level state; tabs only exist on screenMain.
type screen int

const (
	screenRestoring screen = iota
	screenAuth
	screenMain
)

// viewState represents the currently active tab.
type viewState int

const (
	viewTasks viewState = iota
	viewStats
	viewAccount
)

var viewNames = []string{"Tasks", "Stats", "Account"}

type taskOp int

const (
	opCreate taskOp = iota
	opUpdate
	opToggle
	opDelete
)

// --- Messages ---

type restoreDoneMsg struct {
	err error
}

type authDoneMsg struct {
	user     core.User
	register bool
	err      error
}

type tasksLoadedMsg struct {
	err error
}

type taskDoneMsg struct {
	op   taskOp
	task core.Task
	err  error
}

type exportDoneMsg struct {
	path string
	err  error
}

type notifyExpiredMsg struct{}

// --- Helpers ---

func successText(op taskOp, t core.Task) string {
	switch op {
	case opCreate:
		return "Task created"
	case opUpdate:
		return "Task updated"
	case opToggle:
		if t.Done {
			return "Task marked as done"
		}
		return "Task marked as pending"
	case opDelete:
		return "Task deleted"
	}
	return ""
}

// truncate shortens s to n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
