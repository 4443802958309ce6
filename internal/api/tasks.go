package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sadopc/taskr/internal/core"
)

func (c *Client) ListTasks(ctx context.Context) ([]core.Task, error) {
	var out []core.Task
	if err := c.do(ctx, request{method: http.MethodGet, path: "/tasks", out: &out}); err != nil {
		return nil, err
	}
	if out == nil {
		out = []core.Task{}
	}
	return out, nil
}

func (c *Client) CreateTask(ctx context.Context, d core.Draft) (core.Task, error) {
	var out core.Task
	err := c.do(ctx, request{method: http.MethodPost, path: "/tasks", body: d, out: &out})
	return out, err
}

func (c *Client) UpdateTask(ctx context.Context, id int64, p core.Patch) (core.Task, error) {
	var out core.Task
	err := c.do(ctx, request{method: http.MethodPatch, path: taskPath(id), body: p, out: &out})
	return out, err
}

// ToggleTask asks the server to flip the done flag; the current state is
// not sent.
func (c *Client) ToggleTask(ctx context.Context, id int64) (core.Task, error) {
	var out core.Task
	err := c.do(ctx, request{method: http.MethodPatch, path: taskPath(id) + "/toggle", out: &out})
	return out, err
}

func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, request{method: http.MethodDelete, path: taskPath(id)})
}

func taskPath(id int64) string {
	return fmt.Sprintf("/tasks/%d", id)
}
