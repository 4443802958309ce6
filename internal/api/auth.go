package api

import (
	"context"
	"net/http"

	"github.com/sadopc/taskr/internal/core"
)

func (c *Client) Login(ctx context.Context, cr core.Credentials) (core.AuthResult, error) {
	var out core.AuthResult
	err := c.do(ctx, request{method: http.MethodPost, path: "/auth/login", body: cr, out: &out})
	return out, err
}

func (c *Client) Register(ctx context.Context, r core.Registration) (core.AuthResult, error) {
	var out core.AuthResult
	err := c.do(ctx, request{method: http.MethodPost, path: "/auth/register", body: r, out: &out})
	return out, err
}

func (c *Client) Profile(ctx context.Context, token string) (core.User, error) {
	var out core.User
	err := c.do(ctx, request{method: http.MethodGet, path: "/auth/profile", out: &out, token: token})
	return out, err
}
