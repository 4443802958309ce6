package core

import "context"

// Gateway is the remote task collection, scoped to the session credential.
type Gateway interface {
	ListTasks(ctx context.Context) ([]Task, error)
	CreateTask(ctx context.Context, d Draft) (Task, error)
	UpdateTask(ctx context.Context, id int64, p Patch) (Task, error)
	ToggleTask(ctx context.Context, id int64) (Task, error)
	DeleteTask(ctx context.Context, id int64) error
}

type Authenticator interface {
	Login(ctx context.Context, c Credentials) (AuthResult, error)
	Register(ctx context.Context, r Registration) (AuthResult, error)
	// Profile fetches the user for token; used only to validate it.
	Profile(ctx context.Context, token string) (User, error)
}

// Storage is durable client-side key/value storage.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Clear(keys ...string) error
}
