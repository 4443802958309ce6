package core

import (
	"strings"
	"time"
)

type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// DisplayName returns the user's name, falling back to the email.
func (u User) DisplayName() string {
	if strings.TrimSpace(u.Name) != "" {
		return u.Name
	}
	return u.Email
}

type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Done        bool      `json:"done"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	UserID      int64     `json:"userId"`
}

// Draft is the body of a task creation request.
type Draft struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Validate trims the draft in place and rejects an empty title.
func (d *Draft) Validate() error {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	if d.Title == "" {
		return &ValidationError{Field: "title", Message: "Title is required"}
	}
	return nil
}

// Patch is a partial task update. Nil fields are not sent.
type Patch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Done        *bool   `json:"done,omitempty"`
}

func (p *Patch) Validate() error {
	if p.Title == nil && p.Description == nil && p.Done == nil {
		return &ValidationError{Field: "patch", Message: "Nothing to update"}
	}
	if p.Title != nil {
		t := strings.TrimSpace(*p.Title)
		if t == "" {
			return &ValidationError{Field: "title", Message: "Title is required"}
		}
		p.Title = &t
	}
	if p.Description != nil {
		d := strings.TrimSpace(*p.Description)
		p.Description = &d
	}
	return nil
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c Credentials) Validate() error {
	return validateLogin(c.Email, c.Password)
}

type Registration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

func (r Registration) Validate() error {
	return validateLogin(r.Email, r.Password)
}

func validateLogin(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return &ValidationError{Field: "email", Message: "Email is required"}
	}
	if password == "" {
		return &ValidationError{Field: "password", Message: "Password is required"}
	}
	return nil
}

// AuthResult is returned by the login and register endpoints.
type AuthResult struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

// Stats is derived from a task sequence and never stored.
type Stats struct {
	Total          int `json:"total"`
	Completed      int `json:"completed"`
	Pending        int `json:"pending"`
	CompletionRate int `json:"completionRate"`
}

type NotificationKind string

const (
	KindSuccess NotificationKind = "success"
	KindError   NotificationKind = "error"
)

// Notification is a transient user-facing message. At most one is active.
type Notification struct {
	Text      string
	Kind      NotificationKind
	ExpiresAt time.Time
}
