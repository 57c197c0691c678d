package storage

import (
	"time"

	"github.com/textlab/textlab/internal/reference"
)

// Role is the account type of a user.
type Role string

const (
	RoleStudent    Role = "student"
	RoleTeacher    Role = "teacher"
	RoleResearcher Role = "researcher"
	RoleAdmin      Role = "admin"
)

// ParseRole returns the role named by s, and false if s names no role.
func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleStudent, RoleTeacher, RoleResearcher, RoleAdmin:
		return r, true
	default:
		return "", false
	}
}

// User is a registered account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user has the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Document is a piece of academic writing owned by a user.
type Document struct {
	ID        string         `json:"id"`
	OwnerID   string         `json:"owner_id"`
	Title     string         `json:"title"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	IsPublic  bool           `json:"is_public"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Version is a snapshot of a document's content taken before an update.
type Version struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// Citation is an in-text citation stored for a document.
type Citation struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	reference.Citation
	CreatedAt time.Time `json:"created_at"`
}

// Reference is a reference-list entry stored for a document.
type Reference struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	reference.Reference
	CreatedAt time.Time `json:"created_at"`
}

// ListOptions bounds a list query.
type ListOptions struct {
	Limit  int
	Offset int
}

func (o ListOptions) limit() int {
	if o.Limit <= 0 {
		return -1 // SQLite: no limit
	}
	return o.Limit
}

func (o ListOptions) offset() int {
	if o.Offset < 0 {
		return 0
	}
	return o.Offset
}
