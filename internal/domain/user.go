package domain

import (
	"regexp"
	"strings"
	"time"
)

// User represents a person identified by a case-normalized email address.
type User struct {
	ID        string
	Email     string
	Name      string
	IsAdmin   bool
	CreatedAt time.Time
}

// Project is a named tenant scope mapping 1:1 to a connection target.
type Project struct {
	ID   string
	Name string
}

// RoleGrant assigns exactly one role to a user within one project.
type RoleGrant struct {
	UserID    string
	ProjectID string
	Role      string
}

// NormalizeEmail lower-cases and trims an email for use as an identity key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

// UpsertUserRequest holds parameters for creating or updating a user.
type UpsertUserRequest struct {
	Email string
	Name  string
}

// Validate checks that the request is well-formed.
func (r *UpsertUserRequest) Validate() error {
	if r.Email == "" || r.Name == "" {
		return ErrValidation("email and name are required")
	}
	if !ValidEmail(r.Email) {
		return ErrValidation("invalid email address")
	}
	return nil
}

// AssignRoleRequest holds parameters for granting a role to a user in a project.
type AssignRoleRequest struct {
	Email   string
	Project string
	Role    string
}

// Validate checks that the request is well-formed.
func (r *AssignRoleRequest) Validate() error {
	if r.Email == "" {
		return ErrValidation("email is required")
	}
	if r.Project == "" || r.Role == "" {
		return ErrValidation("project and role are required")
	}
	return nil
}

// ProjectRole pairs a project name with the role held there.
type ProjectRole struct {
	Project string
	Role    string
}
