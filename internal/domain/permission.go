package domain

import (
	"sort"
	"strings"
)

// RoleLevel is the privilege level of a resolved role, computed once at
// grant-read time rather than re-derived by string comparison at check sites.
type RoleLevel int

const (
	// LevelStandard roles are subject to per-table and row-level checks.
	LevelStandard RoleLevel = iota
	// LevelPrivileged roles bypass per-table permission checks and
	// row-security injection entirely.
	LevelPrivileged
)

// privilegedRoles is the fixed policy constant of role names that bypass
// per-table and row-level checks. Membership is compared case-insensitively.
var privilegedRoles = map[string]bool{
	"admin":    true,
	"cto":      true,
	"manager":  true,
	"techlead": true,
}

// LevelForRole returns the privilege level for a role name.
func LevelForRole(role string) RoleLevel {
	if privilegedRoles[strings.ToLower(strings.TrimSpace(role))] {
		return LevelPrivileged
	}
	return LevelStandard
}

// ResolvedRole is the effective role of a user within a project.
type ResolvedRole struct {
	Name  string
	Level RoleLevel
}

// Privileged reports whether the role bypasses table and row checks.
func (r ResolvedRole) Privileged() bool { return r.Level == LevelPrivileged }

// TablePermission is the per-table entitlement of a role within a project.
// CanRead always dominates CanReadSelf: a table with full read is never
// narrowed to own-row visibility, even when both flags are set.
type TablePermission struct {
	Table       string
	CanRead     bool
	CanReadSelf bool
}

// SelfOnly reports whether the permission restricts the role to its own rows.
func (p TablePermission) SelfOnly() bool { return p.CanReadSelf && !p.CanRead }

// Readable reports whether the role may read the table at all.
func (p TablePermission) Readable() bool { return p.CanRead || p.CanReadSelf }

// PermissionMap indexes table permissions by lower-cased table name.
type PermissionMap map[string]TablePermission

// NewPermissionMap builds a PermissionMap from a permission list.
func NewPermissionMap(perms []TablePermission) PermissionMap {
	m := make(PermissionMap, len(perms))
	for _, p := range perms {
		m[strings.ToLower(p.Table)] = p
	}
	return m
}

// Lookup returns the permission for a table, matching case-insensitively.
func (m PermissionMap) Lookup(table string) (TablePermission, bool) {
	p, ok := m[strings.ToLower(table)]
	return p, ok
}

// SelfOnlyTables returns the stored names of tables restricted to own rows,
// sorted for deterministic output.
func (m PermissionMap) SelfOnlyTables() []string {
	var tables []string
	for _, p := range m {
		if p.SelfOnly() {
			tables = append(tables, p.Table)
		}
	}
	sort.Strings(tables)
	return tables
}
