// Package declarative loads a YAML seed file describing the desired
// permission state and applies it idempotently at startup.
package declarative

// SupportedAPIVersion is the only apiVersion this loader accepts.
const SupportedAPIVersion = "lumina/v1"

// KindNameSeed is the document kind of a seed file.
const KindNameSeed = "PermissionSeed"

// SeedDoc is the on-disk document envelope.
type SeedDoc struct {
	APIVersion string `yaml:"apiVersion"`
	Kind       string `yaml:"kind"`
	Spec       Seed   `yaml:"spec"`
}

// Seed is the desired permission state.
type Seed struct {
	Projects    []ProjectSeed    `yaml:"projects"`
	Roles       []string         `yaml:"roles"`
	Users       []UserSeed       `yaml:"users"`
	Permissions []PermissionSeed `yaml:"permissions"`
}

// ProjectSeed declares a project and its table directory.
type ProjectSeed struct {
	Name   string   `yaml:"name"`
	Tables []string `yaml:"tables"`
}

// UserSeed declares a user and their role grants.
type UserSeed struct {
	Email  string      `yaml:"email"`
	Name   string      `yaml:"name"`
	Grants []GrantSeed `yaml:"grants"`
}

// GrantSeed assigns one role within one project.
type GrantSeed struct {
	Project string `yaml:"project"`
	Role    string `yaml:"role"`
}

// PermissionSeed declares one (project, role, table) entitlement.
type PermissionSeed struct {
	Project     string `yaml:"project"`
	Role        string `yaml:"role"`
	Table       string `yaml:"table"`
	CanRead     bool   `yaml:"canRead"`
	CanReadSelf bool   `yaml:"canReadSelf"`
}
