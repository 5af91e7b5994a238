package declarative

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads and validates a seed file. Unknown fields are rejected so
// typos surface at load time instead of silently dropping state.
func LoadFile(path string) (*Seed, error) {
	data, err := os.ReadFile(path) //nolint:gosec // intentional: reading user-specified config files
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var doc SeedDoc
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if doc.APIVersion != SupportedAPIVersion {
		return nil, fmt.Errorf("%s: unsupported apiVersion %q (expected %q)", path, doc.APIVersion, SupportedAPIVersion)
	}
	if doc.Kind != KindNameSeed {
		return nil, fmt.Errorf("%s: unexpected kind %q (expected %q)", path, doc.Kind, KindNameSeed)
	}

	if err := validate(&doc.Spec); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &doc.Spec, nil
}

// validate checks referential consistency inside the seed: every grant and
// permission must point at a declared project and role.
func validate(s *Seed) error {
	projects := make(map[string]bool, len(s.Projects))
	for _, p := range s.Projects {
		if p.Name == "" {
			return fmt.Errorf("project with empty name")
		}
		if projects[p.Name] {
			return fmt.Errorf("duplicate project %q", p.Name)
		}
		projects[p.Name] = true
	}

	roles := make(map[string]bool, len(s.Roles))
	for _, r := range s.Roles {
		if r == "" {
			return fmt.Errorf("role with empty name")
		}
		roles[r] = true
	}

	for _, u := range s.Users {
		if u.Email == "" || u.Name == "" {
			return fmt.Errorf("user %q: email and name are required", u.Email)
		}
		for _, g := range u.Grants {
			if !projects[g.Project] {
				return fmt.Errorf("user %q: grant references unknown project %q", u.Email, g.Project)
			}
			if !roles[g.Role] {
				return fmt.Errorf("user %q: grant references unknown role %q", u.Email, g.Role)
			}
		}
	}

	for _, p := range s.Permissions {
		if !projects[p.Project] {
			return fmt.Errorf("permission references unknown project %q", p.Project)
		}
		if !roles[p.Role] {
			return fmt.Errorf("permission references unknown role %q", p.Role)
		}
		if p.Table == "" {
			return fmt.Errorf("permission for %s/%s has empty table", p.Project, p.Role)
		}
	}

	return nil
}
