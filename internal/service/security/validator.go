package security

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"lumina/internal/domain"
)

// Exposure is the schema slice a request may see: the prompt text handed to
// the generation service and the stored names of the tables behind it.
type Exposure struct {
	SchemaText string
	Tables     []string
}

// AccessValidator performs the pre-generation exposure computation and the
// post-generation reference check. Both fail closed.
type AccessValidator struct {
	perms  domain.PermissionRepository
	engine domain.QueryEngine
}

// NewAccessValidator creates an AccessValidator.
func NewAccessValidator(perms domain.PermissionRepository, engine domain.QueryEngine) *AccessValidator {
	return &AccessValidator{perms: perms, engine: engine}
}

// Exposure computes the schema text exposed to the generation service: only
// columns of tables that are both selected and readable by the role (any
// table for privileged roles). Zero selected tables is NoTablesSelected;
// a selection yielding no exposed column is NotPermitted.
func (v *AccessValidator) Exposure(ctx context.Context, project string, role domain.ResolvedRole, selected []string) (*Exposure, error) {
	if len(selected) == 0 {
		return nil, &domain.NoTablesSelectedError{}
	}

	cols, err := v.engine.Columns(ctx, project)
	if err != nil {
		return nil, err
	}

	var pm domain.PermissionMap
	if !role.Privileged() {
		pm, err = v.perms.MapFor(ctx, project, role.Name)
		if err != nil {
			return nil, err
		}
	}

	selectedSet := lowerSet(selected)

	var (
		lines  []string
		tables []string
		seen   = map[string]bool{}
	)
	for _, c := range cols {
		key := strings.ToLower(c.Table)
		if !selectedSet[key] {
			continue
		}
		if !role.Privileged() {
			p, ok := pm.Lookup(c.Table)
			if !ok || !p.Readable() {
				continue
			}
		}
		lines = append(lines, fmt.Sprintf("%s.%s (%s)", c.Table, c.Column, c.Type))
		if !seen[key] {
			seen[key] = true
			tables = append(tables, c.Table)
		}
	}

	if len(lines) == 0 {
		denied := append([]string(nil), selected...)
		sort.Strings(denied)
		return nil, &domain.NotPermittedError{Tables: denied}
	}

	return &Exposure{SchemaText: strings.Join(lines, "\n"), Tables: tables}, nil
}

// Check partitions the tables referenced by a generated statement against the
// caller's selection and permissions. A reference outside the selection is
// NotSelected (user-correctable); a selected reference without a readable
// permission record is NotPermitted (terminal). Privileged roles skip the
// permission dimension but the referenced table must still exist in the
// project schema.
func (v *AccessValidator) Check(ctx context.Context, project string, role domain.ResolvedRole, selected []string, refs []domain.TableRef) (domain.AccessDecision, error) {
	decision := domain.AccessDecision{Bypassed: role.Privileged()}

	var pm domain.PermissionMap
	if !role.Privileged() {
		var err error
		pm, err = v.perms.MapFor(ctx, project, role.Name)
		if err != nil {
			return domain.AccessDecision{}, err
		}
	}

	var schemaSet map[string]bool
	if role.Privileged() {
		tables, err := v.engine.Tables(ctx, project)
		if err != nil {
			return domain.AccessDecision{}, err
		}
		schemaSet = lowerSet(tables)
	}

	selectedSet := lowerSet(selected)

	seen := map[string]bool{}
	for _, ref := range refs {
		key := strings.ToLower(ref.Table)
		if seen[key] {
			continue
		}
		seen[key] = true

		switch {
		case !selectedSet[key]:
			decision.NotSelected = append(decision.NotSelected, ref.Table)
		case role.Privileged():
			if schemaSet[key] {
				decision.Permitted = append(decision.Permitted, ref.Table)
			} else {
				decision.NotSelected = append(decision.NotSelected, ref.Table)
			}
		default:
			if p, ok := pm.Lookup(ref.Table); ok && p.Readable() {
				decision.Permitted = append(decision.Permitted, ref.Table)
			} else {
				decision.NotPermitted = append(decision.NotPermitted, ref.Table)
			}
		}
	}

	sort.Strings(decision.NotSelected)
	sort.Strings(decision.NotPermitted)
	return decision, nil
}

func lowerSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = true
	}
	return set
}
