package manifest

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/arthur-debert/bpack/pkg/errors"
	"github.com/go-playground/validator/v10"
)

// DefaultGroup is active for a registered pack that names no groups
const DefaultGroup = "default"

// reservedKeys live in the registration table but describe the pack itself
var reservedKeys = map[string]bool{"hidden": true}

// Scope selects which metadata table holds a registration
type Scope int

const (
	PackageScope Scope = iota
	WorkspaceScope
)

func (s Scope) String() string {
	if s == WorkspaceScope {
		return "workspace"
	}
	return "package"
}

func (s Scope) tablePath() []string {
	return []string{s.String(), "metadata", "battery-pack"}
}

// Registration records that a project uses a pack, and which groups of it
type Registration struct {
	Pack    string   `validate:"required,cratename"`
	Version string   `validate:"omitempty,max=64"`
	Groups  []string `validate:"dive,required"`
	Scope   Scope
}

// HasGroup reports whether group is active
func (r Registration) HasGroup(group string) bool {
	for _, g := range r.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// RegistrationIssue is a registration entry with an unsupported shape. It is
// reported and never handed to the engine.
type RegistrationIssue struct {
	Scope  Scope
	Pack   string
	Reason string
}

func (i RegistrationIssue) String() string {
	return fmt.Sprintf("%s.metadata.battery-pack.%s: %s", i.Scope, i.Pack, i.Reason)
}

var crateNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]{0,63}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("cratename", func(fl validator.FieldLevel) bool {
		return crateNamePattern.MatchString(fl.Field().String())
	})
	return v
}

// ValidCrateName reports whether name is acceptable to crates.io
func ValidCrateName(name string) bool {
	return validate.Var(name, "cratename") == nil
}

func decodeRegistration(scope Scope, name string, v interface{}) (Registration, *RegistrationIssue) {
	issue := func(format string, args ...interface{}) *RegistrationIssue {
		return &RegistrationIssue{Scope: scope, Pack: name, Reason: fmt.Sprintf(format, args...)}
	}
	if !ValidCrateName(name) {
		return Registration{}, issue("invalid crate name")
	}

	reg := Registration{Pack: name, Scope: scope}
	switch val := v.(type) {
	case string:
		reg.Version = val
		reg.Groups = []string{DefaultGroup}
	case map[string]interface{}:
		if raw, ok := val["version"]; ok {
			s, ok := raw.(string)
			if !ok {
				return Registration{}, issue("version must be a string, got %T", raw)
			}
			reg.Version = s
		}
		raw, ok := val["features"]
		if !ok {
			reg.Groups = []string{DefaultGroup}
			break
		}
		items, ok := raw.([]interface{})
		if !ok {
			return Registration{}, issue("features must be an array, got %T", raw)
		}
		reg.Groups = make([]string, 0, len(items))
		for _, it := range items {
			s, ok := it.(string)
			if !ok || s == "" {
				return Registration{}, issue("features must hold non-empty strings")
			}
			reg.Groups = append(reg.Groups, s)
		}
	default:
		return Registration{}, issue("unsupported value of type %T", v)
	}
	return reg, nil
}

// Registrations returns every well-formed registration in both scopes, and
// the entries that were quarantined.
func (m *Model) Registrations() ([]Registration, []RegistrationIssue) {
	var regs []Registration
	var issues []RegistrationIssue
	for _, scope := range []Scope{PackageScope, WorkspaceScope} {
		tbl, ok := m.table(scope.tablePath()...)
		if !ok {
			continue
		}
		names := make([]string, 0, len(tbl))
		for name := range tbl {
			if !reservedKeys[name] {
				names = append(names, name)
			}
		}
		sort.Strings(names)
		for _, name := range names {
			reg, issue := decodeRegistration(scope, name, tbl[name])
			if issue != nil {
				issues = append(issues, *issue)
				continue
			}
			regs = append(regs, reg)
		}
	}
	return regs, issues
}

// Registration returns the well-formed registration of pack in scope
func (m *Model) Registration(scope Scope, pack string) (Registration, bool) {
	tbl, ok := m.table(scope.tablePath()...)
	if !ok {
		return Registration{}, false
	}
	v, ok := tbl[pack]
	if !ok || reservedKeys[pack] {
		return Registration{}, false
	}
	reg, issue := decodeRegistration(scope, pack, v)
	return reg, issue == nil
}

// ActiveGroups returns the groups active for pack in scope. An unregistered
// pack has the default group active.
func (m *Model) ActiveGroups(scope Scope, pack string) []string {
	if reg, ok := m.Registration(scope, pack); ok {
		return reg.Groups
	}
	return []string{DefaultGroup}
}

// SetRegistration records reg, keeping the existing entry's style. A new
// registration holding only the default group uses the short form.
func (m *Model) SetRegistration(reg Registration) error {
	if err := validate.Struct(reg); err != nil {
		return errors.Wrapf(err, errors.ErrInvalidInput, "invalid registration for %q", reg.Pack)
	}
	upd := update{fields: []field{
		{key: "version", value: optionalString(reg.Version)},
		{key: "features", value: renderStringArray(reg.Groups)},
	}}
	if reg.Version != "" && len(reg.Groups) == 1 && reg.Groups[0] == DefaultGroup {
		upd.short = renderString(reg.Version)
	}
	return m.setEntry(reg.Scope.tablePath(), reg.Pack, upd)
}

// RemoveRegistration deletes the registration of pack in scope
func (m *Model) RemoveRegistration(scope Scope, pack string) bool {
	return m.removeEntry(scope.tablePath(), pack)
}

func optionalString(v string) string {
	if v == "" {
		return ""
	}
	return renderString(v)
}
