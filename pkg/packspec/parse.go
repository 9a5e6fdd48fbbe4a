package packspec

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arthur-debert/bpack/pkg/errors"
	"github.com/arthur-debert/bpack/pkg/manifest"
	"github.com/gobwas/glob"
	"github.com/pelletier/go-toml/v2"
)

type rawManifest struct {
	Package           *rawPackage            `toml:"package"`
	Workspace         map[string]interface{} `toml:"workspace"`
	Dependencies      map[string]interface{} `toml:"dependencies"`
	DevDependencies   map[string]interface{} `toml:"dev-dependencies"`
	BuildDependencies map[string]interface{} `toml:"build-dependencies"`
	Features          map[string]interface{} `toml:"features"`
}

// Package fields may be inherited from a workspace ({ workspace = true }),
// so they are decoded loosely.
type rawPackage struct {
	Name        interface{} `toml:"name"`
	Version     interface{} `toml:"version"`
	Description interface{} `toml:"description"`
	Repository  interface{} `toml:"repository"`
	Keywords    interface{} `toml:"keywords"`
	Metadata    rawMetadata `toml:"metadata"`
}

type rawMetadata struct {
	BatteryPack struct {
		Hidden interface{} `toml:"hidden"`
	} `toml:"battery-pack"`
	Battery struct {
		Templates map[string]interface{} `toml:"templates"`
	} `toml:"battery"`
}

// Parse reads a pack's Cargo.toml. Structural problems (missing name or
// version, malformed dependencies, unknown group members, group cycles,
// invalid hidden patterns) yield a SPEC_ERROR.
func Parse(raw []byte) (*Spec, error) {
	spec, diags := Inspect(raw)
	errs := Errors(diags)
	if len(errs) == 0 {
		return spec, nil
	}
	messages := make([]string, len(errs))
	for i, d := range errs {
		messages[i] = d.String()
	}
	name := ""
	if spec != nil {
		name = spec.Name
	}
	return nil, errors.Newf(errors.ErrSpec, "invalid pack declaration: %s", errs[0].Message).
		WithDetail("pack", name).
		WithDetail("diagnostics", messages)
}

// Inspect parses as much of the declaration as it can and reports every
// structural problem instead of stopping at the first. The spec is nil only
// when the document is not a package manifest at all.
func Inspect(raw []byte) (*Spec, []Diagnostic) {
	var doc rawManifest
	if err := toml.Unmarshal(raw, &doc); err != nil {
		return nil, []Diagnostic{errorf(RuleParse, "failed to parse Cargo.toml: %v", err)}
	}
	if doc.Package == nil {
		if doc.Workspace != nil {
			return nil, []Diagnostic{errorf(RuleWorkspace, "this is a workspace manifest; point at the pack crate instead")}
		}
		return nil, []Diagnostic{errorf(RulePackage, "missing [package] section")}
	}

	p := &parser{spec: &Spec{groups: map[string][]string{}}}
	p.parsePackage(doc.Package)
	p.parseDependencies(manifest.Runtime, doc.Dependencies)
	p.parseDependencies(manifest.Dev, doc.DevDependencies)
	p.parseDependencies(manifest.Build, doc.BuildDependencies)
	sort.SliceStable(p.spec.deps, func(i, j int) bool {
		a, b := p.spec.deps[i], p.spec.deps[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Kind < b.Kind
	})
	p.parseGroups(doc.Features)
	p.parseHidden(doc.Package.Metadata.BatteryPack.Hidden)
	p.parseTemplates(doc.Package.Metadata.Battery.Templates)

	p.spec.diagnostics = p.diags
	return p.spec, p.diags
}

type parser struct {
	spec  *Spec
	diags []Diagnostic
}

func (p *parser) report(d Diagnostic) {
	p.diags = append(p.diags, d)
}

func (p *parser) parsePackage(pkg *rawPackage) {
	s := p.spec
	name, ok := pkg.Name.(string)
	if !ok || name == "" {
		p.report(errorf(RuleName, "package.name is missing"))
	}
	s.Name = name

	switch v := pkg.Version.(type) {
	case string:
		s.Version = v
	case map[string]interface{}:
		// version.workspace = true; the concrete version lives elsewhere
		if inherited, _ := v["workspace"].(bool); !inherited {
			p.report(errorf(RuleVersion, "package.version must be a string"))
		}
	default:
		p.report(errorf(RuleVersion, "package.version is missing"))
	}

	s.Description, _ = pkg.Description.(string)
	s.Repository, _ = pkg.Repository.(string)
	s.Keywords = stringList(pkg.Keywords)
}

func (p *parser) parseDependencies(kind manifest.Kind, table map[string]interface{}) {
	for name, v := range table {
		decl := DependencyDecl{Name: name, Kind: kind}
		switch val := v.(type) {
		case string:
			decl.Version = val
		case map[string]interface{}:
			if raw, ok := val["version"]; ok {
				s, ok := raw.(string)
				if !ok {
					p.report(errorf(RuleDependency, "%s.%s: version must be a string", kind.Table(), name))
					continue
				}
				decl.Version = s
			}
			if raw, ok := val["features"]; ok {
				feats, ok := toStrings(raw)
				if !ok {
					p.report(errorf(RuleDependency, "%s.%s: features must be an array of strings", kind.Table(), name))
					continue
				}
				decl.Features = feats
			}
			if raw, ok := val["optional"]; ok {
				b, ok := raw.(bool)
				if !ok {
					p.report(errorf(RuleDependency, "%s.%s: optional must be a boolean", kind.Table(), name))
					continue
				}
				decl.Optional = b
			}
		default:
			p.report(errorf(RuleDependency, "%s.%s: unsupported value of type %T", kind.Table(), name, v))
			continue
		}
		p.spec.deps = append(p.spec.deps, decl)
	}
}

func (p *parser) parseGroups(features map[string]interface{}) {
	names := make([]string, 0, len(features))
	for name := range features {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		members, ok := toStrings(features[name])
		if !ok {
			p.report(errorf(RuleGroup, "features.%s must be an array of strings", name))
			continue
		}
		p.spec.groups[name] = members
		if name == manifest.DefaultGroup {
			p.spec.declaredDefault = true
		}
	}

	for _, name := range names {
		for _, raw := range p.spec.groups[name] {
			m := classify(raw)
			switch m.kind {
			case memberGroupOrDep:
				if _, isGroup := p.spec.groups[m.name]; !isGroup && !p.spec.declared(m.name) {
					p.report(errorf(RuleGroupMember, "group %q references unknown member %q", name, raw))
				}
			default:
				if !p.spec.declared(m.name) {
					p.report(errorf(RuleGroupMember, "group %q references unknown dependency %q", name, m.name))
				}
			}
		}
	}

	if cycle := p.findCycle(names); cycle != nil {
		p.report(errorf(RuleGroupCycle, "groups form a cycle: %s", strings.Join(cycle, " -> ")))
	}
}

// findCycle returns the first group inclusion cycle, or nil
func (p *parser) findCycle(names []string) []string {
	const (
		unvisited = iota
		active
		done
	)
	state := map[string]int{}
	var stack []string
	var walk func(name string) []string
	walk = func(name string) []string {
		state[name] = active
		stack = append(stack, name)
		for _, raw := range p.spec.groups[name] {
			m := classify(raw)
			if m.kind != memberGroupOrDep {
				continue
			}
			if _, isGroup := p.spec.groups[m.name]; !isGroup {
				continue
			}
			switch state[m.name] {
			case active:
				for i, n := range stack {
					if n == m.name {
						return append(append([]string(nil), stack[i:]...), m.name)
					}
				}
			case unvisited:
				if c := walk(m.name); c != nil {
					return c
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = done
		return nil
	}
	for _, name := range names {
		if state[name] == unvisited {
			if c := walk(name); c != nil {
				return c
			}
		}
	}
	return nil
}

func (p *parser) parseHidden(raw interface{}) {
	if raw == nil {
		return
	}
	patterns, ok := toStrings(raw)
	if !ok {
		p.report(errorf(RuleHidden, "package.metadata.battery-pack.hidden must be an array of strings"))
		return
	}
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			p.report(errorf(RuleHidden, "invalid hidden pattern %q: %v", pattern, err))
			continue
		}
		p.spec.hidden = append(p.spec.hidden, hiddenPattern{raw: pattern, g: g})
	}
}

func (p *parser) parseTemplates(raw map[string]interface{}) {
	for name, v := range raw {
		tbl, ok := v.(map[string]interface{})
		if !ok {
			p.report(errorf(RuleTemplate, "template %q must be a table", name))
			continue
		}
		path, _ := tbl["path"].(string)
		if path == "" {
			p.report(errorf(RuleTemplate, "template %q has no path", name))
			continue
		}
		desc, _ := tbl["description"].(string)
		p.spec.templates = append(p.spec.templates, Template{Name: name, Path: path, Description: desc})
	}
	sort.Slice(p.spec.templates, func(i, j int) bool {
		return p.spec.templates[i].Name < p.spec.templates[j].Name
	})
}

type memberKind int

const (
	memberGroupOrDep memberKind = iota
	memberDep
	memberAugment
	memberWeakAugment
)

type member struct {
	kind    memberKind
	name    string
	feature string
}

// classify splits a [features] entry into its Cargo meaning
func classify(raw string) member {
	if strings.HasPrefix(raw, "dep:") {
		return member{kind: memberDep, name: strings.TrimPrefix(raw, "dep:")}
	}
	if i := strings.IndexByte(raw, '/'); i >= 0 {
		name, feature := raw[:i], raw[i+1:]
		if strings.HasSuffix(name, "?") {
			return member{kind: memberWeakAugment, name: strings.TrimSuffix(name, "?"), feature: feature}
		}
		return member{kind: memberAugment, name: name, feature: feature}
	}
	return member{kind: memberGroupOrDep, name: raw}
}

func toStrings(v interface{}) ([]string, bool) {
	items, ok := v.([]interface{})
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		s, ok := it.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func stringList(v interface{}) []string {
	out, _ := toStrings(v)
	return out
}

func errorf(rule, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Severity: SeverityError, Rule: rule, Message: fmt.Sprintf(format, args...)}
}

func warnf(rule, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Severity: SeverityWarning, Rule: rule, Message: fmt.Sprintf(format, args...)}
}
