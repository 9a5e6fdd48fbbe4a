package packspec

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/bpack/pkg/errors"
)

// Severity of a diagnostic
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Rule identifiers
const (
	RuleParse       = "manifest.parse"
	RuleWorkspace   = "manifest.workspace"
	RulePackage     = "manifest.package"
	RuleName        = "package.name"
	RuleVersion     = "package.version"
	RuleSuffix      = "package.suffix"
	RuleDescription = "package.description"
	RuleRepository  = "package.repository"
	RuleKeyword     = "package.keyword"
	RuleDependency  = "dependency.malformed"
	RuleGroup       = "group.malformed"
	RuleGroupMember = "group.member"
	RuleGroupCycle  = "group.cycle"
	RuleHidden      = "hidden.pattern"
	RuleHiddenAll   = "hidden.everything"
	RuleTemplate    = "template.malformed"
	RuleTemplateDir = "template.path"
)

// Diagnostic is one finding about a pack declaration
type Diagnostic struct {
	Severity Severity
	Rule     string
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s[%s]: %s", d.Severity, d.Rule, d.Message)
}

// Errors filters error-level diagnostics
func Errors(diags []Diagnostic) []Diagnostic {
	var out []Diagnostic
	for _, d := range diags {
		if d.Severity == SeverityError {
			out = append(out, d)
		}
	}
	return out
}

// Validate returns structural findings from parsing plus the pack policy
// checks: naming, metadata completeness and the hidden filter.
func (s *Spec) Validate() []Diagnostic {
	diags := append([]Diagnostic(nil), s.diagnostics...)

	if s.Name != "" && !strings.HasSuffix(s.Name, PackSuffix) && s.Name != Keyword {
		diags = append(diags, errorf(RuleSuffix, "pack name %q must end with %q", s.Name, PackSuffix))
	}
	if s.Repository == "" {
		diags = append(diags, warnf(RuleRepository, "package.repository is not set"))
	}
	if s.Description == "" {
		diags = append(diags, warnf(RuleDescription, "package.description is not set"))
	}
	hasKeyword := false
	for _, k := range s.Keywords {
		if k == Keyword {
			hasKeyword = true
		}
	}
	if !hasKeyword {
		diags = append(diags, warnf(RuleKeyword, "package.keywords should include %q so the pack can be found", Keyword))
	}
	if len(s.deps) > 0 && len(s.Dependencies()) == 0 {
		diags = append(diags, warnf(RuleHiddenAll, "every dependency is hidden"))
	}
	return diags
}

// ValidateOnDisk checks what the declaration references inside the crate
// directory: every template path must exist.
func ValidateOnDisk(s *Spec, dir string) []Diagnostic {
	var diags []Diagnostic
	for _, t := range s.templates {
		info, err := os.Stat(filepath.Join(dir, t.Path))
		if err != nil || !info.IsDir() {
			diags = append(diags, errorf(RuleTemplateDir, "template %q points at missing directory %s", t.Name, t.Path))
		}
	}
	return diags
}

// Check runs every check against the pack crate in dir
func Check(dir string) (*Spec, []Diagnostic, error) {
	path := filepath.Join(dir, "Cargo.toml")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, errors.ErrFileRead, "failed to read %s", path).
			WithDetail("path", path)
	}
	spec, diags := Inspect(raw)
	if spec == nil {
		return nil, diags, nil
	}
	spec.Dir = dir
	diags = append(spec.Validate(), ValidateOnDisk(spec, dir)...)
	return spec, diags, nil
}

// Load reads and parses the pack crate in dir
func Load(dir string) (*Spec, error) {
	path := filepath.Join(dir, "Cargo.toml")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileRead, "failed to read %s", path).
			WithDetail("path", path)
	}
	spec, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	spec.Dir = dir
	return spec, nil
}
