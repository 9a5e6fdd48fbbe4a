package types

import (
	"github.com/arthur-debert/bpack/pkg/engine"
	"github.com/arthur-debert/bpack/pkg/errors"
)

// ListPacksResult holds the result of the 'list' command.
type ListPacksResult struct {
	Filter   string     `json:"filter,omitempty" yaml:"filter,omitempty"`
	Packs    []PackInfo `json:"packs" yaml:"packs"`
	Warnings []string   `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// PackInfo contains summary information about a single pack.
type PackInfo struct {
	Name        string `json:"name" yaml:"name"`
	ShortName   string `json:"shortName" yaml:"shortName"`
	Version     string `json:"version" yaml:"version"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Source      string `json:"source" yaml:"source"`
	Installed   bool   `json:"installed,omitempty" yaml:"installed,omitempty"`
}

// PackDetailResult holds the result of the 'show' command.
type PackDetailResult struct {
	Name         string           `json:"name" yaml:"name"`
	ShortName    string           `json:"shortName" yaml:"shortName"`
	Version      string           `json:"version" yaml:"version"`
	Description  string           `json:"description,omitempty" yaml:"description,omitempty"`
	Repository   string           `json:"repository,omitempty" yaml:"repository,omitempty"`
	Source       string           `json:"source" yaml:"source"`
	Owners       []string         `json:"owners,omitempty" yaml:"owners,omitempty"`
	Groups       []GroupInfo      `json:"groups" yaml:"groups"`
	Dependencies []DependencyInfo `json:"dependencies" yaml:"dependencies"`
	Templates    []TemplateInfo   `json:"templates,omitempty" yaml:"templates,omitempty"`
	Examples     []ExampleInfo    `json:"examples,omitempty" yaml:"examples,omitempty"`
	Readme       string           `json:"readme,omitempty" yaml:"readme,omitempty"`
	Warnings     []string         `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// GroupInfo is a feature group and the dependencies it enables
type GroupInfo struct {
	Name    string   `json:"name" yaml:"name"`
	Members []string `json:"members" yaml:"members"`
}

// DependencyInfo is one curated dependency
type DependencyInfo struct {
	Name     string   `json:"name" yaml:"name"`
	Version  string   `json:"version" yaml:"version"`
	Kind     string   `json:"kind" yaml:"kind"`
	Features []string `json:"features,omitempty" yaml:"features,omitempty"`
	Optional bool     `json:"optional,omitempty" yaml:"optional,omitempty"`
}

// TemplateInfo is a project template shipped by a pack
type TemplateInfo struct {
	Name        string `json:"name" yaml:"name"`
	Path        string `json:"path" yaml:"path"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// ExampleInfo is an example program shipped by a pack
type ExampleInfo struct {
	Name        string `json:"name" yaml:"name"`
	Path        string `json:"path" yaml:"path"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// ChangesResult holds the result of commands that edit manifests: add,
// sync, enable and remove.
type ChangesResult struct {
	Command  string       `json:"command" yaml:"command"`
	Pack     string       `json:"pack,omitempty" yaml:"pack,omitempty"`
	DryRun   bool         `json:"dryRun" yaml:"dryRun"`
	Changes  []ChangeInfo `json:"changes" yaml:"changes"`
	Files    []string     `json:"files,omitempty" yaml:"files,omitempty"`
	Warnings []string     `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	// Message replaces the change list when there is nothing to do
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// ChangeInfo is one planned or applied change
type ChangeInfo struct {
	Action     string   `json:"action" yaml:"action"`
	Symbol     string   `json:"symbol" yaml:"symbol"`
	Pack       string   `json:"pack" yaml:"pack"`
	Dependency string   `json:"dependency,omitempty" yaml:"dependency,omitempty"`
	Kind       string   `json:"kind,omitempty" yaml:"kind,omitempty"`
	Version    string   `json:"version,omitempty" yaml:"version,omitempty"`
	Features   []string `json:"features,omitempty" yaml:"features,omitempty"`
	Text       string   `json:"text" yaml:"text"`
}

// ChangesOf describes a change set
func ChangesOf(cs engine.ChangeSet) []ChangeInfo {
	out := make([]ChangeInfo, 0, len(cs))
	for _, c := range cs {
		info := ChangeInfo{
			Action:     c.Action.String(),
			Symbol:     c.Action.Symbol(),
			Pack:       c.Pack,
			Dependency: c.Dependency,
			Version:    c.Version,
			Features:   c.Features,
			Text:       c.String(),
		}
		if c.IsDependencyChange() {
			info.Kind = c.Kind.String()
		}
		if c.Action == engine.Remove && c.Registration != nil {
			info.Action = "unregister"
		}
		out = append(out, info)
	}
	return out
}

// ValidateResult holds the result of the 'validate' command.
type ValidateResult struct {
	Pack        string           `json:"pack" yaml:"pack"`
	Path        string           `json:"path" yaml:"path"`
	Diagnostics []DiagnosticInfo `json:"diagnostics" yaml:"diagnostics"`
	Errors      int              `json:"errors" yaml:"errors"`
	Warnings    int              `json:"warnings" yaml:"warnings"`
}

// Valid reports whether no error was found
func (r *ValidateResult) Valid() bool {
	return r.Errors == 0
}

// DiagnosticInfo is one validation finding
type DiagnosticInfo struct {
	Severity string `json:"severity" yaml:"severity"`
	Rule     string `json:"rule" yaml:"rule"`
	Message  string `json:"message" yaml:"message"`
}

// NewProjectResult holds the result of the 'new' command.
type NewProjectResult struct {
	Pack         string   `json:"pack" yaml:"pack"`
	Template     string   `json:"template" yaml:"template"`
	Directory    string   `json:"directory" yaml:"directory"`
	Engine       string   `json:"engine" yaml:"engine"`
	FilesCreated []string `json:"filesCreated" yaml:"filesCreated"`
}

// ErrorResult is a failure as the machine readable formats report it
type ErrorResult struct {
	Error   string                 `json:"error" yaml:"error"`
	Code    string                 `json:"code" yaml:"code"`
	Details map[string]interface{} `json:"details,omitempty" yaml:"details,omitempty"`
}

// NewErrorResult describes err, with its code and details when it carries them
func NewErrorResult(err error) ErrorResult {
	return ErrorResult{
		Error:   err.Error(),
		Code:    string(errors.GetErrorCode(err)),
		Details: errors.GetErrorDetails(err),
	}
}
