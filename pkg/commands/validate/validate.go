// Package validate checks a pack crate the way publishing tools and CI do.
package validate

import (
	"path/filepath"

	"github.com/arthur-debert/bpack/pkg/errors"
	"github.com/arthur-debert/bpack/pkg/logging"
	"github.com/arthur-debert/bpack/pkg/packspec"
	"github.com/arthur-debert/bpack/pkg/types"
)

// ValidatePackOptions contains options for the validate command
type ValidatePackOptions struct {
	// Path is the pack crate directory, the working directory when empty
	Path string
}

// ValidatePack collects every diagnostic for the pack crate. Findings are
// part of the result, not an error; see Failure.
func ValidatePack(opts ValidatePackOptions) (*types.ValidateResult, error) {
	logger := logging.GetLogger("commands.validate")

	dir := opts.Path
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to resolve %s", dir)
	}

	spec, diags, err := packspec.Check(abs)
	if err != nil {
		return nil, err
	}

	result := &types.ValidateResult{Path: abs}
	if spec != nil {
		result.Pack = spec.Name
	}
	for _, d := range diags {
		result.Diagnostics = append(result.Diagnostics, types.DiagnosticInfo{
			Severity: d.Severity.String(),
			Rule:     d.Rule,
			Message:  d.Message,
		})
		if d.Severity == packspec.SeverityError {
			result.Errors++
		} else {
			result.Warnings++
		}
	}

	logger.Info().
		Str("pack", result.Pack).
		Int("errors", result.Errors).
		Int("warnings", result.Warnings).
		Msg("Validation finished")
	return result, nil
}

// Failure is the error a failed validation exits with, nil when valid
func Failure(r *types.ValidateResult) error {
	if r.Valid() {
		return nil
	}
	return errors.Newf(errors.ErrSpec, "validation failed: %d error(s), %d warning(s)", r.Errors, r.Warnings).
		WithDetail("pack", r.Pack).
		WithDetail("path", r.Path)
}
