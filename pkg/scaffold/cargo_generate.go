package scaffold

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/arthur-debert/bpack/pkg/errors"
	"github.com/arthur-debert/bpack/pkg/filesystem"
	"github.com/arthur-debert/bpack/pkg/logging"
)

// Runner executes a command and returns its combined output
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.Bytes(), err
}

// CargoGenerate delegates to the cargo-generate subcommand, which supports
// the full template language.
type CargoGenerate struct {
	// Cargo is the cargo binary, "cargo" when empty
	Cargo string
	Run   Runner
	FS    filesystem.FS
}

// Args is the cargo command line for req
func (c *CargoGenerate) Args(req Request) []string {
	return []string{
		"generate",
		"--path", req.TemplateDir(),
		"--name", req.Name,
		"--destination", req.Directory,
		"--silent",
	}
}

// Materialize runs cargo generate
func (c *CargoGenerate) Materialize(ctx context.Context, req Request) (*Result, error) {
	logger := logging.GetLogger("scaffold.cargo-generate")
	fsys := c.FS
	if fsys == nil {
		fsys = filesystem.NewOS()
	}
	if err := checkRequest(fsys, req); err != nil {
		return nil, err
	}

	cargo, run := c.Cargo, c.Run
	if cargo == "" {
		cargo = "cargo"
	}
	if run == nil {
		run = execRunner
	}

	args := c.Args(req)
	logger.Info().Str("command", cargo).Strs("args", args).Msg("Executing command")
	out, err := run(ctx, cargo, args...)
	if len(out) > 0 {
		logger.Debug().Str("output", string(out)).Msg("Command output")
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrTemplate, "cargo generate failed: %s", strings.TrimSpace(string(out))).
			WithDetail("template", req.Template.Name)
	}
	return &Result{Dir: req.Dir()}, nil
}
