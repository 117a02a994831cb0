// Package task implements the developer command runner: a lookup table
// from verb to external tool invocation.
//
// The runner performs no branching logic, no error translation, and no
// aggregation. Each verb maps to exactly one underlying tool command
// line (or, for lint and format, a fixed sequence executed in order
// with stop-on-first-failure, matching shell `&&` convention). Exit
// codes from the wrapped tools surface to the invoking shell unchanged;
// the runner adds no retry, no timeout, and no recovery.
package task

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/devinda0/runstack/internal/config"
	"github.com/devinda0/runstack/internal/model"
	"github.com/devinda0/runstack/internal/proc"
)

// Runner executes the configured tool command lines. It delegates all
// spawning to a proc.Launcher so tool output streams to the invoking
// terminal unmodified.
type Runner struct {
	cfg      *config.Config
	launcher *proc.Launcher

	// workDir is the directory tools run in. Empty means the current
	// working directory; tests point it at a fixture directory.
	workDir string
}

// NewRunner creates a Runner over the given configuration.
func NewRunner(cfg *config.Config) *Runner {
	return &Runner{
		cfg:      cfg,
		launcher: proc.NewLauncher(),
	}
}

// SetWorkDir overrides the directory tools are invoked in.
func (r *Runner) SetWorkDir(dir string) {
	r.workDir = dir
}

// invoke runs a single tool command line in the foreground.
// The returned error is the launcher's verbatim: an *exec.ExitError
// carrying the tool's exit code, or a spawn failure.
func (r *Runner) invoke(ctx context.Context, argv []string) error {
	return r.launcher.Run(ctx, proc.Command{Argv: argv, Dir: r.workDir})
}

// invokeSequence runs tool command lines in order, stopping at the
// first non-zero exit. The failing step's error is returned unchanged
// so its exit code propagates; later steps are never issued.
func (r *Runner) invokeSequence(ctx context.Context, steps [][]string, extraArgs ...string) error {
	for _, step := range steps {
		argv := make([]string, 0, len(step)+len(extraArgs))
		argv = append(argv, step...)
		argv = append(argv, extraArgs...)
		if err := r.invoke(ctx, argv); err != nil {
			return err
		}
	}
	return nil
}

// Install invokes the dependency installer against the manifest file.
func (r *Runner) Install(ctx context.Context) error {
	return r.invoke(ctx, append(append([]string{}, r.cfg.Tools.Install...), r.cfg.Manifest))
}

// Test invokes the test runner verbosely. A non-empty file argument
// scopes the run to that one file.
func (r *Runner) Test(ctx context.Context, file string) error {
	argv := append([]string{}, r.cfg.Tools.Test...)
	if file != "" {
		argv = append(argv, file)
	}
	return r.invoke(ctx, argv)
}

// Lint invokes the static-analysis sequence over the application
// directory. The first failing tool stops the sequence and its exit
// code becomes the runner's.
func (r *Runner) Lint(ctx context.Context) error {
	return r.invokeSequence(ctx, r.cfg.Tools.Lint, r.cfg.AppDir)
}

// Format invokes the source-formatting sequence over the application
// directory.
func (r *Runner) Format(ctx context.Context) error {
	return r.invokeSequence(ctx, r.cfg.Tools.Format, r.cfg.AppDir)
}

// Freeze captures the currently resolved dependency versions into the
// manifest file. The freeze tool's stdout is redirected into the
// manifest, replacing its previous contents; stderr still streams to
// the terminal.
func (r *Runner) Freeze(ctx context.Context) error {
	manifest := r.cfg.Manifest
	if r.workDir != "" && !filepath.IsAbs(manifest) {
		manifest = filepath.Join(r.workDir, manifest)
	}

	out, err := os.Create(manifest)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("cannot write manifest %q", r.cfg.Manifest), err)
	}
	defer func() { _ = out.Close() }()

	capture := &proc.Launcher{
		Stdin:  r.launcher.Stdin,
		Stdout: out,
		Stderr: r.launcher.Stderr,
	}
	return capture.Run(ctx, proc.Command{Argv: r.cfg.Tools.Freeze, Dir: r.workDir})
}

// Venv creates the isolated dependency environment directory.
func (r *Runner) Venv(ctx context.Context) error {
	return r.invoke(ctx, append(append([]string{}, r.cfg.Tools.Venv...), r.cfg.VenvDir))
}
