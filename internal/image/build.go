// build.go drives the container image build.
//
// Rendering and building are split so `--dry-run` can inspect the
// generated files without a Docker daemon. The build itself shells out
// to `docker build` rather than re-implementing the build protocol over
// the SDK — BuildKit lives behind the CLI, and driving it through the
// CLI matches how operators invoke builds by hand. The SDK is used
// around the edges: a pre-flight daemon ping and a post-build image
// inspection.
package image

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"time"

	"github.com/devinda0/runstack/internal/config"
	"github.com/devinda0/runstack/internal/model"
)

// Artifact file names written into the output directory.
const (
	// DockerfileName is the rendered image definition.
	DockerfileName = "Dockerfile"

	// ComposeFileName is the rendered deployment manifest.
	ComposeFileName = "deploy-compose.yaml"
)

// Result summarizes a completed build for CLI output.
type Result struct {
	// Ref is the image reference that was built ("name:tag").
	Ref string `json:"ref"`

	// ID is the image content digest reported by the daemon.
	ID string `json:"id"`

	// DockerfilePath and ComposePath are the rendered artifact paths.
	DockerfilePath string `json:"dockerfilePath"`
	ComposePath    string `json:"composePath"`
}

// WriteArtifacts renders the Dockerfile and the deployment manifest
// into dir, creating it if needed. It returns the two file paths.
func WriteArtifacts(cfg *config.Config, dir string) (dockerfilePath, composePath string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("cannot create output directory %q", dir), err)
	}

	dockerfilePath = filepath.Join(dir, DockerfileName)
	if err := os.WriteFile(dockerfilePath, []byte(RenderDockerfile(cfg)), 0o644); err != nil {
		return "", "", model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("cannot write %s", DockerfileName), err)
	}

	composeData, err := RenderCompose(cfg)
	if err != nil {
		return "", "", err
	}
	composePath = filepath.Join(dir, ComposeFileName)
	if err := os.WriteFile(composePath, composeData, 0o644); err != nil {
		return "", "", model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("cannot write %s", ComposeFileName), err)
	}

	return dockerfilePath, composePath, nil
}

// Build verifies daemon connectivity, runs `docker build` over the
// given build context with the rendered Dockerfile, and inspects the
// resulting image.
//
// Build output streams to the invoking terminal unmodified. On a
// non-zero `docker build` exit, the CLIError wraps the exec error and
// carries ExitDockerNotRunning, matching the dominant failure cause.
func Build(ctx context.Context, cli *Client, cfg *config.Config, dockerfilePath, contextDir string) (*Result, error) {
	if err := cli.Ping(ctx); err != nil {
		return nil, err
	}

	ref := cfg.Image.Ref()
	args := []string{
		"build",
		"-f", dockerfilePath,
		"-t", ref,
	}
	// Build-time labels repeat the static Dockerfile labels and add
	// the build timestamp, which must not live in the rendered file
	// (it would break its determinism).
	labels := BuildLabels(cfg.Project, cfg.Port, time.Now())
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "--label", k+"="+labels[k])
	}
	args = append(args, contextDir)

	cmd := exec.CommandContext(ctx, "docker", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return nil, model.WrapCLIError(model.ExitDockerNotRunning,
			fmt.Sprintf("docker build failed for %q", ref), err)
	}

	inspect, err := cli.Inner().ImageInspect(ctx, ref)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("built image %q but cannot inspect it", ref), err)
	}

	return &Result{
		Ref:            ref,
		ID:             inspect.ID,
		DockerfilePath: dockerfilePath,
	}, nil
}
