// dockerfile.go renders the container image definition.
//
// The rendered Dockerfile follows the layering discipline that
// maximizes build-cache reuse: base runtime first, then system build
// tools, then the dependency manifest and a single pinned install, and
// only then the application tree. A source edit therefore invalidates
// just the final COPY layer, never the dependency install.
//
// The default command is the service-only startup variant: the resolved
// service argv in exec form, so the container's PID 1 is the service
// process itself and termination signals from the orchestrator reach it
// directly, with no intermediary shell. The agent is deliberately NOT
// launched here — in a cluster deployment it is scheduled as an
// independent unit, and co-locating it would duplicate or conflict with
// that external scheduling.
package image

import (
	"fmt"
	"sort"
	"strings"

	"github.com/devinda0/runstack/internal/config"
)

// RenderDockerfile produces the Dockerfile contents for the given
// configuration. The output is deterministic: label lines are sorted,
// and every value is taken from the resolved config, so identical
// configs render byte-identical files.
func RenderDockerfile(cfg *config.Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# syntax=docker/dockerfile:1\n")
	fmt.Fprintf(&b, "FROM %s\n\n", cfg.Image.BaseImage)

	fmt.Fprintf(&b, "WORKDIR %s\n\n", cfg.Image.Workdir)

	// Compiled system build tools, needed by dependencies that build
	// native extensions during install. Cleaning the package lists in
	// the same layer keeps the layer small.
	b.WriteString("RUN apt-get update \\\n")
	b.WriteString("    && apt-get install -y --no-install-recommends build-essential \\\n")
	b.WriteString("    && rm -rf /var/lib/apt/lists/*\n\n")

	// Dependencies layer: manifest alone first, install once.
	fmt.Fprintf(&b, "COPY %s ./\n", cfg.Manifest)
	fmt.Fprintf(&b, "RUN %s %s\n\n", strings.Join(cfg.Tools.Install, " "), cfg.Manifest)

	// Application tree, after the dependency layer.
	fmt.Fprintf(&b, "COPY %s ./%s\n\n", cfg.AppDir, cfg.AppDir)

	fmt.Fprintf(&b, "ENV %s=%d\n", config.EnvPort, cfg.Port)
	fmt.Fprintf(&b, "EXPOSE %d\n\n", cfg.Port)

	// Static labels only — the created-at label is applied at build
	// time via --label so the rendered file stays deterministic.
	labels := map[string]string{
		LabelManagedBy:   ManagedByValue,
		LabelProject:     cfg.Project,
		LabelServicePort: fmt.Sprintf("%d", cfg.Port),
		LabelTopology:    "service-only",
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "LABEL %s=%q\n", k, labels[k])
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "CMD %s\n", execForm(cfg.ServiceArgs(cfg.Port, false)))

	return b.String()
}

// execForm renders an argv as a Dockerfile exec-form JSON array.
// Exec form avoids a wrapping shell, which matters for signal
// delivery: the service process becomes PID 1.
func execForm(argv []string) string {
	quoted := make([]string, len(argv))
	for i, a := range argv {
		quoted[i] = fmt.Sprintf("%q", a)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
