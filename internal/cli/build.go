// build.go implements the "runstack build" command: container image
// packaging.
//
// build renders two artifacts — a Dockerfile whose default command is
// the service-only startup variant, and a deployment compose manifest
// that schedules the agent as a separate unit — then drives
// `docker build` over the project tree. --dry-run stops after
// rendering, which needs no Docker daemon.
package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devinda0/runstack/internal/image"
)

// buildFlags holds the flag values for the build command.
type buildFlags struct {
	output     string // --output: directory for rendered artifacts
	contextDir string // --context: docker build context directory
	dryRun     bool   // --dry-run: render artifacts without building
}

// NewBuildCommand creates the "build" cobra command.
func NewBuildCommand() *cobra.Command {
	flags := &buildFlags{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Package the service-only container image",
		Long: `Render the container image definition and deployment manifest, then
build the image.

The image installs the pinned dependencies from the manifest file in a
layer before the application tree (maximizing build-cache reuse),
exposes the service port, and uses the service-only startup variant as
its default command. The deployment manifest schedules the agent as a
separate unit, per the cluster topology.

Examples:
  runstack build
  runstack build --dry-run
  runstack build --output deploy --context .`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "deploy", "Directory for rendered artifacts")
	cmd.Flags().StringVar(&flags.contextDir, "context", ".", "Docker build context directory")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Render artifacts without invoking Docker")
	return cmd
}

// runBuild is the main logic function for the build command.
func runBuild(ctx context.Context, flags *buildFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dockerfilePath, composePath, err := image.WriteArtifacts(cfg, flags.output)
	if err != nil {
		return err
	}

	VerboseLog("Rendered %s and %s", dockerfilePath, composePath)

	if flags.dryRun {
		printBuildResult(&image.Result{
			Ref:            cfg.Image.Ref(),
			DockerfilePath: dockerfilePath,
			ComposePath:    composePath,
		}, true)
		return nil
	}

	cli, err := image.NewClient()
	if err != nil {
		return err
	}
	defer func() { _ = cli.Close() }()

	VerboseLog("Building image %s...", cfg.Image.Ref())

	result, err := image.Build(ctx, cli, cfg, dockerfilePath, flags.contextDir)
	if err != nil {
		return err
	}
	result.ComposePath = composePath

	printBuildResult(result, false)
	return nil
}

// printBuildResult outputs the build command result in text or JSON
// format.
func printBuildResult(result *image.Result, dryRun bool) {
	if IsJSONOutput() {
		out := struct {
			*image.Result
			DryRun bool `json:"dryRun"`
		}{Result: result, DryRun: dryRun}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return
	}

	if dryRun {
		fmt.Printf("Rendered image artifacts for %s (dry run)\n", result.Ref)
	} else {
		fmt.Printf("Built image %s (%s)\n", result.Ref, result.ID)
	}
	fmt.Printf("  Dockerfile: %s\n", result.DockerfilePath)
	fmt.Printf("  Manifest:   %s\n", result.ComposePath)
}
