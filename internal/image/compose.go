// compose.go renders the deployment compose manifest.
//
// The manifest describes the two runtime roles as separate services
// over the same built image. Keeping them separate is the point: the
// agent is an independent deployment unit with its own lifecycle, so an
// orchestrator can scale, restart, or relocate it without touching the
// service — the cluster topology the service-only image command
// assumes.
package image

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/devinda0/runstack/internal/config"
	"github.com/devinda0/runstack/internal/model"
)

// composeManifest is the YAML document structure, serialized via
// yaml.v3. Only the fields runstack populates are modeled.
type composeManifest struct {
	// Name sets the compose project name, which prefixes container and
	// network names for namespace isolation.
	Name string `yaml:"name"`

	// Services maps the two role names to their definitions.
	Services map[string]composeService `yaml:"services"`
}

// composeService defines one deployable role.
type composeService struct {
	// Image is the built image reference, shared by both roles.
	Image string `yaml:"image"`

	// Command overrides the image's default command. Present only for
	// the agent role — the service role runs the image default, which
	// is already the service-only startup variant.
	Command []string `yaml:"command,omitempty"`

	// Ports lists "host:container" publications. Only the service
	// publishes a port; it is the port's exclusive owner.
	Ports []string `yaml:"ports,omitempty"`

	// Environment holds KEY=VALUE entries for the role.
	Environment []string `yaml:"environment,omitempty"`

	// Labels identify the role's containers as runstack-managed.
	Labels map[string]string `yaml:"labels,omitempty"`
}

// RenderCompose produces the deployment manifest for the given
// configuration. Both roles reference the image built by
// RenderDockerfile; the agent overrides the default command with its
// production subcommand ("start", not the development-mode "dev").
func RenderCompose(cfg *config.Config) ([]byte, error) {
	manifest := composeManifest{
		Name: cfg.Project,
		Services: map[string]composeService{
			string(model.RoleService): {
				Image: cfg.Image.Ref(),
				Ports: []string{
					fmt.Sprintf("%d:%d", cfg.Port, cfg.Port),
				},
				Environment: []string{
					fmt.Sprintf("%s=%d", config.EnvPort, cfg.Port),
				},
				Labels: roleLabels(cfg, model.RoleService),
			},
			string(model.RoleAgent): {
				Image:   cfg.Image.Ref(),
				Command: cfg.AgentArgs("start"),
				Labels:  roleLabels(cfg, model.RoleAgent),
			},
		},
	}

	out, err := yaml.Marshal(&manifest)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError,
			"cannot render deployment manifest", err)
	}
	return out, nil
}

// roleLabels builds the per-role container labels for the manifest.
func roleLabels(cfg *config.Config, role model.ProcessRole) map[string]string {
	return map[string]string{
		LabelManagedBy:       ManagedByValue,
		LabelProject:         cfg.Project,
		LabelPrefix + "role": role.String(),
	}
}
