package image

import (
	"strconv"
	"time"
)

// Label key constants define the Docker label keys applied to images
// built by runstack. Labels let operators (and the `docker images`
// filter syntax) identify runstack-built images and read back the
// orchestration metadata baked into them.
//
// All keys share the "runstack." prefix to namespace them and avoid
// collisions with labels set by other tools.
const (
	// LabelPrefix is the common prefix for all runstack labels.
	LabelPrefix = "runstack."

	// LabelManagedBy identifies images built by runstack.
	// Key: "runstack.managed-by", Value: always "runstack".
	LabelManagedBy = LabelPrefix + "managed-by"

	// LabelProject stores the configured project name.
	LabelProject = LabelPrefix + "project"

	// LabelServicePort stores the port the image's default command
	// binds, matching the EXPOSE metadata.
	LabelServicePort = LabelPrefix + "service-port"

	// LabelTopology records that the image's default command is the
	// service-only startup variant. The agent is scheduled as a
	// separate deployment unit, never by this image's entrypoint.
	LabelTopology = LabelPrefix + "topology"

	// LabelCreatedAt stores the RFC3339 timestamp of the build.
	LabelCreatedAt = LabelPrefix + "created-at"
)

// ManagedByValue is the constant value for the LabelManagedBy label.
const ManagedByValue = "runstack"

// BuildLabels constructs the label map applied to a built image.
func BuildLabels(project string, servicePort int, now time.Time) map[string]string {
	return map[string]string{
		LabelManagedBy:   ManagedByValue,
		LabelProject:     project,
		LabelServicePort: strconv.Itoa(servicePort),
		LabelTopology:    "service-only",
		LabelCreatedAt:   now.UTC().Format(time.RFC3339),
	}
}
