// Package image renders and builds the container packaging for the
// orchestrated backend: a deterministic, cache-friendly Dockerfile
// whose default command is the service-only startup variant, and a
// deployment compose manifest that schedules the agent as a separate
// unit. Docker interaction combines the Engine SDK (daemon ping, image
// inspection, labels) with a `docker build` child process.
package image
