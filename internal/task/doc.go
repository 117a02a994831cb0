// Package task is the developer command runner: named, idempotent
// shortcuts for common developer actions (install, test, lint, format,
// clean, freeze, venv), each mapping to exactly one underlying external
// tool invocation from the configuration.
package task
