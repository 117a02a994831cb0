// Package proc launches and supervises the service and agent processes.
//
// It provides foreground execution (Run), backgrounded execution with a
// Handle (Start), the combined-launch orchestration with its readiness
// handshake (RunCombined), and process-image replacement for the
// service-only topology (ExecReplace).
//
// The package deliberately implements no retries, no restarts, and no
// health monitoring beyond the one-shot readiness handshake: process
// supervision is the host's or orchestrator's job.
package proc
