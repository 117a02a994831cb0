// Package port provides the two port-level checks runstack performs
// around the service process: pre-launch availability scanning (via
// net.Listen probes) and post-launch readiness probing (via TCP
// connect attempts retried with a fixed interval).
package port
