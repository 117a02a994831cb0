//go:build !unix

package proc

import "context"

// ExecReplace approximates execve(2) on platforms without it: the
// command runs as a foreground child with inherited stdio and the
// caller propagates its exit code. Signal delivery passes through the
// runstack process instead of reaching the service directly, which is
// the closest available semantics on these platforms.
func ExecReplace(c Command) error {
	return NewLauncher().Run(context.Background(), c)
}
