//go:build unix

package proc

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/devinda0/runstack/internal/model"
)

// ExecReplace replaces the current process image with the given command
// via execve(2). On success it never returns: the service process takes
// over the invoking PID, so termination signals from the host or
// orchestrator reach the service directly rather than an intermediary.
//
// The command's binary is resolved through PATH first, because execve
// requires an absolute or relative path while Argv[0] is conventionally
// a bare name.
func ExecReplace(c Command) error {
	if len(c.Argv) == 0 {
		return model.NewCLIError(model.ExitLaunchFailed, "empty command line")
	}

	bin, err := exec.LookPath(c.Argv[0])
	if err != nil {
		return model.WrapCLIError(model.ExitLaunchFailed,
			fmt.Sprintf("cannot launch %s process", c.Role), err)
	}

	env := os.Environ()
	if len(c.Env) > 0 {
		env = append(env, c.Env...)
	}
	if c.Dir != "" {
		if err := os.Chdir(c.Dir); err != nil {
			return model.WrapCLIError(model.ExitLaunchFailed,
				fmt.Sprintf("cannot enter working directory %q", c.Dir), err)
		}
	}

	if err := syscall.Exec(bin, c.Argv, env); err != nil {
		return model.WrapCLIError(model.ExitLaunchFailed,
			fmt.Sprintf("cannot launch %s process", c.Role), err)
	}
	return nil
}
