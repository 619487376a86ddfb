package daemon

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/julianstephens/hourlog/internal/logger"
	"github.com/julianstephens/hourlog/internal/scheduler"
)

// CommandOpener returns an OpenFunc that starts command without waiting for
// it to exit. The command is split on whitespace and run without a shell.
// An empty command yields nil.
func CommandOpener(command string) scheduler.OpenFunc {
	args := strings.Fields(command)
	if len(args) == 0 {
		return nil
	}
	return func(context.Context) error {
		cmd := exec.Command(args[0], args[1:]...)
		if err := cmd.Start(); err != nil {
			return fmt.Errorf("failed to run open command: %w", err)
		}
		logger.Info("Opened logger", "command", args[0], "pid", cmd.Process.Pid)
		go func() {
			if err := cmd.Wait(); err != nil {
				logger.Warn("Open command exited with error", "command", args[0], "error", err)
			}
		}()
		return nil
	}
}
