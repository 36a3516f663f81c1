// Package watchdog holds the one-shot checks that keep an unattended frame
// healthy: a stale heartbeat restarts the slideshow service, a lost gateway
// reconnects Wi-Fi and a change in the firmware throttle flags is reported.
package watchdog

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes a system command and returns its trimmed stdout.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return strings.TrimSpace(string(out)), fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}
