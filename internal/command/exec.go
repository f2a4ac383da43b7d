package command

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Exec runs the command to completion with its configured streams and
// returns its exit status.
func Exec(cmd *Command) (ExitStatus, error) {
	log.Debug().Msgf("Running `%s`", cmd)
	child, err := cmd.Spawn()
	if err != nil {
		return ExitStatus{}, err
	}
	return child.Wait()
}

// GetOutput captures the command's stdout, retrying with exponential
// backoff (1s, 2s, 4s, ...) while the command keeps failing. The last
// captured stderr ends up in the error chain.
func GetOutput(cmd *Command) (string, error) {
	return GetOutputRetry(cmd, 3)
}

// GetOutputRetry is GetOutput with an explicit attempt count.
func GetOutputRetry(cmd *Command, retry int) (string, error) {
	log.Trace().Msgf("Running `%s`", cmd)

	var (
		status ExitStatus
		stderr string
	)
	wait := time.Second
	for i := 0; i < retry; i++ {
		out, err := cmd.Output()
		if err != nil {
			return "", err
		}
		if out.ExitStatus.Success() {
			return out.Stdout, nil
		}
		status = out.ExitStatus
		stderr = out.Stderr

		time.Sleep(wait)
		wait *= 2
	}

	if stderr != "" {
		return "", fmt.Errorf("command `%s` %s: %w", cmd, status,
			fmt.Errorf("%s", stderr))
	}
	return "", fmt.Errorf("command `%s` %s", cmd, status)
}

// Exists reports whether cmd resolves to an executable on PATH.
func Exists(name string) bool {
	child, err := New("which", name).SetStdout(IONull).SetStderr(IONull).Spawn()
	if err != nil {
		return false
	}
	status, err := child.Wait()
	return err == nil && status.Success()
}
