// Package executor runs external tools (git, java) and captures their
// output. A non-zero exit is reported as an EXTERNAL_TOOL error carrying
// the combined output; nothing is retried.
package executor

import (
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ChaoticTrials/Caelum/pkg/errors"
	"github.com/ChaoticTrials/Caelum/pkg/logging"
)

// Runner executes an external process and returns its combined output.
type Runner interface {
	Run(dir string, name string, args ...string) ([]byte, error)
}

// osRunner runs processes on the host
type osRunner struct {
	logger zerolog.Logger
}

// NewOS creates a Runner backed by os/exec
func NewOS() Runner {
	return &osRunner{logger: logging.GetLogger("executor")}
}

func (r *osRunner) Run(dir string, name string, args ...string) ([]byte, error) {
	logging.LogCommand(name, args)

	cmd := exec.Command(name, args...)
	cmd.Dir = dir

	out, err := cmd.CombinedOutput()
	if err != nil {
		r.logger.Error().
			Str("command", name).
			Strs("args", args).
			Err(err).
			Msg("External tool failed")
		return out, errors.Wrapf(err, errors.ErrExternalTool, "%s %s failed", name, strings.Join(args, " ")).
			WithDetail("output", string(out))
	}

	r.logger.Debug().
		Str("command", name).
		Int("outputBytes", len(out)).
		Msg("External tool succeeded")

	return out, nil
}
