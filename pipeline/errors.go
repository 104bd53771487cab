package pipeline

import (
	"errors"
	"fmt"
)

// ErrGenerationFailed marks an unrecoverable failure of a required early
// stage (visual identity or skeleton). The run is fully abandoned: no
// partial skeleton is surfaced.
var ErrGenerationFailed = errors.New("generation failed")

// newGenerationFailed wraps a stage failure onto ErrGenerationFailed.
func newGenerationFailed(stage string, err error) error {
	return fmt.Errorf("%s stage: %v: %w", stage, err, ErrGenerationFailed)
}
