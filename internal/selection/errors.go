package selection

import (
	"errors"
	"fmt"
)

// Stage names the step of a build that failed. Approval, hero choice and
// balance correction are total and never fail on their own.
type Stage string

const (
	// StageGuard rejects empty raw or approved pools.
	StageGuard Stage = "guard"
	// StageSample covers oddity gating and replenishment.
	StageSample Stage = "sample"
	// StageValidate is used by callers that run the vocabulary gate after selection.
	StageValidate Stage = "validate"
)

var (
	// ErrEmptyRawPool means the upstream feed produced nothing.
	ErrEmptyRawPool = errors.New("raw item pool is empty")
	// ErrEmptyApprovedPool means every item was vetoed, invalid or unjudged.
	ErrEmptyApprovedPool = errors.New("no items survived editorial approval")
)

// StageError tags a fatal selection failure with the stage that raised it.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("selection stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// GateMisconfigurationError is raised when commerce candidates existed but the
// price gate and replenishment left the oddities section empty.
type GateMisconfigurationError struct {
	PreGate    int
	Gated      int
	Admissible int
}

func (e *GateMisconfigurationError) Error() string {
	return fmt.Sprintf("price gate misconfigured: %d commerce candidates, %d after gate, %d admissible, 0 oddities selected",
		e.PreGate, e.Gated, e.Admissible)
}

// IsEmptyPool reports whether err is an empty-pool failure.
func IsEmptyPool(err error) bool {
	return errors.Is(err, ErrEmptyRawPool) || errors.Is(err, ErrEmptyApprovedPool)
}
