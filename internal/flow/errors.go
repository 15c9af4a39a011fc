package flow

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by Controller operations. All of them are
// recoverable: the operation that returned one left the state untouched.
var (
	ErrIncompleteStep      = errors.New("step incomplete")
	ErrAtInitialStep       = errors.New("already at first step")
	ErrAtFinalStep         = errors.New("already at final step")
	ErrUnknownSlot         = errors.New("unknown slot")
	ErrNotVerifyStep       = errors.New("current step is not a verification step")
	ErrVerificationRunning = errors.New("verification in progress")
	ErrUnknownFlow         = errors.New("unknown flow")
	ErrInvalidDefinition   = errors.New("invalid flow definition")
)

// IncompleteStepError describes why a forward transition was refused.
// It matches ErrIncompleteStep with errors.Is.
type IncompleteStepError struct {
	Step    Step
	Missing []Slot // required slots with no artifact, in declaration order
	Pending bool   // verification has not completed yet
}

func (e *IncompleteStepError) Error() string {
	var reasons []string
	if len(e.Missing) > 0 {
		names := make([]string, len(e.Missing))
		for i, s := range e.Missing {
			names[i] = string(s)
		}
		reasons = append(reasons, "missing "+strings.Join(names, ", "))
	}
	if e.Pending {
		reasons = append(reasons, "verification not completed")
	}
	return fmt.Sprintf("step %q incomplete: %s", e.Step, strings.Join(reasons, "; "))
}

func (e *IncompleteStepError) Is(target error) bool {
	return target == ErrIncompleteStep
}

// invalidf wraps ErrInvalidDefinition with a formatted reason.
func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidDefinition, fmt.Sprintf(format, args...))
}
