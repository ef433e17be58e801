package cycle

import "fmt"

// ValidationError reports malformed input: bad group parameters, unknown
// member ids, payout orders that are not permutations of the roster.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// InvalidStateError reports a command invoked against a group or round whose
// state forbids it, like recording a payment after the payout went out.
type InvalidStateError struct {
	Reason string
}

func (e *InvalidStateError) Error() string {
	return "invalid state: " + e.Reason
}

// PrerequisiteNotMetError reports a command whose precondition has not been
// reached yet, like advancing before the payout is completed.
type PrerequisiteNotMetError struct {
	Reason string
}

func (e *PrerequisiteNotMetError) Error() string {
	return "prerequisite not met: " + e.Reason
}

func validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

func invalidStatef(format string, args ...any) error {
	return &InvalidStateError{Reason: fmt.Sprintf(format, args...)}
}

func prerequisitef(format string, args ...any) error {
	return &PrerequisiteNotMetError{Reason: fmt.Sprintf(format, args...)}
}
