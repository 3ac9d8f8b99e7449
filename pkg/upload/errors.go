package upload

import (
	"errors"
	"fmt"
)

// StateError reports a session operation attempted in a state that does
// not permit it. The state machine only moves forward: once a session is
// closed or aborted, every further operation fails with a StateError.
type StateError struct {
	Op    string // attempted operation: "write", "close", "abort"
	State State  // session state at the time of the attempt
}

func (e *StateError) Error() string {
	return fmt.Sprintf("upload session: cannot %s in state %s", e.Op, e.State)
}

// IsStateError returns true if the error is a StateError.
func IsStateError(err error) bool {
	var stateErr *StateError
	return errors.As(err, &stateErr)
}
