package format

import "fmt"

// NonConvergenceError reports an indentation loop that hit its pass bound.
// The formatter still returns the text of the last committed pass.
type NonConvergenceError struct {
	Passes int
	Last   Defect
}

func (e *NonConvergenceError) Error() string {
	return fmt.Sprintf("indentation did not converge after %d passes (last defect: %s)", e.Passes, e.Last)
}
