package partition

import "fmt"

// FatalError reports an invariant violation: a bug in the core or corrupted
// input, never a condition a caller should retry past. It carries the pass
// name plus the observed/expected counts the check failed on.
type FatalError struct {
	Pass     string
	Observed int
	Expected int
	Detail   string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("partition: %s: invariant violation: %s (observed %d, expected %d)",
		e.Pass, e.Detail, e.Observed, e.Expected)
}
