package sprite

import "fmt"

// CompositeError reports a transform invariant violation, such as a
// non-positive scale factor. These are caller bugs, not data the pipeline
// should try to repair.
type CompositeError struct {
	Op     string
	Reason string
}

func (e *CompositeError) Error() string {
	return fmt.Sprintf("composite %s: %s", e.Op, e.Reason)
}
