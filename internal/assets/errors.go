package assets

import "fmt"

// LoadError reports a failure to load an asset: a bad path, a filename
// without a numeric index, or a malformed field in the transform table.
type LoadError struct {
	Path  string
	Field string
	Err   error
}

func (e *LoadError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("asset load %s: field %s: %v", e.Path, e.Field, e.Err)
	}
	return fmt.Sprintf("asset load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// MissingTransformError reports a (pose, viseme) pair that has no entry in
// the mouth transform table. This is a fatal configuration error; the
// catalog never substitutes a default transform.
type MissingTransformError struct {
	Pose   int
	Viseme int
}

func (e *MissingTransformError) Error() string {
	return fmt.Sprintf("no mouth transform for pose %d, viseme %d", e.Pose, e.Viseme)
}
