package pipeline

import "errors"

var (
	// ErrMissingColumn is returned when a required column is absent
	// from the upload (Film_Name, Viewer_Rate, Number_of_Views).
	ErrMissingColumn = errors.New("pipeline: required column missing")
)

// LoadError is the single user-facing failure for a pipeline run. Every
// error raised during parse or clean is wrapped into one; no partial
// table is ever returned alongside it.
type LoadError struct {
	Err error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return "error loading data: " + e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// AsLoadError extracts a LoadError from an error chain.
func AsLoadError(err error) (*LoadError, bool) {
	var le *LoadError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}
