package job

// conflictError signals that the single-flight slot is taken (mapped to 400).
type conflictError struct{}

func (conflictError) Error() string { return "a process is already running" }

// ErrConflict returns the error used when a job is already in flight.
func ErrConflict() error { return conflictError{} }

// IsConflict reports whether err indicates a job already in flight.
func IsConflict(err error) bool {
	_, ok := err.(conflictError)
	return ok
}

// modelNotFoundError signals an unknown algo+model pair (mapped to 404).
type modelNotFoundError struct{ algo, name string }

func (e modelNotFoundError) Error() string { return "model not found: " + e.algo + ":" + e.name }

// ErrModelNotFound returns an error for an algo+model pair absent from the catalog.
func ErrModelNotFound(algo, name string) error { return modelNotFoundError{algo: algo, name: name} }

// IsModelNotFound reports whether the error indicates a missing model.
func IsModelNotFound(err error) bool {
	_, ok := err.(modelNotFoundError)
	return ok
}

// inferenceError carries a sanitized summary of a mid-job failure
// (mapped to 500). Full diagnostic detail goes to the server log only.
type inferenceError struct{ msg string }

func (e inferenceError) Error() string { return e.msg }

// ErrInference constructs an inferenceError with the given summary.
func ErrInference(msg string) error { return inferenceError{msg: msg} }

// IsInference reports whether err indicates a mid-job execution failure.
func IsInference(err error) bool {
	_, ok := err.(inferenceError)
	return ok
}

// validationError signals a rejected request parameter (mapped to 400).
type validationError struct{ msg string }

func (e validationError) Error() string { return e.msg }

// ErrValidation constructs a validationError with the given message.
func ErrValidation(msg string) error { return validationError{msg: msg} }

// IsValidation reports whether err indicates bad request parameters.
func IsValidation(err error) bool {
	_, ok := err.(validationError)
	return ok
}
