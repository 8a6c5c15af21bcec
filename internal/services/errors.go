package services

// Custom errors

// ValidationError carries per-field messages for expected, user-facing input
// problems. Anything else surfaces as a generic internal failure.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

type RateLimitError struct{ Message string }

func (e *RateLimitError) Error() string { return e.Message }
