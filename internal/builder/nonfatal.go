package builder

import "go-guildbuilder/internal/logging"

// nonFatal runs one unit of work whose failure must not stop its siblings.
// Failures are logged and reported as ok=false.
func nonFatal[T any](what string, fn func() (T, error)) (T, bool) {
	v, err := fn()
	if err != nil {
		logging.Warn("[BUILDER] %s failed: %v", what, err)
		var zero T
		return zero, false
	}
	return v, true
}

// nonFatalErr is nonFatal for calls that only return an error.
func nonFatalErr(what string, fn func() error) bool {
	_, ok := nonFatal(what, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return ok
}
