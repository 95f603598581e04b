package economy

import "errors"

var (
	// ErrUnsupportedQuality is returned for item qualities outside poor..artifact.
	ErrUnsupportedQuality = errors.New("unsupported quality")

	// ErrNotFound is returned when a listing or item no longer exists,
	// usually because it sold or expired between query and use.
	ErrNotFound = errors.New("not found")
)

// ConfigError is an invalid or missing configuration value. It is never
// worth retrying.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
