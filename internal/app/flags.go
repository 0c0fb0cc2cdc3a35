package app

import "path/filepath"

// SetPath overrides a configured path with a command-line value. The value
// is made absolute against the working directory so that it is not
// resolved against the configuration's base directory afterwards. An empty
// value leaves dst unchanged.
func SetPath(dst *string, value string) {
	if value == "" {
		return
	}
	if abs, err := filepath.Abs(value); err == nil {
		value = abs
	}
	*dst = value
}
