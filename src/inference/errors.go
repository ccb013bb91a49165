package inference

import "fmt"

// errf mirrors src/parse's own helper (src/util/perror.go's centralizing
// habit): a thin wrapper so callers don't import "fmt" individually.
func errf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}
