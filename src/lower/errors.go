package lower

import "fmt"

// errf mirrors src/inference's own helper of the same name.
func errf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}
