package parse

import "fmt"

// errf is a thin wrapper so build*.go files don't need to import "fmt"
// individually; it mirrors the teacher's own habit of centralizing error
// construction helpers (src/util/perror.go).
func errf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}
