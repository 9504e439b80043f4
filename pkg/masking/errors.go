package masking

import "fmt"

// errRecoveredPanic wraps a recovered panic value as a regular error.
func errRecoveredPanic(r any) error {
	return fmt.Errorf("recovered panic during redaction: %v", r)
}
