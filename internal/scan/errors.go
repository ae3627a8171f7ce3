package scan

import (
	"errors"
	"fmt"
)

// ErrAssembly is the only error a scan reports. Source and provider failures
// are absorbed before they get here.
var ErrAssembly = errors.New("scan: assembly failed")

// AssemblyError names the branch that failed unexpectedly.
type AssemblyError struct {
	Branch string
	Err    error
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("scan: %s branch failed: %v", e.Branch, e.Err)
}

func (e *AssemblyError) Unwrap() []error {
	return []error{ErrAssembly, e.Err}
}
