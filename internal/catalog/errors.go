package catalog

import "fmt"

// LoadError reports a malformed record in the catalog source. It names the
// offending record so a bad entry never aborts a load silently.
type LoadError struct {
	Index  int    // position of the record in the source
	ID     string // record id when one was present
	Reason string
}

// Error implements the error interface
func (e *LoadError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("catalog record %d (%s): %s", e.Index, e.ID, e.Reason)
	}
	return fmt.Sprintf("catalog record %d: %s", e.Index, e.Reason)
}
