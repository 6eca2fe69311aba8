package hit

import "fmt"

// MalformedHitError reports an input record that cannot be turned into a
// valid hit. It is fatal to a run.
type MalformedHitError struct {
	Origin string // "file:line" when known
	Index  int    // position in the input stream
	Reason string
}

func (e *MalformedHitError) Error() string {
	if e.Origin != "" {
		return fmt.Sprintf("malformed hit at %s (record %d): %s", e.Origin, e.Index, e.Reason)
	}
	return fmt.Sprintf("malformed hit (record %d): %s", e.Index, e.Reason)
}
