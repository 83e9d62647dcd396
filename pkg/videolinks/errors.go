package videolinks

import "fmt"

// ResolveError wraps a repository failure during asset resolution. Absence
// of data is never a ResolveError; only real query failures are.
type ResolveError struct {
	VideoID int64
	Op      string
	Err     error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("video resolution %s failed for video %d: %v", e.Op, e.VideoID, e.Err)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}
