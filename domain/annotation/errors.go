package annotation

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNetwork covers transport failures and non-2xx responses.
	ErrNetwork = errors.New("network error")
	// ErrLoadFailure is returned when the backend answers success:false.
	ErrLoadFailure = errors.New("backend reported failure")
	// ErrEmptySave is returned when a save is attempted with no rectangles.
	ErrEmptySave = errors.New("nothing to save")
)

// SaveError reports the rectangles the backend did not accept.
type SaveError struct {
	Frame  int
	Failed []string // sorted rectangle ids
	Total  int
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("save frame %d: %d of %d rectangles failed (%s)",
		e.Frame, len(e.Failed), e.Total, strings.Join(e.Failed, ", "))
}

// Unwrap lets errors.Is(err, ErrLoadFailure) match partial failures.
func (e *SaveError) Unwrap() error { return ErrLoadFailure }

func newSaveError(frame int, failed []string, total int) *SaveError {
	sort.Strings(failed)
	return &SaveError{Frame: frame, Failed: failed, Total: total}
}
