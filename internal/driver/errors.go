package driver

import (
	"errors"
	"fmt"
)

// ErrFileNotFound is matched by every *FileNotFoundError.
var ErrFileNotFound = errors.New("file not found")

// FileNotFoundError reports an input path that could not be read. It aborts
// the whole batch before anything is committed.
type FileNotFoundError struct {
	Path string
	Err  error
}

func (e *FileNotFoundError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Path, ErrFileNotFound)
	}
	return fmt.Sprintf("%s: %v: %v", e.Path, ErrFileNotFound, e.Err)
}

func (e *FileNotFoundError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFileNotFound}
	}
	return []error{ErrFileNotFound, e.Err}
}
