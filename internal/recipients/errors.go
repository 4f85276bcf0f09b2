package recipients

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingName is returned when the list name is empty or blank.
	ErrMissingName = errors.New("list name is required")

	// ErrEmptyRecipientList is returned when there is nothing to save.
	ErrEmptyRecipientList = errors.New("at least one email is required")

	// ErrCancelled marks a file import the user backed out of.
	ErrCancelled = errors.New("file selection cancelled")

	// ErrUnsupportedFile is returned for files other than .txt or .csv.
	ErrUnsupportedFile = errors.New("only .txt and .csv files can be imported")

	// ErrImportInProgress is returned when an import is requested while
	// another one has not finished yet.
	ErrImportInProgress = errors.New("a file import is already in progress")
)

// InvalidAddressError lists every address that failed the address pattern.
type InvalidAddressError struct {
	Addresses []string
}

func (e *InvalidAddressError) Error() string {
	return "invalid emails: " + strings.Join(e.Addresses, ", ")
}

// FileReadError indicates that an import could not produce any text.
// The previous recipient list stays as it was.
type FileReadError struct {
	Name string
	Err  error
}

func (e *FileReadError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("file import failed: %v", e.Err)
	}
	return fmt.Sprintf("file import failed (%s): %v", e.Name, e.Err)
}

func (e *FileReadError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err is one of the save-time
// validation failures.
func IsValidationError(err error) bool {
	var invalid *InvalidAddressError
	return errors.Is(err, ErrMissingName) ||
		errors.Is(err, ErrEmptyRecipientList) ||
		errors.As(err, &invalid)
}

// IsFileReadError reports whether err (or any error in its chain) is a
// FileReadError.
func IsFileReadError(err error) bool {
	var readErr *FileReadError
	return errors.As(err, &readErr)
}
