package chainlens

import (
	"errors"
	"fmt"
)

var ErrNoFiles = errors.New("no input files")

var errEmptyFile = errors.New("missing header row")

// ParseError reports an input file that could not be read as a rectangular table.
type ParseError struct {
	File string
	Line int
	Err  error
}

// EmptyResultError is returned by Score when not a single strike received a score on either side.
type EmptyResultError struct {
	Strikes int
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("failed to parse %s (line %d): %v", e.File, e.Line, e.Err)
	}
	return fmt.Sprintf("failed to parse %s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("no computed strikes (%d candidate strikes)", e.Strikes)
}
