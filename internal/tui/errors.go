package tui

import (
	"errors"
	"fmt"
)

// errUnavailable is returned by actions whose backing service was not wired.
var errUnavailable = errors.New("not available")

// wrapErr formats an error with a contextual prefix.
func wrapErr(context string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}
