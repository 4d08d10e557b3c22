package nb

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks missing or invalid settings.
	ErrConfiguration = errors.New("configuration error")

	// ErrAuthorization marks rejected credentials or insufficient permissions
	// on the directory or on storage.
	ErrAuthorization = errors.New("authorization error")

	// ErrNotFound marks a subscription selector that matched nothing.
	ErrNotFound = errors.New("not found")
)

// ConfigurationError reports the required settings that are unset.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("Missing environment variables: %s", strings.Join(e.Missing, ", "))
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// NotFoundError reports a selector that matched no subscription together with
// the display names that were available.
type NotFoundError struct {
	Selector  string
	Available []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Subscription '%s' not found. Available: [%s]", e.Selector, strings.Join(e.Available, ", "))
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
