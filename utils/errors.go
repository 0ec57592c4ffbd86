package utils

import (
	"github.com/pkg/errors"
)

// NewConfigValidationError returns an error specifying that there was an error validating the
// config at the given path.
func NewConfigValidationError(path string, err error) error {
	return errors.Wrapf(err, "error validating %q", path)
}

// NewConfigValidationFieldRequiredError is used when a required field is missing.
func NewConfigValidationFieldRequiredError(path, field string) error {
	return NewConfigValidationError(path, errors.Errorf("%q is required", field))
}
