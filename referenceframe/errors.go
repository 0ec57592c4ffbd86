package referenceframe

import "github.com/pkg/errors"

// NewJointMissingError is returned when a named joint cannot be found on the skeleton.
func NewJointMissingError(name string) error {
	return errors.Errorf("joint %q not found on skeleton", name)
}

// NewClipMissingError is returned when a named clip action cannot be found on the mixer.
func NewClipMissingError(clip, action string) error {
	return errors.Errorf("clip %s: action %q not found on mixer", clip, action)
}
