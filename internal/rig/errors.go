package rig

import "errors"

// Refusals are precondition violations: the operation does not run, rig and
// scene state stay untouched, and the caller reports the reason instead of
// failing. Anything else returned by a rig operation is a host failure.
var (
	ErrUnknownJoint     = errors.New("unknown joint")
	ErrAlreadyPlaced    = errors.New("joint already placed")
	ErrNothingSelected  = errors.New("nothing is selected")
	ErrNotPlaced        = errors.New("joint has not been placed")
	ErrAlreadyMirrored  = errors.New("joint already mirrored")
	ErrMirrorAmbiguous  = errors.New("mirror plane is ambiguous")
	ErrSpineExists      = errors.New("spine already exists")
	ErrNoSpine          = errors.New("no spine exists")
	ErrAnchorsNotPlaced = errors.New("pelvis and neck must be placed first")
	ErrSpineAtMinimum   = errors.New("spine cannot have fewer than one joint")
)

var refusals = []error{
	ErrUnknownJoint,
	ErrAlreadyPlaced,
	ErrNothingSelected,
	ErrNotPlaced,
	ErrAlreadyMirrored,
	ErrMirrorAmbiguous,
	ErrSpineExists,
	ErrNoSpine,
	ErrAnchorsNotPlaced,
	ErrSpineAtMinimum,
}

// IsRefusal reports whether err is a precondition refusal rather than a
// host failure.
func IsRefusal(err error) bool {
	for _, refusal := range refusals {
		if errors.Is(err, refusal) {
			return true
		}
	}
	return false
}
