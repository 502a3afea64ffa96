package markup

import (
	"errors"

	"github.com/esimov/markup/geom"
)

var (
	// ErrNotFound is returned when an operation references an object
	// identifier that is not part of the document.
	ErrNotFound = errors.New("object not found")
	// ErrIndexOutOfRange is returned by reorder operations with an invalid target.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrDegenerateRegion is returned for zero area regions.
	ErrDegenerateRegion = errors.New("degenerate region")
	// ErrDuplicateID is returned when an object is inserted under an identifier
	// that is already in use.
	ErrDuplicateID = errors.New("duplicate object id")
	// ErrInvalidTransform is returned for non-positive or non-finite scales.
	ErrInvalidTransform = geom.ErrInvalidTransform
)
