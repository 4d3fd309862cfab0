package life

import "errors"

var (
	// ErrCapacityExceeded is returned when rows*cols exceeds MaxCells.
	ErrCapacityExceeded = errors.New("life: grid capacity exceeded")
	// ErrZeroDimension is returned when exactly one grid dimension is zero.
	ErrZeroDimension = errors.New("life: grid has one zero dimension")
	// ErrShapeMismatch is returned when a flat cell list does not match the
	// target shape.
	ErrShapeMismatch = errors.New("life: cell list does not match shape")
	// ErrOutOfRange is returned for a cell index outside the grid.
	ErrOutOfRange = errors.New("life: cell out of range")
	// ErrEmptyGrid is returned by Random on a 0x0 grid.
	ErrEmptyGrid = errors.New("life: grid is empty")
	// ErrUnknownFigure is returned by Lookup for an unregistered name.
	ErrUnknownFigure = errors.New("life: unknown figure")
)
