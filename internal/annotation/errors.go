package annotation

import "errors"

var (
	// ErrNoBitmap is returned when the variant requires a radiograph before
	// points can be placed and none is loaded.
	ErrNoBitmap = errors.New("no radiograph loaded")

	// ErrSessionDone is returned by PlacePoint once the final line is
	// committed.
	ErrSessionDone = errors.New("all lines committed; reset to start over")

	ErrIndexOutOfRange    = errors.New("landmark index out of range")
	ErrLandmarkNotPlaced  = errors.New("landmark not placed yet")
	ErrInvalidPhase       = errors.New("phase not available in this variant")
	ErrInsufficientPoints = errors.New("at least two points are required to draw a line")
	ErrAlreadyCommitted   = errors.New("line already committed")

	// ErrStaleLoad is returned when a newer load began after the one being
	// applied. The stale bitmap is discarded.
	ErrStaleLoad = errors.New("superseded by a newer load")

	// ErrNotCommitted gates export until the final line is drawn.
	ErrNotCommitted = errors.New("line not committed yet")
)
