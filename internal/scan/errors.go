package scan

import (
	"errors"
	"fmt"
)

// ErrStartAborted is delivered to a pending Start when Stop is called before
// the camera was acquired.
var ErrStartAborted = errors.New("scan start aborted by stop")

// CameraError reports that the camera could not be acquired. Scanning did
// not start; calling Start again retries.
type CameraError struct {
	Op  string
	Err error
}

func (e *CameraError) Error() string {
	return fmt.Sprintf("camera %s failed: %v", e.Op, e.Err)
}

func (e *CameraError) Unwrap() error {
	return e.Err
}
