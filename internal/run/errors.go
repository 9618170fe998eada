package run

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid run request")
	ErrContainerStart = errors.New("failed to start container")
	ErrLogDelivery    = errors.New("failed to deliver logs")
	ErrRuntime        = errors.New("container runtime failure")
)

// Exit codes for failures of the tool itself. A completed run exits with the
// container's own status code instead.
const (
	ExitInvalidArgs    = 2
	ExitContainerStart = 125
	ExitLogDelivery    = 126
	ExitRuntimeFailure = 127
)
