package runner

import "errors"

var (
	ErrPullingImage      = errors.New("failed to pull image")
	ErrContainerNotFound = errors.New("container not found")
)
