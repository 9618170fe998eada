package sink

import "errors"

var (
	ErrEnsureFailed   = errors.New("failed to ensure log group and stream")
	ErrDeliveryFailed = errors.New("failed to deliver log events")
	ErrStreamNotFound = errors.New("log stream not found")
)
