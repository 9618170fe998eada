package sink

import (
	"context"

	"github.com/w-h-a/shiplog/internal/logs"
)

type SinkType string

const (
	CloudWatch SinkType = "cloudwatch"
	Memory     SinkType = "memory"
)

var (
	SinkTypes = map[string]SinkType{
		"cloudwatch": CloudWatch,
		"memory":     Memory,
	}
)

// Sink is an append-only remote log stream under a named group. Ensure is
// idempotent: calling it against existing resources is not an error. Append
// expects events in emission order with non-decreasing timestamps.
type Sink interface {
	Ensure(ctx context.Context, opts ...EnsureOption) error
	Append(ctx context.Context, events []logs.Event, opts ...AppendOption) error
	CheckHealth(ctx context.Context) error
	Close(ctx context.Context) error
}
