package runner

import "context"

type RuntimeType string

const (
	Docker RuntimeType = "docker"
)

var (
	RuntimeTypes = map[string]RuntimeType{
		"docker": Docker,
	}
)

// Runner is the narrow surface the orchestrator needs from a container
// runtime. Lines yields a lazy, finite, non-restartable sequence of output
// lines; the channel closes when the container's combined stdout/stderr
// stream reaches EOF.
type Runner interface {
	Start(ctx context.Context, opts ...StartOption) error
	Lines(ctx context.Context, opts ...LinesOption) (<-chan string, error)
	Wait(ctx context.Context, opts ...WaitOption) (int64, error)
	Stop(ctx context.Context, opts ...StopOption) error
	CheckHealth(ctx context.Context) error
	Close(ctx context.Context) error
}
