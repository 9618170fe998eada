package runner

import (
	"context"
	"time"
)

type Option func(o *Options)

type Options struct {
	Host        string
	StopTimeout time.Duration
	Context     context.Context
}

func WithHost(host string) Option {
	return func(o *Options) {
		o.Host = host
	}
}

func WithStopTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.StopTimeout = timeout
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Context:     context.Background(),
		StopTimeout: 10 * time.Second,
	}

	for _, fn := range opts {
		fn(&options)
	}

	return options
}

type StartOption func(o *StartOptions)

type StartOptions struct {
	ID      string
	Image   string
	Cmd     []string
	Env     []string
	Context context.Context
}

func StartWithID(id string) StartOption {
	return func(o *StartOptions) {
		o.ID = id
	}
}

func StartWithImage(image string) StartOption {
	return func(o *StartOptions) {
		o.Image = image
	}
}

func StartWithCmd(cmd []string) StartOption {
	return func(o *StartOptions) {
		o.Cmd = cmd
	}
}

func StartWithEnv(env []string) StartOption {
	return func(o *StartOptions) {
		o.Env = env
	}
}

func NewStartOptions(opts ...StartOption) StartOptions {
	options := StartOptions{
		Context: context.Background(),
	}

	for _, fn := range opts {
		fn(&options)
	}

	return options
}

type LinesOption func(o *LinesOptions)

type LinesOptions struct {
	ID      string
	Context context.Context
}

func LinesWithID(id string) LinesOption {
	return func(o *LinesOptions) {
		o.ID = id
	}
}

func NewLinesOptions(opts ...LinesOption) LinesOptions {
	options := LinesOptions{
		Context: context.Background(),
	}

	for _, fn := range opts {
		fn(&options)
	}

	return options
}

type WaitOption func(o *WaitOptions)

type WaitOptions struct {
	ID      string
	Context context.Context
}

func WaitWithID(id string) WaitOption {
	return func(o *WaitOptions) {
		o.ID = id
	}
}

func NewWaitOptions(opts ...WaitOption) WaitOptions {
	options := WaitOptions{
		Context: context.Background(),
	}

	for _, fn := range opts {
		fn(&options)
	}

	return options
}

type StopOption func(o *StopOptions)

type StopOptions struct {
	ID      string
	Context context.Context
}

func StopWithID(id string) StopOption {
	return func(o *StopOptions) {
		o.ID = id
	}
}

func NewStopOptions(opts ...StopOption) StopOptions {
	options := StopOptions{
		Context: context.Background(),
	}

	for _, fn := range opts {
		fn(&options)
	}

	return options
}
