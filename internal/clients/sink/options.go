package sink

import "context"

type Option func(o *Options)

type Options struct {
	Group           string
	Stream          string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	MaxRetries      int
	Context         context.Context
}

func WithGroup(group string) Option {
	return func(o *Options) {
		o.Group = group
	}
}

func WithStream(stream string) Option {
	return func(o *Options) {
		o.Stream = stream
	}
}

func WithCredentials(accessKeyID, secretAccessKey string) Option {
	return func(o *Options) {
		o.AccessKeyID = accessKeyID
		o.SecretAccessKey = secretAccessKey
	}
}

func WithRegion(region string) Option {
	return func(o *Options) {
		o.Region = region
	}
}

func WithMaxRetries(n int) Option {
	return func(o *Options) {
		o.MaxRetries = n
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Context:    context.Background(),
		MaxRetries: 5,
	}

	for _, fn := range opts {
		fn(&options)
	}

	return options
}

type EnsureOption func(o *EnsureOptions)

type EnsureOptions struct {
	Context context.Context
}

func NewEnsureOptions(opts ...EnsureOption) EnsureOptions {
	options := EnsureOptions{
		Context: context.Background(),
	}

	for _, fn := range opts {
		fn(&options)
	}

	return options
}

type AppendOption func(o *AppendOptions)

type AppendOptions struct {
	Context context.Context
}

func NewAppendOptions(opts ...AppendOption) AppendOptions {
	options := AppendOptions{
		Context: context.Background(),
	}

	for _, fn := range opts {
		fn(&options)
	}

	return options
}
