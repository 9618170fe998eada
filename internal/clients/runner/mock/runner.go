package mock

import (
	"context"

	testmock "github.com/stretchr/testify/mock"
	"github.com/w-h-a/shiplog/internal/clients/runner"
)

type mockRunner struct {
	testmock.Mock
}

func (r *mockRunner) Start(ctx context.Context, opts ...runner.StartOption) error {
	args := r.Called(ctx, opts)
	return args.Error(0)
}

func (r *mockRunner) Lines(ctx context.Context, opts ...runner.LinesOption) (<-chan string, error) {
	args := r.Called(ctx, opts)

	if lines := args.Get(0); lines != nil {
		return lines.(<-chan string), args.Error(1)
	}

	return nil, args.Error(1)
}

func (r *mockRunner) Wait(ctx context.Context, opts ...runner.WaitOption) (int64, error) {
	args := r.Called(ctx, opts)
	return args.Get(0).(int64), args.Error(1)
}

func (r *mockRunner) Stop(ctx context.Context, opts ...runner.StopOption) error {
	args := r.Called(ctx, opts)
	return args.Error(0)
}

func (r *mockRunner) CheckHealth(ctx context.Context) error {
	args := r.Called(ctx)
	return args.Error(0)
}

func (r *mockRunner) Close(ctx context.Context) error {
	args := r.Called(ctx)
	return args.Error(0)
}

func NewRunner(opts ...runner.Option) *mockRunner {
	return &mockRunner{}
}
