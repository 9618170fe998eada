package mock

import (
	"context"

	testmock "github.com/stretchr/testify/mock"
	"github.com/w-h-a/shiplog/internal/clients/sink"
	"github.com/w-h-a/shiplog/internal/logs"
)

type mockSink struct {
	testmock.Mock
}

func (s *mockSink) Ensure(ctx context.Context, opts ...sink.EnsureOption) error {
	args := s.Called(ctx, opts)
	return args.Error(0)
}

func (s *mockSink) Append(ctx context.Context, events []logs.Event, opts ...sink.AppendOption) error {
	args := s.Called(ctx, events, opts)
	return args.Error(0)
}

func (s *mockSink) CheckHealth(ctx context.Context) error {
	args := s.Called(ctx)
	return args.Error(0)
}

func (s *mockSink) Close(ctx context.Context) error {
	args := s.Called(ctx)
	return args.Error(0)
}

func NewSink(opts ...sink.Option) *mockSink {
	return &mockSink{}
}
