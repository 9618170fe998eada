package memory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/w-h-a/shiplog/internal/clients/sink"
	"github.com/w-h-a/shiplog/internal/logs"
)

type memorySink struct {
	options sink.Options
	groups  map[string]map[string][]logs.Event
	appends int
	mtx     sync.RWMutex
}

func (s *memorySink) Ensure(ctx context.Context, opts ...sink.EnsureOption) error {
	_ = sink.NewEnsureOptions(opts...)

	s.mtx.Lock()
	defer s.mtx.Unlock()

	streams, ok := s.groups[s.options.Group]
	if !ok {
		streams = map[string][]logs.Event{}
		s.groups[s.options.Group] = streams
	} else {
		slog.InfoContext(ctx, "log group already exists, reusing", "group", s.options.Group)
	}

	if _, ok := streams[s.options.Stream]; !ok {
		streams[s.options.Stream] = []logs.Event{}
	} else {
		slog.InfoContext(ctx, "log stream already exists, reusing", "group", s.options.Group, "stream", s.options.Stream)
	}

	return nil
}

func (s *memorySink) Append(ctx context.Context, events []logs.Event, opts ...sink.AppendOption) error {
	_ = sink.NewAppendOptions(opts...)

	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.appends++

	streams, ok := s.groups[s.options.Group]
	if !ok {
		return sink.ErrStreamNotFound
	}

	stream, ok := streams[s.options.Stream]
	if !ok {
		return sink.ErrStreamNotFound
	}

	streams[s.options.Stream] = append(stream, events...)

	return nil
}

func (s *memorySink) CheckHealth(ctx context.Context) error {
	return nil
}

func (s *memorySink) Close(ctx context.Context) error {
	return nil
}

// Events returns the stream contents in append order.
func (s *memorySink) Events() []logs.Event {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	streams, ok := s.groups[s.options.Group]
	if !ok {
		return nil
	}

	events := make([]logs.Event, len(streams[s.options.Stream]))

	copy(events, streams[s.options.Stream])

	return events
}

// Appends returns how many append calls the sink has seen, including failed ones.
func (s *memorySink) Appends() int {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return s.appends
}

// Streams returns how many streams exist under the configured group.
func (s *memorySink) Streams() int {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return len(s.groups[s.options.Group])
}

func NewSink(opts ...sink.Option) *memorySink {
	options := sink.NewOptions(opts...)

	m := &memorySink{
		options: options,
		groups:  map[string]map[string][]logs.Event{},
		mtx:     sync.RWMutex{},
	}

	return m
}
