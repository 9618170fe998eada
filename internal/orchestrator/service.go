package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/w-h-a/shiplog/internal/clients/runner"
	"github.com/w-h-a/shiplog/internal/clients/sink"
	"github.com/w-h-a/shiplog/internal/logs"
	"github.com/w-h-a/shiplog/internal/run"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Service drives one run: ensure the sink resources, start the container,
// forward each output line to the sink in order, wait for exit.
type Service struct {
	name    string
	runner  runner.Runner
	sink    sink.Sink
	tracer  trace.Tracer
	shipped metric.Int64Counter
}

func (s *Service) Name() string {
	return s.name
}

// Execute returns the container's exit status. Cancelling ctx requests a
// graceful shutdown: the container is stopped and every line it produced
// before stopping is still delivered before Execute returns.
func (s *Service) Execute(ctx context.Context, req *run.Request) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "Orchestrator.Execute", trace.WithAttributes(
		attribute.String("container.image", req.Image),
		attribute.String("sink.group", req.LogGroup),
		attribute.String("sink.stream", req.LogStream),
	))
	defer span.End()

	// base survives ctx cancellation so draining and cleanup can finish
	base := context.WithoutCancel(ctx)

	if err := s.runner.CheckHealth(ctx); err != nil {
		span.SetStatus(codes.Error, "container runtime unreachable")
		slog.ErrorContext(ctx, "container runtime unreachable", "error", err)
		return 0, fmt.Errorf("%w: %v", run.ErrContainerStart, err)
	}

	if err := s.sink.CheckHealth(ctx); err != nil {
		span.SetStatus(codes.Error, "log sink unreachable")
		slog.ErrorContext(ctx, "log sink unreachable", "error", err)
		return 0, fmt.Errorf("%w: %v", run.ErrLogDelivery, err)
	}

	defer func() {
		if err := s.sink.Close(base); err != nil {
			slog.ErrorContext(base, "failed to close sink", "error", err)
		}
	}()

	if err := s.sink.Ensure(ctx); err != nil {
		span.SetStatus(codes.Error, "failed to ensure log group and stream")
		slog.ErrorContext(ctx, "failed to ensure log group and stream", "group", req.LogGroup, "stream", req.LogStream, "error", err)
		return 0, fmt.Errorf("%w: %v", run.ErrLogDelivery, err)
	}

	startOpts := []runner.StartOption{
		runner.StartWithID(s.name),
		runner.StartWithImage(req.Image),
		runner.StartWithCmd(req.ShellCmd()),
		runner.StartWithEnv([]string{"PYTHONUNBUFFERED=1"}),
	}

	if err := s.runner.Start(ctx, startOpts...); err != nil {
		span.SetStatus(codes.Error, "failed to start container")
		slog.ErrorContext(ctx, "failed to start container", "image", req.Image, "error", err)
		return 0, fmt.Errorf("%w: %v", run.ErrContainerStart, err)
	}

	defer func() {
		if err := s.runner.Close(base); err != nil {
			slog.ErrorContext(base, "failed to clean up container", "id", s.name, "error", err)
		}
	}()

	lines, err := s.runner.Lines(base, runner.LinesWithID(s.name))
	if err != nil {
		span.SetStatus(codes.Error, "failed to attach to container output")
		return 0, fmt.Errorf("%w: %v", run.ErrRuntime, err)
	}

	// A shutdown signal stops the container rather than breaking the loop.
	// The stream then reaches EOF on its own, so the loop below always
	// drains whatever the container produced before it stopped.
	done := make(chan struct{})
	defer close(done)

	var stopOnce sync.Once

	go func() {
		select {
		case <-ctx.Done():
			stopOnce.Do(func() {
				slog.InfoContext(base, "shutdown requested, stopping container", "id", s.name)

				if err := s.runner.Stop(base, runner.StopWithID(s.name)); err != nil {
					slog.ErrorContext(base, "failed to stop container", "id", s.name, "error", err)
				}
			})
		case <-done:
		}
	}()

	slog.InfoContext(ctx, "collecting logs", "group", req.LogGroup, "stream", req.LogStream)

	var last time.Time

	for line := range lines {
		event := logs.Event{Timestamp: time.Now().UTC(), Message: line}

		// the sink requires non-decreasing timestamps per stream
		if event.Timestamp.Before(last) {
			event.Timestamp = last
		}
		last = event.Timestamp

		if err := s.sink.Append(base, []logs.Event{event}); err != nil {
			span.SetStatus(codes.Error, "failed to deliver log events")
			go drain(lines)
			return 0, fmt.Errorf("%w: %v", run.ErrLogDelivery, err)
		}

		s.shipped.Add(base, 1)
	}

	exitCode, err := s.runner.Wait(base, runner.WaitWithID(s.name))
	if err != nil {
		span.SetStatus(codes.Error, "container runtime failure")
		slog.ErrorContext(base, "container runtime failure", "id", s.name, "error", err)
		return 0, fmt.Errorf("%w: %v", run.ErrRuntime, err)
	}

	span.SetAttributes(attribute.Int64("container.exit_code", exitCode))
	span.SetStatus(codes.Ok, "run complete")

	slog.InfoContext(base, "container finished", "id", s.name, "exitCode", exitCode)

	return exitCode, nil
}

// drain unblocks the line producer after an aborted run so the runner can be
// torn down.
func drain(lines <-chan string) {
	for range lines {
	}
}

func New(r runner.Runner, k sink.Sink) *Service {
	name := fmt.Sprintf("shiplog-%s", strings.ReplaceAll(uuid.NewString(), "-", ""))

	meter := otel.Meter("orchestrator")

	shipped, err := meter.Int64Counter(
		"shiplog.events.shipped",
		metric.WithDescription("log events delivered to the sink"),
	)
	if err != nil {
		panic(err)
	}

	return &Service{
		name:    name,
		runner:  r,
		sink:    k,
		tracer:  otel.Tracer("orchestrator"),
		shipped: shipped,
	}
}
