package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"github.com/w-h-a/shiplog/internal/clients/runner"
	dockerrunner "github.com/w-h-a/shiplog/internal/clients/runner/docker"
	"github.com/w-h-a/shiplog/internal/clients/sink"
	cloudwatchsink "github.com/w-h-a/shiplog/internal/clients/sink/cloudwatch"
	memorysink "github.com/w-h-a/shiplog/internal/clients/sink/memory"
	"github.com/w-h-a/shiplog/internal/orchestrator"
	"github.com/w-h-a/shiplog/internal/run"
	"github.com/w-h-a/shiplog/internal/run/config"
	"github.com/w-h-a/shiplog/internal/telemetry"
)

func Run(ctx *cli.Context) error {
	// cfg
	config.New()

	// request
	req := &run.Request{
		Image:     ctx.String("docker-image"),
		Command:   ctx.String("bash-command"),
		LogGroup:  ctx.String("aws-cloudwatch-group"),
		LogStream: ctx.String("aws-cloudwatch-stream"),
		Credentials: run.Credentials{
			AccessKeyID:     ctx.String("aws-access-key-id"),
			SecretAccessKey: ctx.String("aws-secret-access-key"),
			Region:          ctx.String("awsregion"),
		},
	}

	if err := req.Validate(); err != nil {
		return cli.Exit(err.Error(), run.ExitInvalidArgs)
	}

	// telemetry
	shutdown, err := telemetry.Setup(ctx.Context)
	if err != nil {
		return cli.Exit(err.Error(), run.ExitRuntimeFailure)
	}

	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "telemetry shutdown failed", "error", err)
		}
	}()

	// graceful shutdown on SIGINT/SIGTERM
	sigCtx, cancel := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// clients; config has already validated the RUNNER and SINK selections,
	// and docker is the only runtime
	runnerClient, err := dockerrunner.NewRunner(
		runner.WithHost(config.RunnerHost()),
		runner.WithStopTimeout(config.StopTimeout()),
	)
	if err != nil {
		return cli.Exit(err.Error(), run.ExitContainerStart)
	}

	var sinkClient sink.Sink

	switch sink.SinkTypes[config.Sink()] {
	case sink.Memory:
		sinkClient = memorysink.NewSink(
			sink.WithGroup(req.LogGroup),
			sink.WithStream(req.LogStream),
		)
	default:
		sinkClient = cloudwatchsink.NewSink(
			sink.WithGroup(req.LogGroup),
			sink.WithStream(req.LogStream),
			sink.WithCredentials(req.Credentials.AccessKeyID, req.Credentials.SecretAccessKey),
			sink.WithRegion(req.Credentials.Region),
			sink.WithMaxRetries(config.SinkMaxRetries()),
		)
	}

	// service
	orchestratorService := orchestrator.New(runnerClient, sinkClient)

	slog.InfoContext(sigCtx, "starting run",
		"id", orchestratorService.Name(),
		"image", req.Image,
		"group", req.LogGroup,
		"stream", req.LogStream,
	)

	exitCode, err := orchestratorService.Execute(sigCtx, req)
	if err != nil {
		return cli.Exit(err.Error(), ExitFor(err))
	}

	if exitCode != 0 {
		return cli.Exit("", int(exitCode))
	}

	return nil
}

// ExitFor maps a failed run to the tool's own exit codes. The container's
// exit status never passes through here.
func ExitFor(err error) int {
	switch {
	case errors.Is(err, run.ErrInvalidRequest):
		return run.ExitInvalidArgs
	case errors.Is(err, run.ErrContainerStart):
		return run.ExitContainerStart
	case errors.Is(err, run.ErrLogDelivery):
		return run.ExitLogDelivery
	default:
		return run.ExitRuntimeFailure
	}
}
