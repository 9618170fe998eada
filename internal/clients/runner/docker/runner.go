package docker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/w-h-a/shiplog/internal/clients/runner"
)

type dockerRunner struct {
	options    runner.Options
	client     *client.Client
	containers map[string]string
	mtx        sync.RWMutex
}

func (r *dockerRunner) Start(ctx context.Context, opts ...runner.StartOption) error {
	options := runner.NewStartOptions(opts...)

	slog.InfoContext(ctx, "pulling image", "image", options.Image)

	reader, err := r.client.ImagePull(ctx, options.Image, image.PullOptions{})
	if err != nil {
		slog.ErrorContext(ctx, "failed to pull image", "image", options.Image, "error", err)
		return fmt.Errorf("%w: %v", runner.ErrPullingImage, err)
	}

	// the pull is not complete until the progress stream is consumed
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return fmt.Errorf("%w: %v", runner.ErrPullingImage, err)
	}

	if err := reader.Close(); err != nil {
		slog.ErrorContext(ctx, "failed to close image pull stream", "image", options.Image, "error", err)
	}

	cc := container.Config{
		Image: options.Image,
		Cmd:   options.Cmd,
		Env:   options.Env,
	}

	hc := container.HostConfig{}

	rsp, err := r.client.ContainerCreate(ctx, &cc, &hc, nil, nil, options.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create container", "image", options.Image, "error", err)
		return err
	}

	r.mtx.Lock()
	r.containers[options.ID] = rsp.ID
	r.mtx.Unlock()

	if err := r.client.ContainerStart(ctx, rsp.ID, container.StartOptions{}); err != nil {
		slog.ErrorContext(ctx, "failed to start container", "containerID", rsp.ID, "error", err)
		return err
	}

	slog.InfoContext(ctx, "started container", "containerID", rsp.ID, "image", options.Image)

	return nil
}

func (r *dockerRunner) Lines(ctx context.Context, opts ...runner.LinesOption) (<-chan string, error) {
	options := runner.NewLinesOptions(opts...)

	containerID, err := r.lookup(options.ID)
	if err != nil {
		return nil, err
	}

	out, err := r.client.ContainerLogs(ctx, containerID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to attach to container output", "containerID", containerID, "error", err)
		return nil, err
	}

	return scanLines(ctx, out), nil
}

// scanLines demultiplexes the docker log stream and splits it into lines.
// Stdout and stderr frames share one writer so lines keep the order in which
// the container emitted them, and each line is handed off as soon as the
// scanner sees it rather than sitting in a block buffer.
func scanLines(ctx context.Context, out io.ReadCloser) <-chan string {
	pr, pw := io.Pipe()

	go func() {
		_, err := stdcopy.StdCopy(pw, pw, out)
		pw.CloseWithError(err)

		if err := out.Close(); err != nil {
			slog.ErrorContext(ctx, "failed to close container output", "error", err)
		}
	}()

	lines := make(chan string)

	go func() {
		defer close(lines)

		// ReadString has no line-length ceiling, so an arbitrarily long
		// line cannot truncate the stream
		reader := bufio.NewReader(pr)

		for {
			line, err := reader.ReadString('\n')

			if len(line) > 0 {
				lines <- strings.TrimRight(line, "\r\n")
			}

			if err != nil {
				if !errors.Is(err, io.EOF) {
					slog.ErrorContext(ctx, "container output stream ended abnormally", "error", err)
				}
				return
			}
		}
	}()

	return lines
}

func (r *dockerRunner) Wait(ctx context.Context, opts ...runner.WaitOption) (int64, error) {
	options := runner.NewWaitOptions(opts...)

	containerID, err := r.lookup(options.ID)
	if err != nil {
		return 0, err
	}

	statusCh, errCh := r.client.ContainerWait(ctx, containerID, container.WaitConditionNotRunning)

	select {
	case err := <-errCh:
		return 0, err
	case status := <-statusCh:
		slog.InfoContext(ctx, "done waiting for container", "containerID", containerID, "status", status.StatusCode)

		if status.Error != nil {
			return status.StatusCode, errors.New(status.Error.Message)
		}

		return status.StatusCode, nil
	}
}

func (r *dockerRunner) Stop(ctx context.Context, opts ...runner.StopOption) error {
	options := runner.NewStopOptions(opts...)

	containerID, err := r.lookup(options.ID)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "stopping container", "containerID", containerID)

	timeout := int(r.options.StopTimeout.Seconds())

	return r.client.ContainerStop(ctx, containerID, container.StopOptions{Timeout: &timeout})
}

func (r *dockerRunner) CheckHealth(ctx context.Context) error {
	_, err := r.client.Ping(ctx)
	return err
}

func (r *dockerRunner) Close(ctx context.Context) error {
	r.mtx.Lock()
	containers := r.containers
	r.containers = map[string]string{}
	r.mtx.Unlock()

	var errs []error

	for _, containerID := range containers {
		slog.InfoContext(ctx, "attempting to remove container", "containerID", containerID)

		if err := r.client.ContainerRemove(ctx, containerID, container.RemoveOptions{RemoveVolumes: true, Force: true}); err != nil {
			slog.ErrorContext(ctx, "failed to remove container", "containerID", containerID, "error", err)
			errs = append(errs, err)
		}
	}

	if err := r.client.Close(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (r *dockerRunner) lookup(id string) (string, error) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	containerID, ok := r.containers[id]
	if !ok {
		return "", runner.ErrContainerNotFound
	}

	return containerID, nil
}

func NewRunner(opts ...runner.Option) (runner.Runner, error) {
	options := runner.NewOptions(opts...)

	c, err := client.NewClientWithOpts(client.WithHost(options.Host), client.WithAPIVersionNegotiation())
	if err != nil {
		slog.ErrorContext(options.Context, "failed to initialize docker runner client", "error", err)
		return nil, err
	}

	dr := &dockerRunner{
		options:    options,
		client:     c,
		containers: map[string]string{},
		mtx:        sync.RWMutex{},
	}

	return dr, nil
}
