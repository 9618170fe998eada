package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	mockrunner "github.com/w-h-a/shiplog/internal/clients/runner/mock"
	"github.com/w-h-a/shiplog/internal/clients/sink"
	memorysink "github.com/w-h-a/shiplog/internal/clients/sink/memory"
	mocksink "github.com/w-h-a/shiplog/internal/clients/sink/mock"
	"github.com/w-h-a/shiplog/internal/run"
)

func testRequest() *run.Request {
	return &run.Request{
		Image:     "ubuntu:latest",
		Command:   "echo hello",
		LogGroup:  "test-group",
		LogStream: "test-stream",
		Credentials: run.Credentials{
			AccessKeyID:     "AKIATEST",
			SecretAccessKey: "secret",
			Region:          "us-east-1",
		},
	}
}

func linesFrom(produced ...string) <-chan string {
	lines := make(chan string, len(produced))

	for _, line := range produced {
		lines <- line
	}

	close(lines)

	return lines
}

func TestOrchestrator_Execute_DeliversAllLinesInOrder(t *testing.T) {
	// Arrange
	mockRunner := mockrunner.NewRunner()
	memorySink := memorysink.NewSink(sink.WithGroup("test-group"), sink.WithStream("test-stream"))

	mockRunner.On("CheckHealth", mock.Anything).Return(nil)
	mockRunner.On("Start", mock.Anything, mock.Anything).Return(nil)
	mockRunner.On("Lines", mock.Anything, mock.Anything).Return(linesFrom("one", "two", "three"), nil)
	mockRunner.On("Wait", mock.Anything, mock.Anything).Return(int64(0), nil)
	mockRunner.On("Close", mock.Anything).Return(nil)

	orchestratorService := New(mockRunner, memorySink)

	// Act
	exitCode, err := orchestratorService.Execute(context.Background(), testRequest())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(0), exitCode)

	events := memorySink.Events()
	require.Len(t, events, 3)
	assert.Equal(t, "one", events[0].Message)
	assert.Equal(t, "two", events[1].Message)
	assert.Equal(t, "three", events[2].Message)

	for i := 1; i < len(events); i++ {
		assert.False(t, events[i].Timestamp.Before(events[i-1].Timestamp))
	}

	mockRunner.AssertCalled(t, "Wait", mock.Anything, mock.Anything)
	mockRunner.AssertCalled(t, "Close", mock.Anything)
}

func TestOrchestrator_Execute_PropagatesExitCode(t *testing.T) {
	// Arrange
	mockRunner := mockrunner.NewRunner()
	memorySink := memorysink.NewSink(sink.WithGroup("test-group"), sink.WithStream("test-stream"))

	mockRunner.On("CheckHealth", mock.Anything).Return(nil)
	mockRunner.On("Start", mock.Anything, mock.Anything).Return(nil)
	mockRunner.On("Lines", mock.Anything, mock.Anything).Return(linesFrom("doomed"), nil)
	mockRunner.On("Wait", mock.Anything, mock.Anything).Return(int64(7), nil)
	mockRunner.On("Close", mock.Anything).Return(nil)

	orchestratorService := New(mockRunner, memorySink)

	// Act
	exitCode, err := orchestratorService.Execute(context.Background(), testRequest())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(7), exitCode)
	assert.Len(t, memorySink.Events(), 1)
}

func TestOrchestrator_Execute_StartFailure_NoAppends(t *testing.T) {
	// Arrange
	mockRunner := mockrunner.NewRunner()
	memorySink := memorysink.NewSink(sink.WithGroup("test-group"), sink.WithStream("test-stream"))

	mockRunner.On("CheckHealth", mock.Anything).Return(nil)
	mockRunner.On("Start", mock.Anything, mock.Anything).Return(errors.New("no such image"))

	orchestratorService := New(mockRunner, memorySink)

	// Act
	_, err := orchestratorService.Execute(context.Background(), testRequest())

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, run.ErrContainerStart))
	assert.Equal(t, 0, memorySink.Appends())

	mockRunner.AssertNotCalled(t, "Lines", mock.Anything, mock.Anything)
}

func TestOrchestrator_Execute_RuntimeUnreachable_NoSinkActivity(t *testing.T) {
	// Arrange
	mockRunner := mockrunner.NewRunner()
	mockSink := mocksink.NewSink()

	mockRunner.On("CheckHealth", mock.Anything).Return(errors.New("cannot connect to the docker daemon"))

	orchestratorService := New(mockRunner, mockSink)

	// Act
	_, err := orchestratorService.Execute(context.Background(), testRequest())

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, run.ErrContainerStart))

	mockSink.AssertNotCalled(t, "CheckHealth", mock.Anything)
	mockSink.AssertNotCalled(t, "Ensure", mock.Anything, mock.Anything)
	mockSink.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrchestrator_Execute_SinkUnreachable_NoContainerStart(t *testing.T) {
	// Arrange
	mockRunner := mockrunner.NewRunner()
	mockSink := mocksink.NewSink()

	mockRunner.On("CheckHealth", mock.Anything).Return(nil)
	mockSink.On("CheckHealth", mock.Anything).Return(errors.New("no credentials"))

	orchestratorService := New(mockRunner, mockSink)

	// Act
	_, err := orchestratorService.Execute(context.Background(), testRequest())

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, run.ErrLogDelivery))

	mockSink.AssertNotCalled(t, "Ensure", mock.Anything, mock.Anything)
	mockRunner.AssertNotCalled(t, "Start", mock.Anything, mock.Anything)
}

func TestOrchestrator_Execute_ShutdownDrainsProducedLines(t *testing.T) {
	// Arrange
	mockRunner := mockrunner.NewRunner()
	memorySink := memorysink.NewSink(sink.WithGroup("test-group"), sink.WithStream("test-stream"))

	// lines the container produced before the signal arrived
	buffered := make(chan string, 5)
	for _, line := range []string{"one", "two", "three", "four", "five"} {
		buffered <- line
	}

	mockRunner.On("CheckHealth", mock.Anything).Return(nil)
	mockRunner.On("Start", mock.Anything, mock.Anything).Return(nil)
	mockRunner.On("Lines", mock.Anything, mock.Anything).Return((<-chan string)(buffered), nil)
	mockRunner.On("Stop", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		// stopping the container ends the stream
		close(buffered)
	}).Return(nil)
	mockRunner.On("Wait", mock.Anything, mock.Anything).Return(int64(137), nil)
	mockRunner.On("Close", mock.Anything).Return(nil)

	orchestratorService := New(mockRunner, memorySink)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // the signal is already pending when the run begins

	// Act
	done := make(chan struct{})

	var exitCode int64
	var err error

	go func() {
		defer close(done)
		exitCode, err = orchestratorService.Execute(ctx, testRequest())
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the run to drain and finish")
	}

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(137), exitCode)

	events := memorySink.Events()
	require.Len(t, events, 5)
	assert.Equal(t, "one", events[0].Message)
	assert.Equal(t, "five", events[4].Message)

	mockRunner.AssertCalled(t, "Stop", mock.Anything, mock.Anything)
}

func TestOrchestrator_Execute_DeliveryFailure_AbortsRun(t *testing.T) {
	// Arrange
	mockRunner := mockrunner.NewRunner()
	mockSink := mocksink.NewSink()

	mockRunner.On("CheckHealth", mock.Anything).Return(nil)
	mockRunner.On("Start", mock.Anything, mock.Anything).Return(nil)
	mockRunner.On("Lines", mock.Anything, mock.Anything).Return(linesFrom("one", "two"), nil)
	mockRunner.On("Close", mock.Anything).Return(nil)

	mockSink.On("CheckHealth", mock.Anything).Return(nil)
	mockSink.On("Ensure", mock.Anything, mock.Anything).Return(nil)
	mockSink.On("Append", mock.Anything, mock.Anything, mock.Anything).Return(sink.ErrDeliveryFailed)
	mockSink.On("Close", mock.Anything).Return(nil)

	orchestratorService := New(mockRunner, mockSink)

	// Act
	_, err := orchestratorService.Execute(context.Background(), testRequest())

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, run.ErrLogDelivery))

	mockSink.AssertNumberOfCalls(t, "Append", 1)
	mockSink.AssertCalled(t, "Close", mock.Anything)
	mockRunner.AssertNotCalled(t, "Wait", mock.Anything, mock.Anything)
	mockRunner.AssertCalled(t, "Close", mock.Anything)
}
