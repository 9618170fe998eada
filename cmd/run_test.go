package cmd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/w-h-a/shiplog/internal/run"
)

func TestExitFor(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		code int
	}{
		{"invalid request", fmt.Errorf("%w: docker image is required", run.ErrInvalidRequest), run.ExitInvalidArgs},
		{"container start failure", fmt.Errorf("%w: no such image", run.ErrContainerStart), run.ExitContainerStart},
		{"log delivery failure", fmt.Errorf("%w: sink unreachable", run.ErrLogDelivery), run.ExitLogDelivery},
		{"runtime failure", fmt.Errorf("%w: daemon crashed", run.ErrRuntime), run.ExitRuntimeFailure},
		{"unknown", errors.New("unexpected"), run.ExitRuntimeFailure},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, ExitFor(tc.err))
		})
	}
}
